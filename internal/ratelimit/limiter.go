package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the default fixed window length (60 seconds)
	DefaultWindow = 60 * time.Second
	// DefaultMaxRequests is the default number of admitted requests per window
	DefaultMaxRequests = 100
)

// Decision is the outcome of a rate limit check.
type Decision int

const (
	// Admitted means the request may proceed.
	Admitted Decision = iota
	// Rejected means the key has exhausted its window.
	Rejected
)

// String returns the lowercase name used in logs and metric labels.
func (d Decision) String() string {
	if d == Admitted {
		return "admitted"
	}
	return "rejected"
}

// Config holds the fixed-window policy.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultConfig returns the 100 requests per minute policy.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, MaxRequests: DefaultMaxRequests}
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	return c
}

// Record is the per-key counter state.
type Record struct {
	Key           string
	Count         int
	WindowResetAt time.Time
}

// Limiter is an in-memory fixed-window limiter keyed by client identifier.
// All methods are safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	records map[string]*Record
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the clock used by Allow.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a limiter with its own record map. Non-positive config values fall back to defaults.
func New(cfg Config, opts ...Option) *Limiter {
	l := &Limiter{
		cfg:     cfg.normalized(),
		records: make(map[string]*Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now reads the limiter's clock.
func (l *Limiter) Now() time.Time {
	return l.now()
}

// Allow checks key against the limiter's clock.
func (l *Limiter) Allow(key string) Decision {
	return l.CheckAndRecord(key, l.now())
}

// CheckAndRecord admits or rejects one request for key at time now and updates the record.
//
// A missing or expired record (now at or past WindowResetAt) starts a new window with Count 1.
// Otherwise Count is incremented while below MaxRequests. Rejections leave Count untouched.
func (l *Limiter) CheckAndRecord(key string, now time.Time) Decision {
	d, _, _ := l.Check(key, now)
	return d
}

// Check is CheckAndRecord that also returns the record state right after the
// decision and the MaxRequests it was judged against.
func (l *Limiter) Check(key string, now time.Time) (Decision, Record, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || !now.Before(rec.WindowResetAt) {
		rec = &Record{
			Key:           key,
			Count:         1,
			WindowResetAt: now.Add(l.cfg.Window),
		}
		l.records[key] = rec
		return Admitted, *rec, l.cfg.MaxRequests
	}

	if rec.Count < l.cfg.MaxRequests {
		rec.Count++
		return Admitted, *rec, l.cfg.MaxRequests
	}

	return Rejected, *rec, l.cfg.MaxRequests
}

// Snapshot returns a copy of the record for key.
func (l *Limiter) Snapshot(key string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Config returns the active policy.
func (l *Limiter) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// SetConfig replaces the policy. Open windows keep their reset time. Counts
// above a lowered MaxRequests are clamped to it.
func (l *Limiter) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cfg = cfg.normalized()
	for _, rec := range l.records {
		if rec.Count > l.cfg.MaxRequests {
			rec.Count = l.cfg.MaxRequests
		}
	}
}

// Len returns the number of tracked keys, expired ones included.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Sweep drops records whose window has elapsed at now and returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if !now.Before(rec.WindowResetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}
