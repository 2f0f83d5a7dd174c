package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval is how often expired records are evicted when no interval is configured.
const DefaultSweepInterval = time.Minute

// Sweeper periodically evicts expired records so the record map does not grow without bound.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
	log      *zap.Logger
	observe  func(tracked int)
}

// NewSweeper creates a sweeper for limiter. observe, if non-nil, receives the tracked key count after each pass.
func NewSweeper(limiter *Limiter, interval time.Duration, log *zap.Logger, observe func(tracked int)) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		limiter:  limiter,
		interval: interval,
		log:      log,
		observe:  observe,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Sweeper) sweep(now time.Time) int {
	if s.limiter == nil {
		return 0
	}
	removed := s.limiter.Sweep(now)
	tracked := s.limiter.Len()
	if removed > 0 {
		s.log.Debug("rate_limit_records_swept",
			zap.Int("removed", removed),
			zap.Int("tracked", tracked),
		)
	}
	if s.observe != nil {
		s.observe(tracked)
	}
	return removed
}
