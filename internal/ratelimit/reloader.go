package ratelimit

import (
	"context"
	"time"

	"github.com/nobetci/eczane/internal/models"
	"go.uber.org/zap"
)

// PolicyStore reads and seeds the stored rate limit policy.
type PolicyStore interface {
	Get(ctx context.Context) (*models.RateLimitPolicy, error)
	Set(ctx context.Context, p *models.RateLimitPolicy) error
}

// Reloader periodically applies the stored policy to a Limiter. Open windows are
// kept across reloads.
type Reloader struct {
	limiter  *Limiter
	store    PolicyStore
	fallback Config
	interval time.Duration
	log      *zap.Logger
}

// NewReloader creates a reloader. fallback is applied when the store is empty or
// holds an unparsable rate, and is seeded into an empty store.
func NewReloader(limiter *Limiter, store PolicyStore, fallback Config, interval time.Duration, log *zap.Logger) *Reloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reloader{
		limiter:  limiter,
		store:    store,
		fallback: fallback.normalized(),
		interval: interval,
		log:      log,
	}
}

// Load applies the stored policy once and returns the config now in effect.
func (r *Reloader) Load(ctx context.Context) Config {
	cfg := r.resolve(ctx)
	if cfg != r.limiter.Config() {
		r.log.Info("rate_limit_policy_applied",
			zap.Duration("window", cfg.Window),
			zap.Int("max_requests", cfg.MaxRequests),
		)
	}
	r.limiter.SetConfig(cfg)
	return cfg
}

func (r *Reloader) resolve(ctx context.Context) Config {
	p, err := r.store.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_ratelimit_policy_using_current",
			zap.Error(err),
		)
		return r.limiter.Config()
	}
	if p == nil || p.Rate == "" {
		// Seed the store so operators see the rate in effect
		if rate, ok := FormatRate(r.fallback); ok {
			if err := r.store.Set(ctx, &models.RateLimitPolicy{Rate: rate}); err != nil {
				r.log.Error("failed_to_save_default_ratelimit_policy",
					zap.Error(err),
					zap.String("rate", rate),
				)
			}
		}
		return r.fallback
	}
	cfg, err := ParseRate(p.Rate)
	if err != nil {
		r.log.Error("failed_to_parse_ratelimit_policy_using_default",
			zap.Error(err),
			zap.String("rate", p.Rate),
		)
		return r.fallback
	}
	return cfg
}

// Start runs the reload loop until ctx is cancelled. A non-positive interval disables it.
func (r *Reloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Load(ctx)
		}
	}
}
