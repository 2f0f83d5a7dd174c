package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nobetci/eczane/internal/models"
)

// DefaultRateLimitPolicyKey names the policy applied to the API prefix.
const DefaultRateLimitPolicyKey = "api"

// RateLimitPolicyRepository handles the rate limit policy row.
type RateLimitPolicyRepository struct {
	db *DB
}

// NewRateLimitPolicyRepository creates a new rate limit policy repository.
func NewRateLimitPolicyRepository(db *DB) *RateLimitPolicyRepository {
	return &RateLimitPolicyRepository{db: db}
}

// Get retrieves the API policy. It returns nil, nil when none is stored.
func (r *RateLimitPolicyRepository) Get(ctx context.Context) (*models.RateLimitPolicy, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT policy_key, rate, created_at, updated_at
		FROM ratelimit_policy WHERE policy_key = $1
	`, DefaultRateLimitPolicyKey)
	p := &models.RateLimitPolicy{}
	err := row.Scan(&p.Key, &p.Rate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit policy: %w", err)
	}
	return p, nil
}

// Set upserts the API policy.
func (r *RateLimitPolicyRepository) Set(ctx context.Context, p *models.RateLimitPolicy) error {
	rate := strings.TrimSpace(p.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_policy (policy_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (policy_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, DefaultRateLimitPolicyKey, rate, now, now)
	if err != nil {
		return fmt.Errorf("set ratelimit policy: %w", err)
	}
	return nil
}
