package models

import "time"

// RateLimitPolicy is the stored API rate limit in limiter format (e.g. "5-S", "100-M").
type RateLimitPolicy struct {
	Key       string    `json:"key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
