package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

// ParseRate converts a formatted rate such as "100-M" or "5-S" into a Config.
func ParseRate(formatted string) (Config, error) {
	formatted = strings.TrimSpace(formatted)
	if formatted == "" {
		return Config{}, fmt.Errorf("rate cannot be empty")
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return Config{}, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	if rate.Limit <= 0 {
		return Config{}, fmt.Errorf("parse rate %q: limit must be positive", formatted)
	}
	return Config{Window: rate.Period, MaxRequests: int(rate.Limit)}, nil
}

var rateUnits = []struct {
	period time.Duration
	suffix string
}{
	{24 * time.Hour, "D"},
	{time.Hour, "H"},
	{time.Minute, "M"},
	{time.Second, "S"},
}

// FormatRate renders cfg in the format ParseRate accepts. It reports false when
// the window is not exactly one second, minute, hour or day.
func FormatRate(cfg Config) (string, bool) {
	cfg = cfg.normalized()
	for _, u := range rateUnits {
		if cfg.Window == u.period {
			return strconv.Itoa(cfg.MaxRequests) + "-" + u.suffix, true
		}
	}
	return "", false
}
