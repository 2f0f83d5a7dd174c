package commands

import (
	"fmt"
	"net/url"

	"github.com/nobetci/eczane/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// effectiveConfig is the printable view of the configuration; credentials are redacted
type effectiveConfig struct {
	ServerPort      string   `yaml:"server_port"`
	BaseURL         string   `yaml:"base_url"`
	APIPrefix       string   `yaml:"api_prefix"`
	RateLimitWindow string   `yaml:"rate_limit_window"`
	RateLimitMax    int      `yaml:"rate_limit_max_requests"`
	SweepInterval   string   `yaml:"rate_limit_sweep_interval"`
	ReloadInterval  string   `yaml:"rate_limit_reload_interval"`
	EnableHSTS      bool     `yaml:"enable_hsts"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	PharmacySource  string   `yaml:"pharmacy_source"`
	DataPath        string   `yaml:"pharmacy_data_path,omitempty"`
	DatabaseURL     string   `yaml:"database_url,omitempty"`
	RedisURL        string   `yaml:"redis_url,omitempty"`
	CacheTTL        string   `yaml:"cache_ttl"`
	RequestTimeout  string   `yaml:"request_timeout"`
	OTELEnabled     bool     `yaml:"otel_enabled"`
	OTELEndpoint    string   `yaml:"otel_endpoint,omitempty"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(newEffectiveConfig(cfg)); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	})
	return cmd
}

func newEffectiveConfig(cfg *config.Config) effectiveConfig {
	return effectiveConfig{
		ServerPort:      cfg.ServerPort,
		BaseURL:         cfg.BaseURL,
		APIPrefix:       cfg.APIPrefix,
		RateLimitWindow: cfg.RateLimit.Window.String(),
		RateLimitMax:    cfg.RateLimit.MaxRequests,
		SweepInterval:   cfg.RateLimitSweep.String(),
		ReloadInterval:  cfg.RateLimitReload.String(),
		EnableHSTS:      cfg.EnableHSTS,
		AllowedOrigins:  cfg.AllowedOrigins,
		PharmacySource:  cfg.PharmacySource,
		DataPath:        cfg.PharmacyDataPath,
		DatabaseURL:     redactURL(cfg.DatabaseURL),
		RedisURL:        redactURL(cfg.RedisURL),
		CacheTTL:        cfg.CacheTTL.String(),
		RequestTimeout:  cfg.RequestTimeout.String(),
		OTELEnabled:     cfg.OTELEnabled,
		OTELEndpoint:    cfg.OTELEndpoint,
	}
}

// redactURL hides the password of a connection URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}
