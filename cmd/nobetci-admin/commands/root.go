package commands

import (
	"fmt"
	"os"

	"github.com/nobetci/eczane/internal/config"
	"github.com/nobetci/eczane/internal/database"
	"github.com/nobetci/eczane/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd builds the nobetci-admin command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:           "nobetci-admin",
		Short:         "Administration tool for the on-duty pharmacy service",
		Long:          "CLI tool for importing pharmacy data, managing the API rate limit and inspecting configuration. Settings are read from the same environment variables as the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	newLogger := func() *zap.Logger {
		l, err := logger.NewCLILogger(verbose)
		if err != nil {
			return zap.NewNop()
		}
		return l
	}

	rootCmd.AddCommand(newPharmaciesCmd(newLogger))
	rootCmd.AddCommand(newRatelimitCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDBCmd(newLogger))
	return rootCmd
}

// openDatabase loads configuration and connects to PostgreSQL
func openDatabase() (*config.Config, *database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, fmt.Errorf("DATABASE_URL is required for this command")
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return cfg, db, closeFn, nil
}
