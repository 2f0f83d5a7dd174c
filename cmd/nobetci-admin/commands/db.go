package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDBCmd(newLogger func() *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	var dir string
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL migrations in --dir in file name order",
		Long:  "Apply every *.sql file in --dir in file name order. Migrations use IF NOT EXISTS so re-running is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := migrationFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .sql files in %s", dir)
			}

			log := newLogger()
			defer func() { _ = log.Sync() }()

			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			for _, f := range files {
				stmt, err := os.ReadFile(f)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", f, err)
				}
				if _, err := db.ExecContext(cmd.Context(), string(stmt)); err != nil {
					return fmt.Errorf("failed to apply %s: %w", filepath.Base(f), err)
				}
				log.Info("migration_applied", zap.String("file", filepath.Base(f)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations.\n", len(files))
			return nil
		},
	}
	migrate.Flags().StringVar(&dir, "dir", "migrations", "Directory holding the SQL migrations")
	cmd.AddCommand(migrate)
	return cmd
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
