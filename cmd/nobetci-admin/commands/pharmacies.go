package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nobetci/eczane/internal/config"
	"github.com/nobetci/eczane/internal/database"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/pharmacy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPharmaciesCmd(newLogger func() *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pharmacies",
		Short: "Import and inspect on-duty pharmacy data",
	}
	cmd.AddCommand(newPharmaciesImportCmd(newLogger))
	cmd.AddCommand(newPharmaciesListCmd())
	return cmd
}

func newPharmaciesImportCmd(newLogger func() *zap.Logger) *cobra.Command {
	var file string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a YAML dataset into PostgreSQL",
		Long:  "Parse a pharmacy YAML dataset and upsert every entry into the pharmacies table. With --dry-run the dataset is only validated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			log := newLogger()
			defer func() { _ = log.Sync() }()

			src, err := pharmacy.NewFileSource(file)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			ctx := cmd.Context()
			list, err := allPharmacies(ctx, src)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dataset OK: %d pharmacies\n", len(list))
				return nil
			}

			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			repo := database.NewPharmacyRepository(db)
			for i := range list {
				if err := repo.Upsert(ctx, &list[i]); err != nil {
					return err
				}
				log.Debug("pharmacy_imported",
					zap.String("id", list[i].ID),
					zap.String("city", list[i].CitySlug),
				)
			}
			log.Info("pharmacies_imported", zap.Int("count", len(list)), zap.String("file", file))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pharmacies.\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML dataset (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the dataset without writing")
	return cmd
}

func newPharmaciesListCmd() *cobra.Command {
	var city string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List on-duty pharmacies in a city from the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if city == "" {
				return fmt.Errorf("--city is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var src pharmacy.Source
			if cfg.PharmacySource == config.PharmacySourcePostgres {
				_, db, closeDB, err := openDatabase()
				if err != nil {
					return err
				}
				defer closeDB()
				src = database.NewPharmacyRepository(db)
			} else {
				fs, err := pharmacy.NewFileSource(cfg.PharmacyDataPath)
				if err != nil {
					return fmt.Errorf("failed to load dataset: %w", err)
				}
				src = fs
			}

			list, err := pharmacy.NewService(src).Search(cmd.Context(), pharmacy.Query{City: city, Limit: pharmacy.MaxLimit})
			if err != nil {
				return err
			}
			return printPharmacies(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "City slug, e.g. istanbul (required)")
	return cmd
}

func allPharmacies(ctx context.Context, src pharmacy.Source) ([]models.Pharmacy, error) {
	cities, err := src.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	var out []models.Pharmacy
	for _, c := range cities {
		list, err := src.ListByCity(ctx, c.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", c.Slug, err)
		}
		out = append(out, list...)
	}
	return out, nil
}

func printPharmacies(w io.Writer, list []models.Pharmacy) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No pharmacies on duty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISTRICT\tPHONE")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.District, p.Phone)
	}
	return tw.Flush()
}
