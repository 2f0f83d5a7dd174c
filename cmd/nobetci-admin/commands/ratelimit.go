package commands

import (
	"fmt"

	"github.com/nobetci/eczane/internal/database"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/spf13/cobra"
)

func newRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage the API rate limit policy",
		Long:  "List or update the API rate limit (e.g. 5-S, 100-M). Stored in the database and picked up by running servers on their next reload.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored rate limit policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			p, err := database.NewRateLimitPolicyRepository(db).Get(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if p == nil {
				fmt.Fprintln(out, "No rate limit policy in database. Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "Rate limit policy:")
			fmt.Fprintf(out, "  Rate: %s\n", p.Rate)
			fmt.Fprintf(out, "  Updated: %s\n", p.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the rate limit policy",
		Long:  "Update the rate limit (e.g. 5-S, 100-M, 1000-H).",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := ratelimit.ParseRate(rate)
			if err != nil {
				return fmt.Errorf("--rate: %w", err)
			}
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			formatted, _ := ratelimit.FormatRate(parsed)
			if err := database.NewRateLimitPolicyRepository(db).Set(cmd.Context(), &models.RateLimitPolicy{Rate: formatted}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate limit set to %d requests per %s.\n", parsed.MaxRequests, parsed.Window)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}
