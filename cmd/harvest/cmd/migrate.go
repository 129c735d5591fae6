package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fector/harvest/internal/core/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending relation catalog migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "list migrations without applying them")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if status, _ := cmd.Flags().GetBool("status"); status {
		statuses, err := db.MigrateStatus(ctx, database)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tAPPLIED\tAT")
		for _, s := range statuses {
			at := "-"
			if s.AppliedAt != nil {
				at = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", s.ID, s.Applied, at)
		}
		return w.Flush()
	}

	if err := db.MigrateUp(ctx, database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("migrations applied")
	return nil
}
