package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fector/harvest/internal/core/db"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a filter against a table and print matching rows as JSON lines",
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addFilterFlags(queryCmd)
	queryCmd.Flags().Int("limit", 0, "maximum rows returned (defaults to query.default_limit)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := compileFilter(cmd)
	if err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	schema, err := loadSchema(ctx, database)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}
	table, _ := cmd.Flags().GetString("table")

	rows, err := db.NewStore(database, schema).Find(ctx, table, p, limit)
	if err != nil {
		return err
	}
	logger.Info("query complete", "table", table, "rows", len(rows))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	return nil
}
