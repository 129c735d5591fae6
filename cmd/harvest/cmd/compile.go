package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fector/harvest/internal/sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the SQL a filter compiles to",
	Long: `Compile a filter mapping and print the SELECT statement and its bound
arguments. Relations are resolved from the catalog when a database is
configured; without one only relation-free filters render.`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	addFilterFlags(compileCmd)
	compileCmd.Flags().String("driver", "sqlite3", "bindvar style when no database is configured (sqlite3, postgres)")
	compileCmd.Flags().Int("limit", 0, "row limit rendered into the statement (0 for none)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	p, err := compileFilter(cmd)
	if err != nil {
		return err
	}

	driver, _ := cmd.Flags().GetString("driver")
	var schema *sqlbuilder.Schema
	if cfg.DatabaseURL != "" {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		driver = database.DriverName()
		if schema, err = loadSchema(cmd.Context(), database); err != nil {
			return err
		}
	}

	table, _ := cmd.Flags().GetString("table")
	limit, _ := cmd.Flags().GetInt("limit")
	query, qargs, err := sqlbuilder.Build(table, schema, p,
		sqlbuilder.WithBindType(sqlx.BindType(driver)),
		sqlbuilder.WithLimit(limit))
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if qargs == nil {
		qargs = []any{}
	}
	encoded, err := json.Marshal(qargs)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), query)
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
