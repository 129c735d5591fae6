package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fector/harvest/internal/core/db"
	"github.com/fector/harvest/internal/filter"
	"github.com/fector/harvest/internal/sqlbuilder"
	"github.com/fector/harvest/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// addFilterFlags registers the flags every filter-consuming command shares.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("table", "", "table the filter applies to")
	cmd.Flags().String("filter", "", "filter mapping as JSON")
	cmd.Flags().String("filter-file", "", "filter mapping file (.json, .yaml, .yml)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagsMutuallyExclusive("filter", "filter-file")
}

// readFilter decodes the filter given by --filter or --filter-file.
// Neither flag means no filter.
func readFilter(cmd *cobra.Command) (types.Filter, error) {
	if raw, _ := cmd.Flags().GetString("filter"); raw != "" {
		return filter.FromJSON([]byte(raw))
	}

	path, _ := cmd.Flags().GetString("filter-file")
	if path == "" {
		return types.Filter{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return filter.FromYAML(data)
	case ".json":
		return filter.FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported filter file extension %q (expected .json, .yaml, .yml)", filepath.Ext(path))
	}
}

// compileFilter reads and compiles the command's filter with configured options.
func compileFilter(cmd *cobra.Command) (filter.Predicate, error) {
	spec, err := readFilter(cmd)
	if err != nil {
		return nil, err
	}
	p, err := filter.CompileAll(spec,
		filter.WithStrict(cfg.Strict),
		filter.WithMaxDepth(cfg.MaxDepth),
		filter.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", err)
	}
	logger.Debug("compiled filter", "keys", len(spec), "strict", cfg.Strict)
	return p, nil
}

func openDatabase() (*sqlx.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("--db-url or HARVEST_DATABASE_URL required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// loadSchema reads the relation catalog into a builder schema.
func loadSchema(ctx context.Context, database *sqlx.DB) (*sqlbuilder.Schema, error) {
	catalog, err := openCatalog(database)
	if err != nil {
		return nil, err
	}
	schema, err := catalog.LoadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load relation catalog (run 'harvest migrate' first): %w", err)
	}
	return schema, nil
}

func openCatalog(database *sqlx.DB) (*db.Catalog, error) {
	queries, err := db.LoadQueries(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return db.NewCatalog(queries), nil
}
