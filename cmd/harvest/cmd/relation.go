package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fector/harvest/internal/types"
	"github.com/spf13/cobra"
)

var relationCmd = &cobra.Command{
	Use:   "relation",
	Short: "Manage the relations nested filters may navigate",
}

var relationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a relation from a parent table to a related table",
	RunE:  runRelationAdd,
}

var relationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered relations",
	RunE:  runRelationList,
}

var relationRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a registered relation",
	RunE:  runRelationRemove,
}

func init() {
	rootCmd.AddCommand(relationCmd)
	relationCmd.AddCommand(relationAddCmd, relationListCmd, relationRemoveCmd)

	for _, c := range []*cobra.Command{relationAddCmd, relationRemoveCmd} {
		c.Flags().String("parent", "", "parent table")
		c.Flags().String("name", "", "relation name used in filter paths")
		c.MarkFlagRequired("parent")
		c.MarkFlagRequired("name")
	}
	relationAddCmd.Flags().String("table", "", "related table")
	relationAddCmd.Flags().String("local-key", "", "parent column (default id)")
	relationAddCmd.Flags().String("foreign-key", "", "related table column (default <parent>_id)")
	relationAddCmd.MarkFlagRequired("table")
}

func runRelationAdd(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	catalog, err := openCatalog(database)
	if err != nil {
		return err
	}

	var rel types.Relation
	rel.Parent, _ = cmd.Flags().GetString("parent")
	rel.Name, _ = cmd.Flags().GetString("name")
	rel.Table, _ = cmd.Flags().GetString("table")
	rel.LocalKey, _ = cmd.Flags().GetString("local-key")
	rel.ForeignKey, _ = cmd.Flags().GetString("foreign-key")

	rel, err = catalog.AddRelation(cmd.Context(), rel)
	if err != nil {
		return err
	}
	logger.Info("relation registered",
		"relation_id", rel.ID,
		"parent", rel.Parent,
		"name", rel.Name,
		"table", rel.Table)
	fmt.Fprintln(cmd.OutOrStdout(), rel.ID)
	return nil
}

func runRelationList(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	catalog, err := openCatalog(database)
	if err != nil {
		return err
	}
	rels, err := catalog.ListRelations(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARENT\tNAME\tTABLE\tJOIN\tREGISTERED")
	for _, r := range rels {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s.%s = %s.%s\t%s\n",
			r.Parent, r.Name, r.Table,
			r.Table, r.ForeignKey, r.Parent, r.LocalKey,
			types.RelationIDTime(r.ID).UTC().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRelationRemove(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	catalog, err := openCatalog(database)
	if err != nil {
		return err
	}

	parent, _ := cmd.Flags().GetString("parent")
	name, _ := cmd.Flags().GetString("name")
	if err := catalog.RemoveRelation(cmd.Context(), parent, name); err != nil {
		return err
	}
	logger.Info("relation removed", "parent", parent, "name", name)
	return nil
}
