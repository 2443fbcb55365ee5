package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create the tables used by the SQLite store. SurrealDB is schemaless and
needs no migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := a.Store()
		if err != nil {
			return err
		}
		m, ok := store.(migrator)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate for this driver.")
			return nil
		}
		if err := m.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
