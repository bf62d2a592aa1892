// Inspection subcommands: init, tables, list, get. These work on the raw
// store so they can examine any larder database without the owning
// application's type registrations.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/sqlite"
)

// withStore resolves the data directory, opens the store, runs fn, and
// closes the store.
func withStore(fn func(*sqlite.Store) error) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	store, err := sqlite.Open(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the larder database and config directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *sqlite.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "larder initialized")
				return nil
			})
		},
	}
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the entity tables in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *sqlite.Store) error {
				rows, err := store.DB().Query(
					"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
				if err != nil {
					return err
				}
				defer rows.Close()
				for rows.Next() {
					var name string
					if err := rows.Scan(&name); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return rows.Err()
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table>",
		Short: "List entity identifiers in a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *sqlite.Store) error {
				rows, err := store.DB().Query(
					"SELECT uuid FROM " + quoteIdent(args[0]) + " ORDER BY uuid")
				if err != nil {
					return err
				}
				defer rows.Close()
				for rows.Next() {
					var id string
					if err := rows.Scan(&id); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return rows.Err()
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <uuid>",
		Short: "Print an entity's stored snapshot as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *sqlite.Store) error {
				var snapshot string
				err := store.DB().QueryRow(
					"SELECT json(snapshot) FROM "+quoteIdent(args[0])+" WHERE uuid = ?", args[1]).
					Scan(&snapshot)
				if err != nil {
					return fmt.Errorf("get %s/%s: %w", args[0], args[1], err)
				}
				var pretty json.RawMessage = []byte(snapshot)
				out, err := json.MarshalIndent(pretty, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}

// quoteIdent wraps an identifier in double quotes for safe interpolation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
