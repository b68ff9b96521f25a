package cli

import (
	"errors"
	"fmt"

	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("database URL is required (--database-url or DATABASE_URL)")

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.databaseURL == "" {
				return errNoDatabase
			}
			if err := store.RunMigrations(opts.databaseURL, opts.migrationsDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			if opts.databaseURL == "" {
				return errNoDatabase
			}
			if err := store.RollbackMigrations(opts.databaseURL, opts.migrationsDir, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
