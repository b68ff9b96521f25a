// Package cli implements libraryctl, the operator command line for mediashelf.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	databaseURL   string
	redisURL      string
	migrationsDir string
}

// NewRootCmd builds the libraryctl command tree. Connection flags default to the
// same environment variables the server reads.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "mediashelf administration",
		Long:          "Command line for mediashelf operators: schema migrations, API keys and the job list",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"),
		"Postgres connection URL")
	root.PersistentFlags().StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"),
		"Redis connection URL")
	root.PersistentFlags().StringVar(&opts.migrationsDir, "migrations", "migrations",
		"Directory holding the SQL migrations")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newAPIKeyCmd(opts))
	root.AddCommand(newJobsCmd(opts))

	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
