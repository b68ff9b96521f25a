package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/kiranshivaraju/mediashelf/internal/cache"
	"github.com/kiranshivaraju/mediashelf/internal/jobs"
	"github.com/spf13/cobra"
)

func newJobsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the persisted job list",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs as last saved by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.redisURL == "" {
				return errors.New("redis URL is required (--redis-url or REDIS_URL)")
			}
			rc, err := cache.NewRedisCache(opts.redisURL)
			if err != nil {
				return err
			}
			defer rc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return listJobs(ctx, cmd.OutOrStdout(), jobs.NewCachePersister(rc), asJSON)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON list")
	cmd.AddCommand(list)

	return cmd
}

func listJobs(ctx context.Context, out io.Writer, p jobs.Persister, asJSON bool) error {
	records, err := p.Load(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			return enc.Encode([]struct{}{})
		}
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tPROGRESS\tSTARTED\tTITLE\tERROR")
	for _, r := range records {
		msg := ""
		if r.Error != nil {
			msg = *r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.Status, r.Progress, r.StartTime.UTC().Format(time.RFC3339), r.Title, msg)
	}
	return tw.Flush()
}
