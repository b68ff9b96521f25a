package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mediashelf/internal/apikey"
	"github.com/kiranshivaraju/mediashelf/internal/config"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/spf13/cobra"
)

const commandTimeout = 10 * time.Second

// keyStore is the part of store.Store the key commands use.
type keyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// withKeyStore opens a short-lived pool for one command.
func withKeyStore(ctx context.Context, opts *options, fn func(keyStore) error) error {
	if opts.databaseURL == "" {
		return errNoDatabase
	}
	pool, err := store.Connect(ctx, config.DatabaseConfig{
		URL:             opts.databaseURL,
		MaxOpenConns:    2,
		ApplicationName: "libraryctl",
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(store.NewPostgresStore(pool))
}

func newAPIKeyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}

	var (
		name   string
		userID string
		scopes []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an API key and print it once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return withKeyStore(ctx, opts, func(ks keyStore) error {
				return createKey(ctx, cmd.OutOrStdout(), ks, name, userID, scopes, 0)
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Human readable key name")
	create.Flags().StringVar(&userID, "user-id", "", "Owner of the key (random when empty)")
	create.Flags().StringSliceVar(&scopes, "scopes", []string{models.ScopeContributor},
		"Comma separated scopes: contributor, moderator, admin")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return withKeyStore(ctx, opts, func(ks keyStore) error {
				return listKeys(ctx, cmd.OutOrStdout(), ks)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid key id %q: %w", args[0], err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return withKeyStore(ctx, opts, func(ks keyStore) error {
				if err := ks.RevokeAPIKey(ctx, id); err != nil {
					return fmt.Errorf("revoke key: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", id)
				return nil
			})
		},
	})

	return cmd
}

func createKey(ctx context.Context, out io.Writer, ks keyStore, name, userID string, scopes []string, cost int) error {
	owner := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		owner = parsed
	}

	raw, key, err := apikey.Generate(name, owner, scopes, cost)
	if err != nil {
		return err
	}
	if err := ks.CreateAPIKey(ctx, key); err != nil {
		return fmt.Errorf("store key: %w", err)
	}

	fmt.Fprintf(out, "id:      %s\nuser:    %s\nscopes:  %s\nkey:     %s\n",
		key.ID, key.UserID, strings.Join(key.Scopes, ","), raw)
	fmt.Fprintln(out, "Store the key now, it cannot be shown again.")
	return nil
}

func listKeys(ctx context.Context, out io.Writer, ks keyStore) error {
	keys, err := ks.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "No API keys found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tSCOPES\tLAST USED")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.KeyPrefix, strings.Join(k.Scopes, ","), lastUsed)
	}
	return tw.Flush()
}
