package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"physiosite/api/internal/instagram"
	"physiosite/api/internal/store"
	"physiosite/api/internal/tokenrefresh"
	"physiosite/api/internal/wire"
)

type refresher interface {
	Configured() bool
	Refresh(ctx context.Context) (tokenrefresh.Result, error)
}

func refreshTokenCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-token",
		Short: "Rotate the Instagram token and publish it to Vercel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := wire.Refresher(s.cfg, instagram.NewTokenHolder(s.cfg.InstagramToken), s.logger)
			return runRefresh(cmd.Context(), svc, cmd.OutOrStdout())
		},
	}
}

func runRefresh(ctx context.Context, svc refresher, out io.Writer) error {
	if !svc.Configured() {
		return fmt.Errorf("%w: set INSTAGRAM_ACCESS_TOKEN, VERCEL_API_TOKEN and VERCEL_PROJECT_ID", tokenrefresh.ErrNotConfigured)
	}
	result, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func migrateCmd(s *session) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer db.Close()

			if dir == "" {
				dir = s.cfg.MigrationsDir
			}
			applied, err := store.ApplyMigrations(cmd.Context(), db, dir)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(no pending migrations)")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "migrations directory (default MIGRATIONS_DIR)")
	return cmd
}

func contactsCmd(s *session) *cobra.Command {
	c := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect stored contact-form submissions",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the newest submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(cmd.Context(), s)
			if err != nil {
				return err
			}
			defer db.Close()

			subs, err := store.NewPostgresStore(db).ListContactSubmissions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printSubmissions(cmd.OutOrStdout(), subs)
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of submissions to show")

	c.AddCommand(list)
	return c
}

func printSubmissions(out io.Writer, subs []store.ContactSubmission) {
	if len(subs) == 0 {
		fmt.Fprintln(out, "(no submissions)")
		return
	}
	for _, sub := range subs {
		notified := " "
		if sub.Notified {
			notified = "✓"
		}
		fmt.Fprintf(out, "%s  %s  [%s] %s <%s>\n", sub.CreatedAt.Format("2006-01-02 15:04"), sub.ID, notified, sub.Name, sub.Email)
	}
}
