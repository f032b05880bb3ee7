package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/frontierlab/labdesk/internal/app"
	"github.com/frontierlab/labdesk/internal/repository/postgres"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := postgres.NewMigrator(a.DB).Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				status, err := postgres.NewMigrator(a.DB).Status(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
				for _, s := range status {
					applied := "pending"
					if s.AppliedAt != nil {
						applied = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%03d\t%s\t%s\n", s.Version, s.Name, applied)
				}
				return w.Flush()
			})
		},
	})

	var keepDays int
	prune := &cobra.Command{
		Use:   "prune-sequences",
		Short: "Delete per-day lab number counters older than --keep-days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keepDays < 1 {
				return apperrors.Validation("--keep-days must be at least 1")
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				cutoff := time.Now().In(a.Config.Lab.Location()).AddDate(0, 0, 1-keepDays)
				n, err := postgres.PruneDaySequences(ctx, a.DB, cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d day counter(s) before %s\n", n, cutoff.Format("2006-01-02"))
				return nil
			})
		},
	}
	prune.Flags().IntVar(&keepDays, "keep-days", 2, "days of counters to keep, today included")
	cmd.AddCommand(prune)

	return cmd
}
