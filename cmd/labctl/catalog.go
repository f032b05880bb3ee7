package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frontierlab/labdesk/internal/app"
	"github.com/frontierlab/labdesk/internal/model"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var (
		filter   model.CatalogFilter
		withSubs bool
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List main tests, optionally with their sub-tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				mains, err := a.Catalog.ListMainTests(ctx, filter)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNO\tNAME\tRATE")
				for _, m := range mains {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.DisplayNo, m.Label(), m.Rate.StringFixed(2))
					if !withSubs {
						continue
					}
					subs, err := a.Catalog.ListSubtests(ctx, m.ID)
					if err != nil {
						return err
					}
					for _, s := range subs {
						fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", s.ID, s.DisplayNo, s.Label(), s.Rate.StringFixed(2))
					}
				}
				return w.Flush()
			})
		},
	}

	list.Flags().StringVar(&filter.Name, "name", "", "substring of the test name")
	list.Flags().StringVar(&filter.DisplayNo, "display-no", "", "display number prefix")
	list.Flags().BoolVar(&withSubs, "subtests", false, "include sub-tests under each main test")

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the test catalog",
	}
	cmd.AddCommand(list)
	return cmd
}
