package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frontierlab/labdesk/internal/app"
	"github.com/frontierlab/labdesk/internal/service/receipt"
	"github.com/frontierlab/labdesk/internal/service/report"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		visitID int64
		out     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the lab report for a visit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				doc, rpt, err := a.Reports.Generate(ctx, visitID)
				if apperrors.IsNotFound(err) {
					if werr := writeOutput(cmd, out, a.Reports.RenderNotFound(visitID)); werr != nil {
						return werr
					}
					return err
				}
				if err != nil {
					return err
				}
				if out == "." {
					out = report.FileName(rpt)
				}
				return writeOutput(cmd, out, doc)
			})
		},
	}

	cmd.Flags().Int64Var(&visitID, "visit", 0, "visit id")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file; "." uses the standard file name`)
	_ = cmd.MarkFlagRequired("visit")
	return cmd
}

func newReceiptCmd(opts *rootOptions) *cobra.Command {
	var (
		visitID int64
		copyArg string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Re-render a receipt copy for a committed visit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := receipt.ParseCopy(copyArg)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				snap, err := a.Visits.ReceiptSnapshot(ctx, visitID)
				if err != nil {
					return err
				}
				doc, err := a.Receipt.RenderCopy(snap, c)
				if err != nil {
					return err
				}
				if out == "." {
					out = receipt.FileName(snap, c)
				}
				if err := writeOutput(cmd, out, doc); err != nil {
					return err
				}
				if out != "" && out != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&visitID, "visit", 0, "visit id")
	cmd.Flags().StringVar(&copyArg, "copy", string(receipt.CustomerCopy), "customer or lab")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file; "." uses the standard file name`)
	_ = cmd.MarkFlagRequired("visit")
	return cmd
}
