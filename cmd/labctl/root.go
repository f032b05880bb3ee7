package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/frontierlab/labdesk/internal/app"
	"github.com/frontierlab/labdesk/internal/config"
	"github.com/frontierlab/labdesk/pkg/logger"
)

type rootOptions struct {
	configPath string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "labctl",
		Short:         "Lab desk maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yml")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall command timeout")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newCatalogCmd(opts),
		newReportCmd(opts),
		newReceiptCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// config loads configuration and points the global logger at stderr so that
// documents written to stdout stay clean.
func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	logger.New(logger.Config{Level: cfg.Log.Level, Pretty: true, Output: os.Stderr})
	return cfg, nil
}

// withApp loads configuration, connects and runs fn under the command timeout.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// writeOutput writes doc to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, doc []byte) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
