package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/pkg/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		op  model.Operator
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Auth.Secret == "" {
				return errors.New("auth.secret is not configured")
			}

			token, err := auth.NewTokenService(cfg.Auth.Secret).Issue(op, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&op.ID, "operator", "", "operator id")
	cmd.Flags().StringVar(&op.Name, "name", "", "operator display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}
