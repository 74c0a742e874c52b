package main

import (
	"fmt"
	"time"

	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/internal/platform/config"
	"github.com/SscSPs/flowgate/internal/utils"
	"github.com/spf13/cobra"
)

// newTokenCmd issues a bearer token for local use. Identity itself is managed elsewhere.
func newTokenCmd() *cobra.Command {
	var (
		actorID string
		role    string
		expiry  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := domain.ParseRole(role)
			if !ok {
				return fmt.Errorf("invalid --role %q", role)
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if expiry <= 0 {
				expiry = cfg.JWTExpiryDuration
			}

			token, err := utils.GenerateJWT(domain.Actor{ID: actorID, Role: r}, cfg.JWTSecret, expiry, cfg.JWTIssuer)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "Actor ID (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "Role: USER, APPROVER or ADMIN")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "Token lifetime (defaults to JWT_EXPIRY_DURATION)")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
