package cli

import (
	"errors"
	"fmt"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/spf13/cobra"
)

func newSyncCmd(cfg *config.Config) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Log in and upload pending records (premium accounts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("username is required")
			}
			if password == "" {
				var err error
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.Auth.Login(ctx, username, password); err != nil {
				return describeSyncError(err)
			}

			report, err := app.Engine.Run(ctx)
			if err != nil {
				return describeSyncError(err)
			}

			if report.Submitted == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to sync")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d of %d records", report.Accepted, report.Submitted)
			if report.Rejected > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d rejected, will retry)", report.Rejected)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

// describeSyncError keeps the taxonomy visible to the user: transient
// problems invite a retry, authorization problems require action.
func describeSyncError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotPremium):
		return fmt.Errorf("sync requires a premium account: %w", err)
	case errors.Is(err, common.ErrNotAuthorized):
		return fmt.Errorf("not logged in or credentials rejected: %w", err)
	case errors.Is(err, common.ErrTransient):
		return fmt.Errorf("server unreachable, records kept locally, retry later: %w", err)
	default:
		return err
	}
}
