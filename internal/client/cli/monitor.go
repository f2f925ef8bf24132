package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/mkuznecovs/healthmon/internal/common"
	"github.com/spf13/cobra"
)

func newMonitorCmd(cfg *config.Config) *cobra.Command {
	var username, password string
	var syncEvery time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Record sensor readings until interrupted",
		Long: "monitor runs the acquisition loop: every interval it reads the sensor, " +
			"scores stress, and appends the result to the local store. With --sync-every " +
			"and premium credentials it also uploads pending records in the background.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if syncEvery > 0 {
				if username == "" {
					return errors.New("--sync-every requires --username")
				}
				if password == "" {
					if password, err = promptPassword("Password: "); err != nil {
						return err
					}
				}
				session, err := app.Auth.Login(ctx, username, password)
				if err != nil {
					return describeSyncError(err)
				}
				if !session.CanSync() {
					return describeSyncError(common.ErrNotPremium)
				}
				go app.runPeriodicSync(ctx, syncEvery)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recording every %s, Ctrl-C to stop\n", cfg.SampleInterval)
			return app.Monitor.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().DurationVar(&syncEvery, "sync-every", 0, "background sync period (0 disables)")
	return cmd
}

// runPeriodicSync runs a sync pass on every tick. A pass that outlives
// the tick period just makes the ticker drop ticks; passes never overlap.
// Transient failures leave the loop running for the next tick, but an
// authorization rejection (bad credential or lost entitlement) ends the
// loop: retrying cannot succeed until the user re-logs-in or upgrades,
// and recording continues unaffected either way.
func (a *App) runPeriodicSync(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, err := a.Engine.Run(ctx)
			switch {
			case err == nil:
			case errors.Is(err, common.ErrSyncInProgress):
			case errors.Is(err, common.ErrTransient):
				a.Logger.Warn(ctx, "background sync deferred", "error", err)
			case errors.Is(err, common.ErrNotAuthorized):
				a.Logger.Error(ctx, "background sync stopped, log in again or upgrade to resume", "error", err)
				return
			default:
				a.Logger.Error(ctx, "background sync failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
