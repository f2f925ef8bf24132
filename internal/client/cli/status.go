package cli

import (
	"fmt"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show device id and local record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			pending, synced, failed, err := app.Store.Repos.Vectors.Counts(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "device:  %s\n", app.DeviceID)
			fmt.Fprintf(out, "server:  %s\n", cfg.ServerURL)
			fmt.Fprintf(out, "pending: %d\n", pending)
			fmt.Fprintf(out, "synced:  %d\n", synced)
			fmt.Fprintf(out, "failed:  %d\n", failed)
			return nil
		},
	}
}
