package cli

import (
	"fmt"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/spf13/cobra"
)

func newPurgeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove synced records past the retention horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			horizon := time.Now().Add(-cfg.Retention)
			n, err := app.Store.Repos.Vectors.PurgeSynced(ctx, horizon)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d synced records older than %s\n",
				n, horizon.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
