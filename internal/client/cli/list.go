package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/mkuznecovs/healthmon/internal/client/models"
	"github.com/spf13/cobra"
)

func newListCmd(cfg *config.Config) *cobra.Command {
	var limit int
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent records and their sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			var rows []*models.Vector
			if failedOnly {
				rows, err = app.Store.Repos.Vectors.ListFailed(ctx)
			} else {
				rows, err = app.Store.Repos.Vectors.ListRecent(ctx, limit)
			}
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no records")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCAPTURED\tHR\tSTRESS\tMODEL\tSTATE\tATTEMPTS")
			for _, v := range rows {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\t%s\t%d\n",
					v.ID, v.CapturedAt.Format(time.RFC3339), v.HeartRate,
					v.StressLevel, v.ModelVersion, v.SyncState, v.Attempts)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max records to show")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "show only permanently failed records")
	return cmd
}
