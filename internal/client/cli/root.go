package cli

import (
	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the healthmon command tree. cfg arrives with defaults
// and any JSON overlay applied; the persistent flags here override it.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "healthmon",
		Short:         "Offline-first health monitor with premium sync",
		Long:          "healthmon records heart-rate and stress readings locally and syncs them to the server when a premium account is logged in.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "path to a JSON config file")
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "base URL of the sync endpoint")
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path of the local database")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "max vectors submitted per sync pass")
	flags.DurationVar(&cfg.SyncTimeout, "sync-timeout", cfg.SyncTimeout, "network submission timeout")
	flags.DurationVar(&cfg.SampleInterval, "interval", cfg.SampleInterval, "sensor sampling period")

	root.AddCommand(
		newRegisterCmd(cfg),
		newSyncCmd(cfg),
		newMonitorCmd(cfg),
		newListCmd(cfg),
		newStatusCmd(cfg),
		newPurgeCmd(cfg),
	)
	return root
}
