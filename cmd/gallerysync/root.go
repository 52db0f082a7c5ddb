package main

import (
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gallerysync",
		Short:         "Sync an image gallery feed into a local cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = Version
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/gallerysync/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newSetupCmd(opts),
		newSyncCmd(opts),
		newRepairCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newExportCmd(opts),
		newBrowseCmd(opts),
		newClearCacheCmd(opts),
		newVersionCmd(),
	)

	return cmd
}
