package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/gallerysync/internal/adapter"
)

func newClearCacheCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete every cached record and the page cursor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is in memory; nothing to clear")
				return nil
			}
			if err := adapter.ClearCache(cfg.Cache.Dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", cfg.Cache.Dir)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gallerysync %s\n", Version)
		},
	}
}
