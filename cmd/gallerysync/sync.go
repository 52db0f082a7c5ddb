package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// syncSummary is the JSON shape printed by sync and repair
type syncSummary struct {
	Page       int `json:"page,omitempty"`
	Fetched    int `json:"fetched,omitempty"`
	Inserted   int `json:"inserted,omitempty"`
	Skipped    int `json:"skipped,omitempty"`
	Failed     int `json:"failed,omitempty"`
	Missing    int `json:"missing"`
	Dispatched int `json:"dispatched"`
	Suppressed int `json:"suppressed,omitempty"`
	Cached     int `json:"cached"`
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new feed pages and download their content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			return withApplication(opts, nil, func(app *application) error {
				if err := requireConfigured(app); err != nil {
					return err
				}
				ctx := cmd.Context()

				var summary syncSummary
				var syncErrs []error
				for range pages {
					result, err := app.commands.SyncNewItems(ctx)
					if err != nil {
						syncErrs = append(syncErrs, err)
						break
					}
					summary.Page = result.Page
					summary.Fetched += result.Fetched
					summary.Inserted += result.Inserted
					summary.Skipped += result.Skipped
					summary.Failed += result.Failed
					summary.Dispatched += result.Dispatched
				}

				repair, err := app.commands.RepairMissingContent(ctx)
				if err != nil {
					syncErrs = append(syncErrs, err)
				}
				summary.Missing = repair.Missing
				summary.Dispatched += repair.Dispatched
				summary.Suppressed = repair.Suppressed

				// Downloads run detached; let them land before reporting.
				app.commands.Wait()

				return finishSummary(cmd, app, opts, summary, errors.Join(syncErrs...))
			})
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of sync cycles to run")
	return cmd
}

func newRepairCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Download content for cached records that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(opts, nil, func(app *application) error {
				repair, err := app.commands.RepairMissingContent(cmd.Context())
				app.commands.Wait()

				summary := syncSummary{
					Missing:    repair.Missing,
					Dispatched: repair.Dispatched,
					Suppressed: repair.Suppressed,
				}
				return finishSummary(cmd, app, opts, summary, err)
			})
		},
	}
}

// finishSummary counts what is still missing and prints the summary.
// runErr is returned after printing so partial progress is still shown.
func finishSummary(cmd *cobra.Command, app *application, opts *rootOptions, summary syncSummary, runErr error) error {
	cached, err := app.view.Count()
	if err != nil {
		return errors.Join(runErr, err)
	}
	summary.Cached = cached

	missing, err := app.store.ListMissingContent()
	if err != nil {
		return errors.Join(runErr, err)
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
		return runErr
	}

	out := cmd.OutOrStdout()
	if summary.Page > 0 {
		fmt.Fprintf(out, "page %d: %d fetched, %d new, %d known, %d failed\n",
			summary.Page, summary.Fetched, summary.Inserted, summary.Skipped, summary.Failed)
	}
	fmt.Fprintf(out, "downloads: %d dispatched, %d already running\n", summary.Dispatched, summary.Suppressed)
	fmt.Fprintf(out, "cache: %d records, %d without content\n", summary.Cached, len(missing))
	return runErr
}
