package main

import (
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached records in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(opts, nil, func(app *application) error {
				records, err := app.view.GetPageMeta(offset, limit)
				if err != nil {
					return err
				}
				return writeRecords(cmd.OutOrStdout(), records, opts.jsonOutput)
			})
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many records")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to list (0 for all)")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search cached records by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(opts, nil, func(app *application) error {
				records, err := app.view.Search(args[0])
				if err != nil {
					return err
				}
				if limit > 0 && len(records) > limit {
					records = records[:limit]
				}
				return writeRecords(cmd.OutOrStdout(), records, opts.jsonOutput)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results (0 for all)")
	return cmd
}
