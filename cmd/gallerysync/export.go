package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "export <id> [file]",
		Short: "Write a record's downloaded content to a file",
		Long: "Write a record's downloaded content to a file.\n" +
			"Without a file the content goes to a temporary file named after the id.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(opts, nil, func(app *application) error {
				id := args[0]

				var path string
				if len(args) == 2 {
					if _, err := app.view.Export(id, args[1]); err != nil {
						return err
					}
					path = args[1]
				} else {
					tmp, err := app.view.ExportTemp(id, "")
					if err != nil {
						return err
					}
					path = tmp
				}

				if opts.jsonOutput {
					if err := writeJSON(cmd.OutOrStdout(), map[string]string{"id": id, "path": path}); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}

				if open {
					return app.viewer.Open(path)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open the file in the configured viewer")
	return cmd
}
