package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/tui"
)

// Buffer sizes for the UI feeds; senders drop when full.
const (
	progressBuffer = 16
	changeBuffer   = 64
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the cache interactively, syncing as you scroll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := make(chan domain.SyncProgress, progressBuffer)
			observer := tui.NewChannelObserver(progress)

			return withApplication(opts, observer, func(app *application) error {
				if err := requireConfigured(app); err != nil {
					return err
				}

				changes := make(chan domain.ChangeEvent, changeBuffer)
				unsubscribe := app.view.OnChange(tui.ChangeForwarder(changes))
				defer unsubscribe()

				model := tui.NewModel(cmd.Context(), app.view, app.viewer, changes, progress)
				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("error running program: %w", err)
				}
				app.logger.Info("browser closed, waiting for downloads")
				return nil
			})
		},
	}
}
