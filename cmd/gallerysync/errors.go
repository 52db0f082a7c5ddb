package main

import (
	"errors"

	"github.com/mmcdole/gallerysync/internal/domain"
	"github.com/mmcdole/gallerysync/internal/service"
)

// formatCLIError renders err with a hint for the errors users can fix
func formatCLIError(err error) []string {
	lines := []string{"Error: " + err.Error()}

	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		lines = append(lines, "hint: run `gallerysync setup` or set GALLERYSYNC_FEED_CLIENT_ID")
	case errors.Is(err, domain.ErrAuthFailed):
		lines = append(lines, "hint: the client id was rejected; run `gallerysync setup` again")
	case errors.Is(err, service.ErrContentPending):
		lines = append(lines, "hint: run `gallerysync repair` to download missing content")
	case errors.Is(err, domain.ErrRecordNotFound):
		lines = append(lines, "hint: use `gallerysync list` to see cached ids")
	case errors.Is(err, domain.ErrStore):
		lines = append(lines, "hint: the cache may be locked by another gallerysync process")
	}
	return lines
}
