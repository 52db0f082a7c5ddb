package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmcdole/gallerysync/internal/domain"
)

// recordJSON is the listing shape of a cached record; content is never printed
type recordJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	SourceURL   string `json:"source_url"`
	RetrievedAt string `json:"retrieved_at,omitempty"`
	HasContent  bool   `json:"has_content"`
}

func toRecordJSON(rec domain.CachedRecord) recordJSON {
	return recordJSON{
		ID:          rec.ID,
		Title:       rec.Title,
		SourceURL:   rec.SourceURL,
		RetrievedAt: rec.RetrievedAt,
		HasContent:  rec.HasContent(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRecords prints records as JSON or as one tab-separated line each
func writeRecords(w io.Writer, records []domain.CachedRecord, jsonOutput bool) error {
	if jsonOutput {
		out := make([]recordJSON, 0, len(records))
		for _, rec := range records {
			out = append(out, toRecordJSON(rec))
		}
		return writeJSON(w, out)
	}

	for _, rec := range records {
		status := "pending"
		if rec.HasContent() {
			status = rec.RetrievedAt
		}
		title := rec.Title
		if title == "" {
			title = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", rec.ID, status, title); err != nil {
			return err
		}
	}
	return nil
}
