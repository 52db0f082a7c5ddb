package components

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/gallerysync/internal/domain"
)

// titleIndex implements fuzzy.Source over record titles.
type titleIndex struct {
	lowerTitles []string // Pre-computed lowercase titles
}

func newTitleIndex(records []domain.CachedRecord) titleIndex {
	lower := make([]string, len(records))
	for i, rec := range records {
		lower[i] = strings.ToLower(rec.Title)
	}
	return titleIndex{lowerTitles: lower}
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx titleIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of titles (implements fuzzy.Source)
func (idx titleIndex) Len() int { return len(idx.lowerTitles) }

// filterMatch is one filtered row with the title positions to highlight.
type filterMatch struct {
	index          int
	matchedIndexes []int
}

// filterRecords returns the records matching query, best match first.
func filterRecords(records []domain.CachedRecord, query string) []filterMatch {
	matches := fuzzy.FindFrom(strings.ToLower(query), newTitleIndex(records))
	out := make([]filterMatch, len(matches))
	for i, m := range matches {
		out[i] = filterMatch{index: m.Index, matchedIndexes: m.MatchedIndexes}
	}
	return out
}
