package service

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const maxTempNameLen = 64

// ErrContentPending indicates the record has no downloaded content yet
var ErrContentPending = fmt.Errorf("%w: content not downloaded yet", domain.ErrRecordNotFound)

// Export writes the content of record id to path.
func (v *ViewAdapter) Export(id, path string) (domain.CachedRecord, error) {
	rec, err := v.Get(id)
	if err != nil {
		return domain.CachedRecord{}, err
	}
	if rec.IsSkeleton() {
		return rec, ErrContentPending
	}
	if err := os.WriteFile(path, rec.Content, 0644); err != nil {
		return rec, fmt.Errorf("failed to write %s: %w", path, err)
	}
	v.logger.Debug("exported content", "id", id, "path", path, "bytes", len(rec.Content))
	return rec, nil
}

// ExportTemp writes the content of record id to a new file in dir
// (os.TempDir when empty) named after its sniffed type.
func (v *ViewAdapter) ExportTemp(id, dir string) (string, error) {
	rec, err := v.Get(id)
	if err != nil {
		return "", err
	}
	if rec.IsSkeleton() {
		return "", ErrContentPending
	}

	f, err := os.CreateTemp(dir, "gallerysync-"+tempName(rec.ID)+"-*"+ContentExtension(rec.Content))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(rec.Content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// tempName keeps letters, digits, '-' and '_' of id so it is safe in a file name.
func tempName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if len(name) > maxTempNameLen {
		name = name[:maxTempNameLen]
	}
	return name
}

// ContentExtension guesses a file extension from the payload bytes.
func ContentExtension(content []byte) string {
	switch http.DetectContentType(content) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
