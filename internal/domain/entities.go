package domain

import "time"

// RetrievedAtLayout is the ISO-8601 layout used for CachedRecord.RetrievedAt.
const RetrievedAtLayout = time.RFC3339

// Feed inclusion filters
const (
	// MaxItemSizeBytes is the largest upstream size accepted (16 MiB).
	MaxItemSizeBytes = 16 << 20

	// ExcludedMediaType marks video variants, which are never cached.
	ExcludedMediaType = "video/mp4"
)

// GalleryItem is a candidate image parsed from one feed page.
// It is consumed once by the sync orchestrator and never persisted directly.
type GalleryItem struct {
	ID        string // Stable upstream image identifier
	Title     string // Title of the post the image belongs to
	SourceURL string // Direct link to the binary payload
	MediaType string // MIME type reported upstream (e.g. "image/jpeg")
	SizeBytes int64  // Size reported upstream
}

// CachedRecord is the persisted cache entry for one gallery item.
// Content and RetrievedAt are always set together; a record without them is a skeleton.
type CachedRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SourceURL   string `json:"url"`
	RetrievedAt string `json:"downloadedAt,omitempty"`
	Content     []byte `json:"-"`

	// Seq is the insertion order assigned by the store (1-based).
	Seq uint64 `json:"seq"`
}

// HasContent reports whether the binary payload has been downloaded.
func (r CachedRecord) HasContent() bool {
	return r.RetrievedAt != ""
}

// IsSkeleton reports whether the record still waits for its payload.
func (r CachedRecord) IsSkeleton() bool {
	return !r.HasContent()
}

// RetrievedTime parses RetrievedAt. The zero time is returned for skeletons.
func (r CachedRecord) RetrievedTime() time.Time {
	if r.RetrievedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(RetrievedAtLayout, r.RetrievedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatRetrievedAt formats t in the layout stored on records.
func FormatRetrievedAt(t time.Time) string {
	return t.Local().Format(RetrievedAtLayout)
}

// UpsertOutcome is the result of ContentStore.UpsertSkeleton.
type UpsertOutcome int

const (
	// UpsertInserted means this caller created the skeleton.
	UpsertInserted UpsertOutcome = iota + 1
	// UpsertAlreadyExists means a record with the id was already stored.
	UpsertAlreadyExists
)

func (o UpsertOutcome) String() string {
	switch o {
	case UpsertInserted:
		return "inserted"
	case UpsertAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// AttachOutcome is the result of ContentStore.AttachContent.
type AttachOutcome int

const (
	// AttachUpdated means an existing skeleton was completed.
	AttachUpdated AttachOutcome = iota + 1
	// AttachNotFound means no record existed; one was created already complete.
	AttachNotFound
	// AttachAlreadyComplete means the record already had content and was left alone.
	AttachAlreadyComplete
)

func (o AttachOutcome) String() string {
	switch o {
	case AttachUpdated:
		return "updated"
	case AttachNotFound:
		return "not_found"
	case AttachAlreadyComplete:
		return "already_complete"
	default:
		return "unknown"
	}
}

// ChangeKind identifies the mutation that produced a ChangeEvent.
type ChangeKind int

const (
	ChangeInserted ChangeKind = iota + 1 // skeleton created
	ChangeUpdated                        // content attached
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// ChangeEvent signals a committed store mutation.
// It is a refresh hint, not a diff: subscribers re-read what they display.
type ChangeEvent struct {
	Kind ChangeKind
	ID   string
	Seq  uint64 // Record insertion order
}
