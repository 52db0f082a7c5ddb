package imgur

import (
	"github.com/mmcdole/gallerysync/internal/domain"
)

// MapPosts converts gallery posts to candidate items.
// Only the first image variant of each post is considered; posts without
// variants, with a video first variant, or above the size ceiling are dropped.
// Upstream order is preserved.
func MapPosts(posts []Post) []domain.GalleryItem {
	items := make([]domain.GalleryItem, 0, len(posts))
	for _, p := range posts {
		item, ok := mapPost(p)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func mapPost(p Post) (domain.GalleryItem, bool) {
	if len(p.Images) == 0 {
		return domain.GalleryItem{}, false
	}
	img := p.Images[0]
	if !acceptImage(img) {
		return domain.GalleryItem{}, false
	}
	return domain.GalleryItem{
		ID:        img.ID,
		Title:     p.Title,
		SourceURL: img.Link,
		MediaType: img.Type,
		SizeBytes: img.Size,
	}, true
}

// acceptImage applies the inclusion filters to a selected variant.
func acceptImage(img Image) bool {
	if img.ID == "" || img.Link == "" {
		return false
	}
	if img.Type == domain.ExcludedMediaType {
		return false
	}
	return img.Size <= domain.MaxItemSizeBytes
}
