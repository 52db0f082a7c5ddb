package imgur

// GalleryResponse is the envelope of a gallery page.
// Fields beyond the ones listed are ignored.
type GalleryResponse struct {
	Data    []Post `json:"data"`
	Success bool   `json:"success,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// Post is one gallery post (album or single image)
type Post struct {
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title"`
	Images []Image `json:"images,omitempty"`
}

// Image is one image variant of a post
type Image struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Link string `json:"link"`
}
