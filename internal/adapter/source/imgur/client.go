package imgur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "gallerysync/1.0"

	// maxPageBytes bounds a feed page body.
	maxPageBytes = 8 << 20
)

// Client implements domain.FeedRepository for the Imgur gallery API
type Client struct {
	baseURL    string
	clientID   string
	queryTags  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.FeedRepository = (*Client)(nil)

// NewClient creates a new gallery API client.
// baseURL is the paginated endpoint; the page number is appended as a path segment.
func NewClient(baseURL, clientID, queryTags string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		clientID:  clientID,
		queryTags: queryTags,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs an authenticated GET against the gallery API
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Client-ID "+c.clientID)
	// The upstream contract expects a multipart content type even on GET
	req.Header.Set("Content-Type", "multipart/form-data; boundary=Boundary-"+uuid.NewString())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("gallery request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gallery request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, domain.ErrAuthFailed)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("gallery request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrNetwork, resp.StatusCode)
	}

	return body, nil
}

// parseResponse parses a gallery page envelope
func (c *Client) parseResponse(body []byte) (*GalleryResponse, error) {
	var resp GalleryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: failed to parse response: %w", domain.ErrDecode, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: response has no data list", domain.ErrDecode)
	}
	return &resp, nil
}

// FetchPage returns the filtered items of one gallery page.
func (c *Client) FetchPage(ctx context.Context, page int) ([]domain.GalleryItem, error) {
	if c.clientID == "" {
		return nil, domain.ErrNotConfigured
	}
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	if c.queryTags != "" {
		query.Set("q_tags", c.queryTags)
	}

	body, err := c.doRequest(ctx, "/"+strconv.Itoa(page), query)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	items := MapPosts(resp.Data)
	c.logger.Debug("fetched gallery page", "page", page, "posts", len(resp.Data), "items", len(items))
	return items, nil
}
