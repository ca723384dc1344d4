// Package fetcher handles downloading and parsing the forum topic feed.
package fetcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Topic is a single forum topic parsed from the feed. Forum feeds
// encode the topic's category as the first category element of an item
// and its tags as the remaining ones.
type Topic struct {
	Title        string
	Excerpt      string
	Link         string
	GUID         string
	CategoryName string
	Tags         []string
}

// Fetcher downloads and parses forum topic feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch downloads the topic feed at url and returns its topics in feed order.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Topic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ForumBridgeBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	topics := make([]Topic, 0, len(feed.Items))
	for _, item := range feed.Items {
		topics = append(topics, itemTopic(item))
	}
	return topics, nil
}

func itemTopic(item *gofeed.Item) Topic {
	t := Topic{
		Title: item.Title,
		Link:  item.Link,
		GUID:  ItemGUID(item),
	}

	excerpt := item.Description
	if len(excerpt) > 300 {
		excerpt = excerpt[:300] + "..."
	}
	t.Excerpt = excerpt

	if len(item.Categories) > 0 {
		t.CategoryName = item.Categories[0]
		for _, tag := range item.Categories[1:] {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				t.Tags = append(t.Tags, tag)
			}
		}
	}
	return t
}

// ItemGUID returns the GUID for a feed item.
// If the item has no GUID, a SHA-256 hash of title+link is used.
func ItemGUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// Slugify converts a category name to the slug form used by the
// directory: lowercase, with runs of non-alphanumeric characters
// collapsed to single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
