// Package feed fetches candidate news articles from an RSS search
// endpoint.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/rank"
)

// Searcher finds candidate articles matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]rank.Candidate, error)
}

// Client queries an RSS news-search endpoint (Google-News style: the
// query goes into the "q" parameter) and maps feed items to ranking
// candidates.
type Client struct {
	searchURL  string
	parser     *gofeed.Parser
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// NewClient builds a feed client. searchURL is the base RSS search URL
// without the query parameter.
func NewClient(searchURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = "dagaz/1.0"
	return &Client{
		searchURL:  searchURL,
		parser:     parser,
		httpClient: httpClient,
	}
}

// Search fetches and parses the RSS search feed for query.
func (c *Client) Search(ctx context.Context, query string) ([]rank.Candidate, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("feed: parse search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	parsed, err := c.parser.ParseURLWithContext(u.String(), ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch %s: %w: %v", u.Host, apperr.ErrUpstream, err)
	}

	out := make([]rank.Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		out = append(out, rank.Candidate{
			Title:        item.Title,
			Link:         item.Link,
			Snippet:      item.Description,
			MediaURL:     mediaURL(item),
			EnclosureURL: enclosureURL(item),
		})
	}
	return out, nil
}

// mediaURL extracts the url attribute of the first media:content or
// media:thumbnail extension, if any.
func mediaURL(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, key := range []string{"content", "thumbnail"} {
		for _, ext := range media[key] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}

func enclosureURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
