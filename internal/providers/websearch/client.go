// internal/providers/websearch/client.go
package websearch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"trip-planner/internal/common/httpx"
	"trip-planner/internal/common/logger"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Searcher is the best-effort web search capability. Implementations must
// degrade to an empty slice on failure, never return an error the pipeline
// has to handle.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []Result
	Available() bool
}

// Config holds the search API settings (Google Custom Search shape).
type Config struct {
	BaseURL    string
	APIKey     string
	EngineID   string
	Timeout    time.Duration
	MaxRetries int
}

// Client queries a Custom Search endpoint.
type Client struct {
	config *Config
	http   *httpx.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		http:   httpx.NewClient(0, config.MaxRetries),
		logger: log.WithFields(map[string]interface{}{"provider": "websearch"}),
	}
}

// Available reports whether the client has a configured key. Without one the
// generation stage skips snippet scoring entirely.
func (c *Client) Available() bool {
	return c.config.APIKey != "" && c.config.EngineID != ""
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search returns up to maxResults hits for query. Any failure (missing key,
// timeout, bad status) yields an empty slice.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Result {
	if !c.Available() {
		return nil
	}
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", c.config.APIKey)
	params.Set("cx", c.config.EngineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", maxResults))

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.config.BaseURL+"?"+params.Encode(), &resp); err != nil {
		c.logger.Warn("search degraded to empty results", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil
	}

	seen := make(map[string]bool)
	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link != "" && seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
		if len(results) >= maxResults {
			break
		}
	}

	return results
}
