package arxiv

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"paperwatch/internal/paper"
)

const (
	defaultBaseURL = "https://export.arxiv.org"

	// MaxResults is the hard per-request ceiling; larger requests are
	// clamped before the call is made.
	MaxResults = 100
)

// Client queries the arXiv Atom API and converts entries into papers.
// Results come back sorted by submission date, newest first.
type Client struct {
	baseURL string
	client  *http.Client
	parser  *gofeed.Parser
}

// NewClient wires an HTTP client; baseURL defaults to the public API.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		parser:  gofeed.NewParser(),
	}
}

// Search runs a query against the API and returns the matching papers
// in the provider's descending submission-date order. An empty result
// set is not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]paper.Paper, error) {
	if maxResults <= 0 || maxResults > MaxResults {
		maxResults = MaxResults
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	reqURL := c.baseURL + "/api/query?" + params.Encode()
	slog.Debug("arXiv search", "query", query, "max_results", maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "paperwatch/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse atom response: %w", err)
	}

	papers := make([]paper.Paper, 0, len(feed.Items))
	for _, entry := range feed.Items {
		p, ok := convertEntry(entry)
		if !ok {
			slog.Warn("skipping malformed atom entry", "guid", entry.GUID)
			continue
		}
		papers = append(papers, p)
	}

	slog.Debug("arXiv search complete", "query", query, "found", len(papers))
	return papers, nil
}

func convertEntry(entry *gofeed.Item) (paper.Paper, bool) {
	id := entryID(entry)
	if id == "" || entry.PublishedParsed == nil {
		return paper.Paper{}, false
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	primary := ""
	if exts, ok := entry.Extensions["arxiv"]["primary_category"]; ok && len(exts) > 0 {
		primary = exts[0].Attrs["term"]
	}
	if primary == "" && len(entry.Categories) > 0 {
		primary = entry.Categories[0]
	}

	return paper.Paper{
		ID:              id,
		Title:           cleanText(entry.Title),
		Abstract:        cleanText(entry.Description),
		PublishedAt:     entry.PublishedParsed.UTC(),
		PrimaryCategory: primary,
		Categories:      entry.Categories,
		Authors:         authors,
	}, true
}

// entryID extracts the bare arXiv identifier from an Atom entry id of
// the form "http://arxiv.org/abs/2501.01234v1".
func entryID(entry *gofeed.Item) string {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	if idx := strings.Index(id, "/abs/"); idx >= 0 {
		id = id[idx+len("/abs/"):]
	}
	return strings.TrimSpace(id)
}

var htmlStripper = bluemonday.StrictPolicy()

// cleanText strips markup and collapses the line-wrapped whitespace the
// API emits inside titles and abstracts.
func cleanText(s string) string {
	s = htmlStripper.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
