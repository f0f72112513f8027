package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"paperwatch/internal/paper"
)

const defaultListingURL = "https://arxiv.org"

var listingDateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// Listing browses the HTML "recent submissions" pages of a category.
// It covers the no-query case the search API is a poor fit for: "show
// me what landed in cs.AI lately".
type Listing struct {
	baseURL  string
	client   *http.Client
	pageSize int
}

// NewListing wires an HTTP client; pageSize defaults to 50.
func NewListing(baseURL string, client *http.Client) *Listing {
	if baseURL == "" {
		baseURL = defaultListingURL
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Listing{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   client,
		pageSize: 50,
	}
}

// Recent returns the latest submissions listed for a category.
func (l *Listing) Recent(ctx context.Context, category string) ([]paper.Paper, error) {
	if !ValidCategory(category) {
		return nil, fmt.Errorf("invalid category %q", category)
	}

	pageURL, err := l.buildListingURL(category)
	if err != nil {
		return nil, err
	}

	doc, err := l.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", category, err)
	}

	papers := make([]paper.Paper, 0, l.pageSize)
	seen := map[string]struct{}{}

	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		p, ok := parseListingEntry(dt, dt.Next(), category)
		if !ok {
			return
		}
		if _, dup := seen[p.ID]; dup {
			return
		}
		seen[p.ID] = struct{}{}
		papers = append(papers, p)
	})

	return papers, nil
}

func (l *Listing) buildListingURL(category string) (string, error) {
	parsed, err := url.Parse(fmt.Sprintf("%s/list/%s/recent", l.baseURL, category))
	if err != nil {
		return "", fmt.Errorf("invalid listing url for %s: %w", category, err)
	}

	query := parsed.Query()
	query.Set("skip", "0")
	query.Set("show", strconv.Itoa(l.pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (l *Listing) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "paperwatch/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return doc, nil
}

func parseListingEntry(dt, dd *goquery.Selection, category string) (paper.Paper, bool) {
	link := dt.Find(`a[href*="/abs/"]`).First()

	id := strings.TrimSpace(link.Text())
	id = strings.TrimPrefix(id, "arXiv:")
	if id == "" {
		if href, exists := link.Attr("href"); exists {
			id = strings.TrimPrefix(href, "/abs/")
		}
	}
	if id == "" {
		return paper.Paper{}, false
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	abstract := dd.Find("p.mathjax").First().Text()
	abstract = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	authors := make([]string, 0, 4)
	dd.Find(".list-authors a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	publishedAt := time.Now().UTC()
	if match := listingDateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			publishedAt = parsed
		}
	}

	return paper.Paper{
		ID:              id,
		Title:           title,
		Abstract:        abstract,
		PublishedAt:     publishedAt,
		PrimaryCategory: category,
		Categories:      []string{category},
		Authors:         authors,
	}, true
}
