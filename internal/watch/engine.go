package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"paperwatch/internal/arxiv"
	"paperwatch/internal/enrich"
	"paperwatch/internal/paper"
)

const (
	// defaultPerKeywordLimit caps how many candidates one keyword's
	// query fetches per incremental cycle.
	defaultPerKeywordLimit = 50

	defaultEnrichWorkers = 4
)

// SearchProvider returns candidate papers for a query, sorted by
// submission date descending. An empty result is not an error.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]paper.Paper, error)
}

// Enricher produces the translation for one paper. Implementations
// degrade internally and never abort a cycle.
type Enricher interface {
	Enrich(ctx context.Context, p paper.Paper) enrich.Translation
}

// WatermarkStore persists the incremental boundary timestamp.
type WatermarkStore interface {
	Load() (time.Time, error)
	Advance(t time.Time) error
}

// RegistrySource exposes the watched keyword and category sets.
type RegistrySource interface {
	Snapshot() (keywords, categories []string, err error)
}

// Engine composes provider, enricher, watermark and registry into the
// incremental watch-and-enrichment pipeline. One cycle runs to
// completion before the next is invoked; only enrichment fans out
// within a cycle.
type Engine struct {
	provider        SearchProvider
	enricher        Enricher
	watermark       WatermarkStore
	registry        RegistrySource
	perKeywordLimit int
	enrichWorkers   int
	now             func() time.Time
}

type EngineConfig struct {
	Provider        SearchProvider
	Enricher        Enricher
	Watermark       WatermarkStore
	Registry        RegistrySource
	PerKeywordLimit int
	EnrichWorkers   int
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.PerKeywordLimit <= 0 {
		cfg.PerKeywordLimit = defaultPerKeywordLimit
	}
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = defaultEnrichWorkers
	}

	return &Engine{
		provider:        cfg.Provider,
		enricher:        cfg.Enricher,
		watermark:       cfg.Watermark,
		registry:        cfg.Registry,
		perKeywordLimit: cfg.PerKeywordLimit,
		enrichWorkers:   cfg.EnrichWorkers,
		now:             time.Now,
	}
}

// CheckNewPapers runs one incremental cycle: for each watched keyword,
// in registry order, fetch candidates, keep those published strictly
// after the watermark, deduplicate by identity across keywords, enrich
// the survivors and advance the watermark. A provider failure aborts
// the whole cycle; partial keyword coverage with a silently stale
// watermark would be worse than a visible failure.
func (e *Engine) CheckNewPapers(ctx context.Context) (map[string][]paper.Enriched, error) {
	keywords, categories, err := e.registry.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	results := make(map[string][]paper.Enriched)
	if len(keywords) == 0 {
		return results, nil
	}

	since, err := e.watermark.Load()
	if err != nil {
		return nil, fmt.Errorf("load watermark: %w", err)
	}
	cycleStart := e.now().UTC()

	slog.Info("checking for new papers", "keywords", len(keywords), "since", since)

	seen := make(map[string]struct{})
	var maxSeen time.Time

	for _, keyword := range keywords {
		query := arxiv.BuildQuery(keyword, categories)
		candidates, err := e.provider.Search(ctx, query, e.perKeywordLimit)
		if err != nil {
			return nil, fmt.Errorf("search keyword %q: %w", keyword, err)
		}

		for _, p := range candidates {
			// Papers exactly at the watermark are already processed.
			if !p.PublishedAt.After(since) {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}

			if p.PublishedAt.After(maxSeen) {
				maxSeen = p.PublishedAt
			}

			slog.Info("found new paper", "id", p.ID, "published", p.PublishedAt, "keyword", keyword)
			results[keyword] = append(results[keyword], paper.Enriched{
				Paper:          p,
				MatchedKeyword: keyword,
			})
		}
	}

	e.enrichAll(ctx, results)

	// Even an empty cycle advances the watermark to its start time, so
	// query windows stay bounded. This can miss items indexed out of
	// order inside the gap; accepted trade-off.
	next := cycleStart
	if !maxSeen.IsZero() {
		next = maxSeen
	}
	if err := e.watermark.Advance(next); err != nil {
		return nil, fmt.Errorf("advance watermark: %w", err)
	}

	slog.Info("cycle complete", "surfaced", len(seen), "watermark", next)
	return results, nil
}

// SearchRequest is one ad-hoc search-and-enrich call. Since, when set,
// is an inclusive lower bound on publication time; the caller scoped
// the search explicitly, unlike the strict watermark boundary.
type SearchRequest struct {
	Query      string
	MaxResults int
	Categories []string
	Since      time.Time
	Enrich     bool
}

// SearchAndEnrich runs one ad-hoc cycle with no keyword attribution and
// no watermark involvement.
func (e *Engine) SearchAndEnrich(ctx context.Context, req SearchRequest) ([]paper.Enriched, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	fetch := maxResults
	if fetch > arxiv.MaxResults {
		fetch = arxiv.MaxResults
	}

	query := arxiv.WithCategories(req.Query, req.Categories)
	candidates, err := e.provider.Search(ctx, query, fetch)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}

	results := make([]paper.Enriched, 0, len(candidates))
	for _, p := range candidates {
		if !req.Since.IsZero() && p.PublishedAt.Before(req.Since) {
			continue
		}
		results = append(results, paper.Enriched{Paper: p})
		if len(results) >= maxResults {
			break
		}
	}

	if req.Enrich {
		e.enrichSlice(ctx, results)
	}

	return results, nil
}

// enrichAll fans enrichment out over every surfaced paper with a
// bounded worker count. Bucket ordering is untouched; each goroutine
// writes only its own element.
func (e *Engine) enrichAll(ctx context.Context, results map[string][]paper.Enriched) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.enrichWorkers)

	for keyword := range results {
		bucket := results[keyword]
		for i := range bucket {
			wg.Add(1)
			sem <- struct{}{}
			go func(ep *paper.Enriched) {
				defer wg.Done()
				defer func() { <-sem }()

				t := e.enricher.Enrich(ctx, ep.Paper)
				ep.TranslatedTitle = t.Title
				ep.TranslatedSummary = t.Summary
			}(&bucket[i])
		}
	}

	wg.Wait()
}

func (e *Engine) enrichSlice(ctx context.Context, results []paper.Enriched) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.enrichWorkers)

	for i := range results {
		wg.Add(1)
		sem <- struct{}{}
		go func(ep *paper.Enriched) {
			defer wg.Done()
			defer func() { <-sem }()

			t := e.enricher.Enrich(ctx, ep.Paper)
			ep.TranslatedTitle = t.Title
			ep.TranslatedSummary = t.Summary
		}(&results[i])
	}

	wg.Wait()
}
