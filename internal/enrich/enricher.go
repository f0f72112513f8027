package enrich

import (
	"context"
	"log/slog"

	"paperwatch/internal/cache"
	"paperwatch/internal/paper"
)

// Translation is the enrichment output for one paper: a Japanese title
// and summary. The JSON tags double as the cache wire format.
type Translation struct {
	Title   string `json:"title_ja"`
	Summary string `json:"summary_ja"`
}

// Translator produces the free-form labeled text a Translation is
// parsed from. Implementations wrap an LLM backend; TestTranslator
// substitutes a fixed pair for offline runs and tests.
type Translator interface {
	Translate(ctx context.Context, title, abstract string) (string, error)
}

// Enricher wraps a Translator with a cache keyed by paper identity, so
// the backend is called at most once per identity for the lifetime of
// the cache entry.
type Enricher struct {
	translator Translator
	store      cache.Store[Translation]
}

func New(translator Translator, store cache.Store[Translation]) *Enricher {
	return &Enricher{
		translator: translator,
		store:      store,
	}
}

// Enrich returns the translation for one paper. It never fails the
// caller: a hard backend failure degrades to the original title plus a
// generation sentinel, and is not cached so the next cycle retries.
// Parse fallbacks (title or summary missing from otherwise successful
// output) are cached, since re-running the call would likely reproduce
// the same malformed output.
func (e *Enricher) Enrich(ctx context.Context, p paper.Paper) Translation {
	if cached, hit, err := e.store.Get(ctx, p.ID); err != nil {
		slog.Warn("enrichment cache read failed, treating as miss", "id", p.ID, "error", err)
	} else if hit {
		slog.Debug("enrichment cache hit", "id", p.ID)
		return cached
	}

	raw, err := e.translator.Translate(ctx, p.Title, p.Abstract)
	if err != nil {
		slog.Error("translation call failed", "id", p.ID, "error", err)
		return Translation{
			Title:   p.Title,
			Summary: SummaryGenerationFailed,
		}
	}

	result := parseTranslation(raw, p.Title)
	if result.Summary == SummaryExtractionFailed {
		slog.Warn("could not extract summary from translation output", "id", p.ID)
	}

	if err := e.store.Set(ctx, p.ID, result); err != nil {
		slog.Warn("enrichment cache write failed", "id", p.ID, "error", err)
	}

	return result
}
