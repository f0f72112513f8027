package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paperwatch/internal/cache"
	"paperwatch/internal/paper"
)

type countingTranslator struct {
	calls int
	out   string
	err   error
}

func (c *countingTranslator) Translate(ctx context.Context, title, abstract string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.out, nil
}

func testPaper(id string) paper.Paper {
	return paper.Paper{ID: id, Title: "A Title", Abstract: "An abstract."}
}

func TestEnrichCachesResult(t *testing.T) {
	t.Parallel()

	tr := &countingTranslator{out: "タイトル：翻訳済み\n要約：要約済み。"}
	e := New(tr, cache.NewMemory[Translation](0))
	ctx := context.Background()

	first := e.Enrich(ctx, testPaper("2501.00001"))
	second := e.Enrich(ctx, testPaper("2501.00001"))

	if tr.calls != 1 {
		t.Fatalf("expected exactly one backend call, got %d", tr.calls)
	}
	if first != second {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	if first.Title != "翻訳済み" || first.Summary != "要約済み。" {
		t.Fatalf("unexpected translation: %+v", first)
	}
}

func TestEnrichDistinctIdentities(t *testing.T) {
	t.Parallel()

	tr := &countingTranslator{out: "タイトル：翻訳\n要約：要約。"}
	e := New(tr, cache.NewMemory[Translation](0))
	ctx := context.Background()

	e.Enrich(ctx, testPaper("2501.00001"))
	e.Enrich(ctx, testPaper("2501.00002"))

	if tr.calls != 2 {
		t.Fatalf("expected one call per identity, got %d", tr.calls)
	}
}

func TestEnrichHardFailureNotCached(t *testing.T) {
	t.Parallel()

	tr := &countingTranslator{err: errors.New("backend down")}
	e := New(tr, cache.NewMemory[Translation](0))
	ctx := context.Background()

	p := testPaper("2501.00003")
	got := e.Enrich(ctx, p)

	if got.Title != p.Title {
		t.Fatalf("degraded result should keep original title, got %q", got.Title)
	}
	if got.Summary != SummaryGenerationFailed {
		t.Fatalf("expected generation sentinel, got %q", got.Summary)
	}

	// The failure must not be cached: a later call retries the backend.
	tr.err = nil
	tr.out = "タイトル：復旧\n要約：復旧後の要約。"
	got = e.Enrich(ctx, p)
	if tr.calls != 2 {
		t.Fatalf("expected retry after hard failure, calls=%d", tr.calls)
	}
	if got.Summary != "復旧後の要約。" {
		t.Fatalf("expected fresh translation after recovery, got %q", got.Summary)
	}
}

func TestEnrichExtractionFailureIsCached(t *testing.T) {
	t.Parallel()

	tr := &countingTranslator{out: "no labels in this output"}
	e := New(tr, cache.NewMemory[Translation](0))
	ctx := context.Background()

	p := testPaper("2501.00004")
	first := e.Enrich(ctx, p)
	second := e.Enrich(ctx, p)

	if first.Summary != SummaryExtractionFailed {
		t.Fatalf("expected extraction sentinel, got %q", first.Summary)
	}
	if tr.calls != 1 {
		t.Fatalf("malformed-but-successful output should be cached, calls=%d", tr.calls)
	}
	if second != first {
		t.Fatalf("cached degraded result differs: %+v vs %+v", second, first)
	}
}

func TestTestTranslatorMarksOutput(t *testing.T) {
	t.Parallel()

	raw, err := TestTranslator{}.Translate(context.Background(), "Some Title", "abstract")
	if err != nil {
		t.Fatalf("test translator errored: %v", err)
	}

	got := parseTranslation(raw, "Some Title")
	if !strings.HasPrefix(got.Title, "[テスト]") {
		t.Fatalf("test title not marked: %q", got.Title)
	}
	if !strings.Contains(got.Summary, "テストモード") {
		t.Fatalf("test summary not marked: %q", got.Summary)
	}
}
