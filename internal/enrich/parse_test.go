package enrich

import "testing"

func TestParseTranslation(t *testing.T) {
	t.Parallel()

	raw := "タイトル：注意機構の再考\n要約：本研究では注意機構の限界を検討する。"
	got := parseTranslation(raw, "Attention Revisited")

	if got.Title != "注意機構の再考" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Summary != "本研究では注意機構の限界を検討する。" {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestParseTranslationHalfWidthColon(t *testing.T) {
	t.Parallel()

	raw := "タイトル: 半角コロンの場合\n要約: 区切り文字の揺れを吸収する。"
	got := parseTranslation(raw, "fallback")

	if got.Title != "半角コロンの場合" {
		t.Fatalf("half-width colon not accepted: %q", got.Title)
	}
	if got.Summary != "区切り文字の揺れを吸収する。" {
		t.Fatalf("half-width colon not accepted in summary: %q", got.Summary)
	}
}

func TestParseTranslationSurroundingNoise(t *testing.T) {
	t.Parallel()

	raw := "以下が翻訳です。\n\n  タイトル：前後の空白も許容\nその他の行\n要約：ノイズ行は無視される。\nありがとうございました。"
	got := parseTranslation(raw, "fallback")

	if got.Title != "前後の空白も許容" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Summary != "ノイズ行は無視される。" {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestParseTranslationFirstMatchWins(t *testing.T) {
	t.Parallel()

	raw := "タイトル：一つ目\nタイトル：二つ目\n要約：最初の要約\n要約：二番目の要約"
	got := parseTranslation(raw, "fallback")

	if got.Title != "一つ目" {
		t.Fatalf("expected first title line to win, got %q", got.Title)
	}
	if got.Summary != "最初の要約" {
		t.Fatalf("expected first summary line to win, got %q", got.Summary)
	}
}

func TestParseTranslationMissingTitle(t *testing.T) {
	t.Parallel()

	got := parseTranslation("要約：タイトル行が無い。", "Original Title")
	if got.Title != "Original Title" {
		t.Fatalf("expected fallback to original title, got %q", got.Title)
	}
	if got.Summary != "タイトル行が無い。" {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestParseTranslationMissingSummary(t *testing.T) {
	t.Parallel()

	got := parseTranslation("タイトル：要約行が無い", "Original Title")
	if got.Title != "要約行が無い" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Summary != SummaryExtractionFailed {
		t.Fatalf("expected extraction sentinel, got %q", got.Summary)
	}
}

func TestParseTranslationGarbage(t *testing.T) {
	t.Parallel()

	got := parseTranslation("the model refused to follow the format", "Original Title")
	if got.Title != "Original Title" {
		t.Fatalf("expected fallback title, got %q", got.Title)
	}
	if got.Summary != SummaryExtractionFailed {
		t.Fatalf("expected extraction sentinel, got %q", got.Summary)
	}
}
