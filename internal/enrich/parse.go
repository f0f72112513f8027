package enrich

import (
	"strings"

	"golang.org/x/text/width"
)

const (
	labelTitle   = "タイトル"
	labelSummary = "要約"

	// SummaryExtractionFailed marks output the backend produced but the
	// parser could not locate a summary in. Distinct from
	// SummaryGenerationFailed so the two degradations are tellable
	// apart downstream.
	SummaryExtractionFailed = "要約の抽出に失敗しました。"

	// SummaryGenerationFailed marks a failed backend call.
	SummaryGenerationFailed = "要約の生成に失敗しました。"
)

// parseTranslation extracts the labeled title and summary lines from
// free-form model output. Models emit the label separator as either a
// full-width or half-width colon; folding the line first makes both
// spell the same. Missing title falls back to the original; missing
// summary falls back to the extraction sentinel.
func parseTranslation(raw, originalTitle string) Translation {
	var title, summary string

	for _, line := range strings.Split(raw, "\n") {
		folded := width.Fold.String(strings.TrimSpace(line))

		if rest, ok := strings.CutPrefix(folded, labelTitle+":"); ok && title == "" {
			title = strings.TrimSpace(rest)
			continue
		}
		if rest, ok := strings.CutPrefix(folded, labelSummary+":"); ok && summary == "" {
			summary = strings.TrimSpace(rest)
		}
	}

	if title == "" {
		title = originalTitle
	}
	if summary == "" {
		summary = SummaryExtractionFailed
	}

	return Translation{Title: title, Summary: summary}
}
