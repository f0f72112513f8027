package paper

import (
	"fmt"
	"time"
)

const absBaseURL = "https://arxiv.org/abs/"

// Paper is one candidate publication as returned by a search provider.
// ID is the provider-assigned arXiv identifier (e.g. "2501.01234v1") and
// never changes once assigned; two papers with equal ID are the same
// publication.
type Paper struct {
	ID              string
	Title           string
	Abstract        string
	PublishedAt     time.Time
	PrimaryCategory string
	Categories      []string
	Authors         []string
}

// AbsURL is the canonical abstract page, derived from the identifier.
func (p Paper) AbsURL() string {
	return absBaseURL + p.ID
}

// PDFURL points at the paper's PDF rendition.
func (p Paper) PDFURL() string {
	return fmt.Sprintf("https://arxiv.org/pdf/%s", p.ID)
}

// Enriched is a Paper plus per-cycle enrichment output. MatchedKeyword
// is the watched keyword whose query surfaced the paper; it is empty in
// ad-hoc search mode.
type Enriched struct {
	Paper

	TranslatedTitle   string
	TranslatedSummary string
	MatchedKeyword    string
}
