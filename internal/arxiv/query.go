package arxiv

import (
	"fmt"
	"log/slog"
	"strings"
)

// maxCategoryLen bounds a category token; anything longer is treated as
// a pass-through artifact, not a real category.
const maxCategoryLen = 32

// ValidCategory reports whether cat looks like an arXiv category token
// (archive.subject, e.g. "cs.AI"). Tokens without a separator, with
// whitespace, or over the length bound are rejected.
func ValidCategory(cat string) bool {
	if cat == "" || len(cat) > maxCategoryLen {
		return false
	}
	if !strings.Contains(cat, ".") {
		return false
	}
	if strings.ContainsAny(cat, " \t\n\r") {
		return false
	}
	return true
}

// BuildQuery turns a watched keyword and an optional category set into a
// provider query string. Keywords containing whitespace are quoted so
// the provider runs a phrase search instead of a term disjunction.
// Deterministic: equal inputs always yield the same string.
func BuildQuery(keyword string, categories []string) string {
	kw := keyword
	if strings.ContainsAny(keyword, " \t") {
		kw = `"` + keyword + `"`
	}
	return WithCategories(kw, categories)
}

// WithCategories intersects a query clause with an OR of cat: clauses.
// Invalid category tokens are dropped and logged rather than failing
// the whole query. With no valid categories the clause is returned
// unchanged.
func WithCategories(query string, categories []string) string {
	clauses := make([]string, 0, len(categories))
	for _, cat := range categories {
		if !ValidCategory(cat) {
			slog.Warn("dropping invalid category token", "category", cat)
			continue
		}
		clauses = append(clauses, "cat:"+cat)
	}

	if len(clauses) == 0 {
		return query
	}

	return fmt.Sprintf("(%s) AND (%s)", query, strings.Join(clauses, " OR "))
}
