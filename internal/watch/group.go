package watch

import (
	"slices"
	"sort"

	"paperwatch/internal/paper"
)

// UnattributedKeyword is the reserved bucket for papers without a
// matched keyword (ad-hoc search results).
const UnattributedKeyword = "unattributed"

// KeywordGroup is one keyword's papers within a date.
type KeywordGroup struct {
	Keyword string          `json:"keyword"`
	Papers  []paper.Enriched `json:"papers"`
}

// DateGroup holds one UTC calendar date's papers, bucketed by keyword.
type DateGroup struct {
	Date     string         `json:"date"`
	Keywords []KeywordGroup `json:"keywords"`
}

// GroupByDateAndKeyword buckets papers by UTC calendar date (descending)
// and then by matched keyword. Attribution is strictly by
// MatchedKeyword (the text is never re-scanned), so a paper lands in
// exactly one bucket. Duplicate identities in the input collapse to the
// first occurrence, making the operation idempotent under duplication.
// Keyword buckets follow the order of the keywords argument, then any
// unlisted keywords in first-seen order, with the unattributed bucket
// last.
func GroupByDateAndKeyword(items []paper.Enriched, keywords []string) []DateGroup {
	type bucketKey struct {
		date    string
		keyword string
	}

	seen := make(map[string]struct{}, len(items))
	buckets := make(map[bucketKey][]paper.Enriched)
	keywordOrder := slices.Clone(keywords)

	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		keyword := item.MatchedKeyword
		if keyword == "" {
			keyword = UnattributedKeyword
		}
		if keyword != UnattributedKeyword && !slices.Contains(keywordOrder, keyword) {
			keywordOrder = append(keywordOrder, keyword)
		}

		// UTC conversion keeps the calendar date stable regardless of
		// the timestamp's original offset.
		date := item.PublishedAt.UTC().Format("2006-01-02")
		key := bucketKey{date: date, keyword: keyword}
		buckets[key] = append(buckets[key], item)
	}
	keywordOrder = append(keywordOrder, UnattributedKeyword)

	dates := make([]string, 0, len(buckets))
	for key := range buckets {
		if !slices.Contains(dates, key.date) {
			dates = append(dates, key.date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DateGroup, 0, len(dates))
	for _, date := range dates {
		group := DateGroup{Date: date}
		for _, keyword := range keywordOrder {
			papers, ok := buckets[bucketKey{date: date, keyword: keyword}]
			if !ok {
				continue
			}
			group.Keywords = append(group.Keywords, KeywordGroup{
				Keyword: keyword,
				Papers:  papers,
			})
		}
		groups = append(groups, group)
	}

	return groups
}

// Flatten walks a keyword→papers mapping in the given keyword order and
// returns the flat sequence a notifier consumes.
func Flatten(results map[string][]paper.Enriched, keywords []string) []paper.Enriched {
	flat := make([]paper.Enriched, 0)
	for _, keyword := range keywords {
		flat = append(flat, results[keyword]...)
	}
	return flat
}
