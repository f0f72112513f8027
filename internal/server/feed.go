package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"paperwatch/internal/paper"

	"github.com/gorilla/feeds"
)

// handleFeed serves the archived papers as an outbound feed in the
// requested format. Feeds are rebuilt per request; the archive query is
// already bounded by FeedSize.
func (s *Server) handleFeed(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		papers, err := s.archive.ListRecent(r.Context(), s.config.FeedSize)
		if err != nil {
			slog.Error("listing archived papers failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Error: %v", err)
			return
		}

		feed := s.buildFeed(papers)

		var body, contentType string
		switch format {
		case "rss":
			body, err = feed.ToRss()
			contentType = "application/rss+xml; charset=utf-8"
		case "atom":
			body, err = feed.ToAtom()
			contentType = "application/atom+xml; charset=utf-8"
		case "json":
			body, err = feed.ToJSON()
			contentType = "application/feed+json; charset=utf-8"
		}
		if err != nil {
			slog.Error("generating feed failed", "format", format, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fmt.Fprint(w, body)
	}
}

func (s *Server) buildFeed(papers []paper.Enriched) *feeds.Feed {
	items := make([]*feeds.Item, 0, len(papers))

	for _, p := range papers {
		title := p.Title
		if p.TranslatedTitle != "" {
			title = p.TranslatedTitle
		}
		description := p.Abstract
		if p.TranslatedSummary != "" {
			description = p.TranslatedSummary
		}

		item := &feeds.Item{
			Id:          p.ID,
			Title:       title,
			Link:        &feeds.Link{Href: p.AbsURL()},
			Description: description,
			Content:     p.Abstract,
			Author:      &feeds.Author{Name: strings.Join(p.Authors, ", ")},
			Created:     p.PublishedAt,
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Created.After(items[j].Created)
	})

	return &feeds.Feed{
		Title:       "PaperWatch",
		Link:        &feeds.Link{Href: "http://localhost/"},
		Description: "Newly surfaced arXiv papers with Japanese summaries",
		Author:      &feeds.Author{Name: "PaperWatch"},
		Created:     time.Now().UTC(),
		Items:       items,
	}
}
