package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paperwatch/internal/arxiv"
	"paperwatch/internal/paper"
	"paperwatch/internal/storage"
	"paperwatch/internal/watch"
)

// Config tunes the HTTP surface.
type Config struct {
	Port     string
	FeedSize int
}

// Server exposes the watch engine over HTTP: ad-hoc search, registry
// management, on-demand cycles and outbound feeds of surfaced papers.
type Server struct {
	config   Config
	engine   *watch.Engine
	watcher  *watch.Watcher
	registry *watch.Registry
	archive  *storage.Archive
	listing  *arxiv.Listing
	server   *http.Server
}

func New(config Config, engine *watch.Engine, watcher *watch.Watcher, registry *watch.Registry, archive *storage.Archive, listing *arxiv.Listing) *Server {
	if config.Port == "" {
		config.Port = "8080"
	}
	if config.FeedSize == 0 {
		config.FeedSize = 100
	}

	return &Server{
		config:   config,
		engine:   engine,
		watcher:  watcher,
		registry: registry,
		archive:  archive,
		listing:  listing,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/watch", s.handleListWatch)
	mux.HandleFunc("POST /api/watch", s.handleAddWatch)
	mux.HandleFunc("DELETE /api/watch/{keyword}", s.handleRemoveWatch)
	mux.HandleFunc("GET /api/new-papers", s.handleNewPapers)
	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("POST /api/processing/pause", s.handlePause)
	mux.HandleFunc("POST /api/processing/resume", s.handleResume)
	mux.HandleFunc("GET /api/processing/status", s.handleStatus)
	mux.HandleFunc("GET /feed.rss", s.handleFeed("rss"))
	mux.HandleFunc("GET /feed.atom", s.handleFeed("atom"))
	mux.HandleFunc("GET /feed.json", s.handleFeed("json"))
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.routes(),
	}

	go func() {
		slog.Info("http server starting", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	maxResults := intParam(r, "max_results", 5)
	doEnrich := boolParam(r, "enrich", true)
	categories := splitParam(r.URL.Query().Get("categories"))

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = parsed
	}

	papers, err := s.engine.SearchAndEnrich(r.Context(), watch.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
		Categories: categories,
		Since:      since,
		Enrich:     doEnrich,
	})
	if err != nil {
		slog.Error("search failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, "検索に失敗しました")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": searchMessage(len(papers)),
		"papers":  toPaperViews(papers),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"categories": arxiv.Taxonomy,
	})
}

func (s *Server) handleListWatch(w http.ResponseWriter, r *http.Request) {
	keywords, categories, err := s.registry.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"watched_keywords": map[string]any{
			"keywords":   keywords,
			"categories": categories,
		},
	})
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword    string   `json:"keyword"`
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	if err := s.registry.Add(req.Keyword, req.Categories); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("キーワード '%s' を監視リストに追加しました", req.Keyword),
	})
}

func (s *Server) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")

	if err := s.registry.Remove(keyword); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("キーワード '%s' を監視リストから削除しました", keyword),
	})
}

func (s *Server) handleNewPapers(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.CheckNewPapers(r.Context())
	if err != nil {
		slog.Error("incremental check failed", "error", err)
		writeError(w, http.StatusBadGateway, "新着論文の確認に失敗しました")
		return
	}

	keywords, _, err := s.registry.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	flat := watch.Flatten(results, keywords)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"papers":  toPaperViews(flat),
		"grouped": toGroupViews(watch.GroupByDateAndKeyword(flat, keywords)),
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	papers, err := s.listing.Recent(r.Context(), category)
	if err != nil {
		slog.Error("listing browse failed", "category", category, "error", err)
		writeError(w, http.StatusBadGateway, "カテゴリーの取得に失敗しました")
		return
	}

	enriched := make([]paper.Enriched, 0, len(papers))
	for _, p := range papers {
		enriched = append(enriched, paper.Enriched{Paper: p})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"papers": toPaperViews(enriched),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.watcher.Pause()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "処理を一時停止しました",
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.watcher.Resume()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "処理を再開しました",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	processing := s.watcher.Processing()
	message := "処理停止中"
	if processing {
		message = "処理実行中"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"is_processing": processing,
		"message":       message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func searchMessage(count int) string {
	if count == 0 {
		return "新着論文はありませんでした"
	}
	return fmt.Sprintf("%d件の論文が見つかりました", count)
}

// paperView is the JSON shape a paper is served as.
type paperView struct {
	EntryID         string   `json:"entry_id"`
	Title           string   `json:"title"`
	TitleJA         string   `json:"title_ja,omitempty"`
	SummaryJA       string   `json:"summary_ja,omitempty"`
	Abstract        string   `json:"summary"`
	Authors         []string `json:"authors"`
	Published       string   `json:"published"`
	PDFURL          string   `json:"pdf_url"`
	AbsURL          string   `json:"abs_url"`
	PrimaryCategory string   `json:"primary_category"`
	Categories      []string `json:"categories"`
	MatchedKeyword  string   `json:"matched_keyword,omitempty"`
}

type keywordGroupView struct {
	Keyword string      `json:"keyword"`
	Papers  []paperView `json:"papers"`
}

type dateGroupView struct {
	Date     string             `json:"date"`
	Keywords []keywordGroupView `json:"keywords"`
}

// toGroupViews rewraps grouped papers in the wire shape, so grouped and
// flat payloads serialize the same way.
func toGroupViews(groups []watch.DateGroup) []dateGroupView {
	views := make([]dateGroupView, 0, len(groups))
	for _, group := range groups {
		view := dateGroupView{Date: group.Date}
		for _, bucket := range group.Keywords {
			view.Keywords = append(view.Keywords, keywordGroupView{
				Keyword: bucket.Keyword,
				Papers:  toPaperViews(bucket.Papers),
			})
		}
		views = append(views, view)
	}
	return views
}

func toPaperViews(papers []paper.Enriched) []paperView {
	views := make([]paperView, 0, len(papers))
	for _, p := range papers {
		views = append(views, paperView{
			EntryID:         p.ID,
			Title:           p.Title,
			TitleJA:         p.TranslatedTitle,
			SummaryJA:       p.TranslatedSummary,
			Abstract:        p.Abstract,
			Authors:         p.Authors,
			Published:       p.PublishedAt.UTC().Format(time.RFC3339),
			PDFURL:          p.PDFURL(),
			AbsURL:          p.AbsURL(),
			PrimaryCategory: p.PrimaryCategory,
			Categories:      p.Categories,
			MatchedKeyword:  p.MatchedKeyword,
		})
	}
	return views
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"status":  "error",
		"message": message,
	})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func boolParam(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
