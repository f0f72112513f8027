package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"paperwatch/internal/paper"
)

// Archive records every paper an incremental cycle surfaced, for feed
// serving and history. It is not consulted for dedup; that stays with
// the watermark and the per-cycle identity set.
type Archive struct {
	db *sql.DB
}

func (a *Archive) StoreCycle(ctx context.Context, papers []paper.Enriched) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO papers (
			id, title, abstract, translated_title, translated_summary,
			matched_keyword, primary_category, categories, authors,
			published_at, surfaced_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	now := time.Now().UTC()
	for _, p := range papers {
		categories, _ := json.Marshal(p.Categories)
		authors, _ := json.Marshal(p.Authors)

		_, err := tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Abstract, p.TranslatedTitle, p.TranslatedSummary,
			p.MatchedKeyword, p.PrimaryCategory, string(categories), string(authors),
			p.PublishedAt.UTC(), now,
		)
		if err != nil {
			return fmt.Errorf("store paper %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// ListRecent returns the most recently surfaced papers, newest
// publication first.
func (a *Archive) ListRecent(ctx context.Context, limit int) ([]paper.Enriched, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, title, abstract, translated_title, translated_summary,
			matched_keyword, primary_category, categories, authors, published_at
		FROM papers
		ORDER BY published_at DESC
		LIMIT ?
	`

	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent papers: %w", err)
	}
	defer rows.Close()

	papers := make([]paper.Enriched, 0, limit)
	for rows.Next() {
		var (
			p          paper.Enriched
			categories string
			authors    string
		)
		err := rows.Scan(
			&p.ID, &p.Title, &p.Abstract, &p.TranslatedTitle, &p.TranslatedSummary,
			&p.MatchedKeyword, &p.PrimaryCategory, &categories, &authors, &p.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan paper row: %w", err)
		}

		if err := json.Unmarshal([]byte(categories), &p.Categories); err != nil {
			p.Categories = nil
		}
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			p.Authors = nil
		}
		papers = append(papers, p)
	}

	return papers, rows.Err()
}

// Exists reports whether a paper identity has ever been archived.
func (a *Archive) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return count > 0, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
