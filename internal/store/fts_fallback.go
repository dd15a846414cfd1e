//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/studyplan/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over documents.body.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _, _, _ string) error {
	// Body is already stored in the documents table; nothing extra to do.
	return nil
}

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

// SearchDocuments performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) SearchDocuments(ctx context.Context, query string, limit int) ([]models.DocumentHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, subject, body
		FROM documents
		WHERE name LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY ingested_at, id
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []models.DocumentHit
	for rows.Next() {
		var (
			h    models.DocumentHit
			body string
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Subject, &body); err != nil {
			return nil, err
		}
		h.Snippet = snippet(body, query, 200)
		out = append(out, h)
	}
	return out, rows.Err()
}
