package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
)

const documentColumns = `id, name, path, subject, size, checksum, content_type, body, ingested_at`

// InsertDocument records document metadata and its searchable text.
func (db *DB) InsertDocument(ctx context.Context, d models.Document) error {
	if d.Subject == "" {
		d.Subject = models.GeneralSubject
	}
	if d.IngestedAt.IsZero() {
		d.IngestedAt = db.now()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Path, d.Subject, d.Size, d.Checksum, d.ContentType, d.Text, d.IngestedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.ErrDuplicate, "path", "document %q is already indexed", d.Path)
		}
		return fmt.Errorf("store: insert document: %w", err)
	}
	if err := ftsUpsert(ctx, tx, d.ID, d.Name, d.Text); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDocument removes a document's metadata and returns the removed row.
// It reports false when no such document exists.
func (db *DB) DeleteDocument(ctx context.Context, id string) (models.Document, bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	d, err := scanDocument(tx.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, false, nil
	}
	if err != nil {
		return models.Document{}, false, err
	}
	if err := ftsDelete(ctx, tx, id); err != nil {
		return models.Document{}, false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return models.Document{}, false, fmt.Errorf("store: delete document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Document{}, false, fmt.Errorf("store: commit: %w", err)
	}
	return d, true, nil
}

// GetDocument returns one document by id.
func (db *DB) GetDocument(ctx context.Context, id string) (models.Document, error) {
	d, err := scanDocument(db.conn.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, apperr.NotFound("document", id)
	}
	return d, err
}

// DocumentByPath returns the document stored at path.
func (db *DB) DocumentByPath(ctx context.Context, path string) (models.Document, error) {
	d, err := scanDocument(db.conn.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, apperr.NotFound("document", path)
	}
	return d, err
}

// ListDocuments returns all documents, oldest first.
func (db *DB) ListDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY ingested_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (models.Document, error) {
	var (
		d        models.Document
		ingested time.Time
	)
	err := r.Scan(&d.ID, &d.Name, &d.Path, &d.Subject, &d.Size, &d.Checksum, &d.ContentType, &d.Text, &ingested)
	if errors.Is(err, sql.ErrNoRows) {
		return d, err
	}
	if err != nil {
		return d, fmt.Errorf("store: scan document: %w", err)
	}
	d.IngestedAt = ingested.UTC()
	return d, nil
}
