package store

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/studyplan/internal/apperr"
	"github.com/starford/studyplan/internal/models"
)

// AddSubject validates and inserts a subject with its topics.
func (db *DB) AddSubject(ctx context.Context, in NewSubject) (models.Subject, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Subject{}, apperr.Invalid("name", "subject name is required")
	}
	if in.ExamDate.IsZero() {
		return models.Subject{}, apperr.Invalid("exam_date", "exam date is required")
	}
	now := db.now()
	exam := models.DateOf(in.ExamDate)
	if exam.Before(models.DateOf(now)) {
		return models.Subject{}, apperr.New(apperr.ErrInvalidDate, "exam_date",
			"%s is in the past", exam.Format(models.DateLayout))
	}
	if !slices.Contains(models.Difficulties, in.Difficulty) {
		return models.Subject{}, apperr.Invalid("difficulty", "must be Easy, Medium or Hard, got %q", in.Difficulty)
	}
	color := in.Color
	if color == "" {
		color = models.ColorFor(name)
	}
	topics := normalizeTopics(in.Topics)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Subject{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.ExecContext(ctx,
		`INSERT INTO subjects (name, exam_date, difficulty, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, exam.Format(models.DateLayout), string(in.Difficulty), color, now.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return models.Subject{}, apperr.New(apperr.ErrDuplicate, "name", "subject %q already exists", name)
		}
		return models.Subject{}, fmt.Errorf("store: insert subject: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Subject{}, fmt.Errorf("store: subject id: %w", err)
	}

	if len(topics) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO topics (subject_id, position, name) VALUES (?, ?, ?)`)
		if err != nil {
			return models.Subject{}, fmt.Errorf("store: prepare topic insert: %w", err)
		}
		defer stmt.Close()
		for i, t := range topics {
			if _, err := stmt.ExecContext(ctx, id, i, t); err != nil {
				return models.Subject{}, fmt.Errorf("store: insert topic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Subject{}, fmt.Errorf("store: commit: %w", err)
	}

	out := models.Subject{
		ID:         id,
		Name:       name,
		ExamDate:   exam,
		Difficulty: in.Difficulty,
		Color:      color,
		Topics:     make([]models.Topic, len(topics)),
		CreatedAt:  now.UTC(),
	}
	for i, t := range topics {
		out.Topics[i] = models.Topic{Name: t}
	}
	return out, nil
}

// RemoveSubject deletes a subject, its topics and its current-plan tasks,
// and moves its documents to the General bucket. It reports false when no
// such subject exists.
func (db *DB) RemoveSubject(ctx context.Context, name string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := subjectID(ctx, tx, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks WHERE subject_id = ?`, id); err != nil {
		return false, fmt.Errorf("store: delete plan tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE subject_id = ?`, id); err != nil {
		return false, fmt.Errorf("store: delete topics: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET subject = ? WHERE subject = ?`, models.GeneralSubject, name); err != nil {
		return false, fmt.Errorf("store: reassign documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("store: delete subject: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit: %w", err)
	}
	return true, nil
}

// UpdateProgress sets a topic's completion, clamped to [0,100].
func (db *DB) UpdateProgress(ctx context.Context, name, topic string, percent int) error {
	percent = max(0, min(100, percent))

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id, err := subjectID(ctx, tx, name)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE topics SET progress = ? WHERE subject_id = ? AND name = ?`, percent, id, topic)
	if err != nil {
		return fmt.Errorf("store: update progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.ErrNotFound, "topic", "subject %q has no topic %q", name, topic)
	}
	return tx.Commit()
}

// GetSubject returns one subject by exact name.
func (db *DB) GetSubject(ctx context.Context, name string) (models.Subject, error) {
	subjects, err := db.querySubjects(ctx, `WHERE s.name = ?`, name)
	if err != nil {
		return models.Subject{}, err
	}
	if len(subjects) == 0 {
		return models.Subject{}, apperr.NotFound("subject", name)
	}
	return subjects[0], nil
}

// ListSubjects returns all subjects in insertion order.
func (db *DB) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return db.querySubjects(ctx, "")
}

// Upcoming returns subjects whose exam is between today and withinDays
// from now, soonest first, ties by name.
func (db *DB) Upcoming(ctx context.Context, withinDays int) ([]models.Subject, error) {
	all, err := db.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	today := db.now()
	var out []models.Subject
	for _, s := range all {
		if d := s.DaysUntil(today); d >= 0 && d <= withinDays {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Subject) int {
		if c := cmp.Compare(a.DaysUntil(today), b.DaysUntil(today)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// querySubjects loads subjects matching where plus their topics.
func (db *DB) querySubjects(ctx context.Context, where string, args ...any) ([]models.Subject, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.id, s.name, s.exam_date, s.difficulty, s.color, s.created_at,
		       t.name, t.progress
		FROM subjects s
		LEFT JOIN topics t ON t.subject_id = s.id
		`+where+`
		ORDER BY s.id, t.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list subjects: %w", err)
	}
	defer rows.Close()

	var out []models.Subject
	for rows.Next() {
		var (
			id                      int64
			name, exam, diff, color string
			created                 time.Time
			topicName               sql.NullString
			progress                sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &exam, &diff, &color, &created, &topicName, &progress); err != nil {
			return nil, fmt.Errorf("store: scan subject: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			examDate, err := models.ParseDate(exam)
			if err != nil {
				return nil, fmt.Errorf("store: subject %q has bad exam date %q: %w", name, exam, err)
			}
			out = append(out, models.Subject{
				ID:         id,
				Name:       name,
				ExamDate:   examDate,
				Difficulty: models.Difficulty(diff),
				Color:      color,
				Topics:     []models.Topic{},
				CreatedAt:  created.UTC(),
			})
		}
		if topicName.Valid {
			cur := &out[len(out)-1]
			cur.Topics = append(cur.Topics, models.Topic{Name: topicName.String, Progress: int(progress.Int64)})
		}
	}
	return out, rows.Err()
}

func subjectID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM subjects WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("subject", name)
	}
	if err != nil {
		return 0, fmt.Errorf("store: lookup subject: %w", err)
	}
	return id, nil
}

// normalizeTopics trims names, drops blanks and keeps the first of any duplicates.
func normalizeTopics(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
