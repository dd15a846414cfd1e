package store

import (
	"context"
	"fmt"

	"github.com/starford/studyplan/internal/models"
)

// ReplacePlan discards the current plan and stores tasks in order.
func (db *DB) ReplacePlan(ctx context.Context, tasks []models.StudyTask) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks`); err != nil {
		return fmt.Errorf("store: clear plan: %w", err)
	}
	for i, t := range tasks {
		id, err := subjectID(ctx, tx, t.Subject)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_tasks (position, subject_id, topic, duration, priority, reason, review, days_until)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, i, id, t.Topic, t.Duration, t.Priority, t.Reason, t.Review, t.DaysUntil)
		if err != nil {
			return fmt.Errorf("store: insert plan task: %w", err)
		}
	}
	return tx.Commit()
}

// CurrentPlan returns the stored plan in schedule order. Tasks of removed
// subjects are gone with them.
func (db *DB) CurrentPlan(ctx context.Context) ([]models.StudyTask, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.name, p.topic, p.duration, p.priority, p.reason, p.review, p.days_until
		FROM plan_tasks p
		JOIN subjects s ON s.id = p.subject_id
		ORDER BY p.position
	`)
	if err != nil {
		return nil, fmt.Errorf("store: current plan: %w", err)
	}
	defer rows.Close()

	out := []models.StudyTask{}
	for rows.Next() {
		var t models.StudyTask
		if err := rows.Scan(&t.Subject, &t.Topic, &t.Duration, &t.Priority, &t.Reason, &t.Review, &t.DaysUntil); err != nil {
			return nil, fmt.Errorf("store: scan plan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
