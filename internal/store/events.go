package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/action"
)

// ActionEvent is one logged action.
type ActionEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Hand      string    `json:"hand"`
	Kind      string    `json:"kind"`
	Key       string    `json:"key,omitempty"`
	Combo     string    `json:"combo,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository reads and writes the action log.
type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Events returns the action log repository.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db, now: time.Now}
}

// Create inserts e, assigning an ID and timestamp when they are empty.
func (r *EventRepository) Create(ctx context.Context, e *ActionEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO action_events (id, session_id, hand, kind, key, combo, mode, x, y, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Hand, e.Kind, e.Key, e.Combo, e.Mode, e.X, e.Y, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert action event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]ActionEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, hand, kind, key, combo, mode, x, y, created_at
		 FROM action_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ActionEvent
	for rows.Next() {
		var e ActionEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Hand, &e.Kind, &e.Key, &e.Combo,
			&e.Mode, &e.X, &e.Y, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind returns how many events of each kind are logged.
func (r *EventRepository) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM action_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Prune deletes events older than before and returns how many were removed.
func (r *EventRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM action_events WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecordAction logs ev for the hand described by meta.
func (s *Store) RecordAction(ctx context.Context, meta action.Meta, ev action.Event) error {
	return s.Events().Create(ctx, &ActionEvent{
		SessionID: meta.SessionID,
		Hand:      meta.Hand,
		Kind:      string(ev.Kind),
		Key:       ev.Key,
		Combo:     ev.Combo,
		Mode:      firstNonEmpty(ev.Mode, meta.Mode),
		X:         ev.X,
		Y:         ev.Y,
	})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
