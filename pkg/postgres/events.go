package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// monthBounds returns the inclusive first and last date strings of a month.
// Dates are stored as ISO 8601 text, so string comparison matches
// chronological order.
func monthBounds(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// GetMonthEvents retrieves all events dated within the given month
func (d *DB) GetMonthEvents(ctx context.Context, year int, month time.Month) ([]db.Event, error) {
	first, last := monthBounds(year, month)

	rows, err := d.pool.Query(ctx, `
		SELECT id, date, time, category, label, required_count
		FROM event
		WHERE date >= $1 AND date <= $2
		ORDER BY date, time
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	var events []db.Event
	for rows.Next() {
		var e db.Event
		if err := rows.Scan(&e.ID, &e.Date, &e.Time, &e.Category, &e.Label, &e.RequiredCount); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// InsertEvents adds events in a single transaction so a partial calendar
// build never persists.
func (d *DB) InsertEvents(ctx context.Context, events []db.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		_, err := tx.Exec(ctx, `
			INSERT INTO event (id, date, time, category, label, required_count)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, e.Date, e.Time, e.Category, e.Label, e.RequiredCount)
		if err != nil {
			return fmt.Errorf("failed to insert event %s %s: %w", e.Date, e.Time, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}

// GetEvent retrieves a single event by ID
func (d *DB) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	var e db.Event
	err := d.pool.QueryRow(ctx, `
		SELECT id, date, time, category, label, required_count
		FROM event
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Date, &e.Time, &e.Category, &e.Label, &e.RequiredCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event %s: %w", id, err)
	}

	return &e, nil
}
