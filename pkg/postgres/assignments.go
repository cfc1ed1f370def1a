package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotaplan/rotaplan/pkg/db"
)

const pgUniqueViolation = "23505"

// GetAssignment retrieves a single assignment by ID
func (d *DB) GetAssignment(ctx context.Context, id string) (*db.Assignment, error) {
	var a db.Assignment
	err := d.pool.QueryRow(ctx, `
		SELECT id, event_id, person_id, slot_index, status, reason, created_at, confirmed_at
		FROM assignment
		WHERE id = $1
	`, id).Scan(&a.ID, &a.EventID, &a.PersonID, &a.SlotIndex, &a.Status, &a.Reason, &a.CreatedAt, &a.ConfirmedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment %s: %w", id, err)
	}

	return &a, nil
}

// GetMonthAssignments retrieves all assignments, in any status, whose event
// falls within the given month
func (d *DB) GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]db.Assignment, error) {
	first, last := monthBounds(year, month)

	rows, err := d.pool.Query(ctx, `
		SELECT a.id, a.event_id, a.person_id, a.slot_index, a.status, a.reason, a.created_at, a.confirmed_at
		FROM assignment a
		JOIN event e ON e.id = a.event_id
		WHERE e.date >= $1 AND e.date <= $2
		ORDER BY e.date, e.time, a.slot_index
	`, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for %d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// GetEventAssignments retrieves all assignments for a single event
func (d *DB) GetEventAssignments(ctx context.Context, eventID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, event_id, person_id, slot_index, status, reason, created_at, confirmed_at
		FROM assignment
		WHERE event_id = $1
		ORDER BY slot_index, created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for event %s: %w", eventID, err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// GetConfirmedInRange retrieves confirmed assignments whose event falls
// within the inclusive date range, joined to their event and person. This is
// the feed the reminder sink consumes.
func (d *DB) GetConfirmedInRange(ctx context.Context, start, end string) ([]db.ConfirmedPair, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT e.id, e.date, e.time, e.category, e.label, e.required_count,
		       p.id, p.name, p.email, p.active, p.adhoc_opt_in, p.monthly_limit
		FROM assignment a
		JOIN event e ON e.id = a.event_id
		JOIN person p ON p.id = a.person_id
		WHERE a.status = 'confirmed' AND e.date >= $1 AND e.date <= $2
		ORDER BY e.date, e.time, a.slot_index
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed assignments in [%s, %s]: %w", start, end, err)
	}
	defer rows.Close()

	var pairs []db.ConfirmedPair
	for rows.Next() {
		var pair db.ConfirmedPair
		if err := rows.Scan(
			&pair.Event.ID, &pair.Event.Date, &pair.Event.Time, &pair.Event.Category, &pair.Event.Label, &pair.Event.RequiredCount,
			&pair.Person.ID, &pair.Person.Name, &pair.Person.Email, &pair.Person.Active, &pair.Person.AdhocOptIn, &pair.Person.MonthlyLimit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan confirmed pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confirmed pairs: %w", err)
	}

	return pairs, nil
}

// LastActiveBefore returns, per person, the latest event datetime strictly
// before the given instant at which the person holds an active assignment.
// Adhoc events are included only when includeAdhoc is set, mirroring whether
// they count toward quota. People with no prior service are absent from the
// map, which ranks them first in rotation order.
func (d *DB) LastActiveBefore(ctx context.Context, before time.Time, includeAdhoc bool) (map[string]time.Time, error) {
	// Date and time are ISO 8601 text, so concatenation compares
	// chronologically
	cutoff := before.UTC().Format("2006-01-02 15:04")

	rows, err := d.pool.Query(ctx, `
		SELECT a.person_id, MAX(e.date || ' ' || e.time)
		FROM assignment a
		JOIN event e ON e.id = a.event_id
		WHERE a.status IN ('suggested', 'confirmed')
		  AND (e.date || ' ' || e.time) < $1
		  AND ($2 OR e.category <> 'adhoc')
		GROUP BY a.person_id
	`, cutoff, includeAdhoc)
	if err != nil {
		return nil, fmt.Errorf("failed to query last active assignments: %w", err)
	}
	defer rows.Close()

	last := make(map[string]time.Time)
	for rows.Next() {
		var personID, datetime string
		if err := rows.Scan(&personID, &datetime); err != nil {
			return nil, fmt.Errorf("failed to scan last active row: %w", err)
		}
		at, err := time.Parse("2006-01-02 15:04", datetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event datetime %q: %w", datetime, err)
		}
		last[personID] = at
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating last active rows: %w", err)
	}

	return last, nil
}

// InsertAssignment adds a new assignment. A unique-violation on the active
// slot index means another writer got there first and is surfaced as
// db.ErrSlotConflict.
func (d *DB) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO assignment (id, event_id, person_id, slot_index, status, reason, created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, assignment.ID, assignment.EventID, assignment.PersonID, assignment.SlotIndex,
		assignment.Status, assignment.Reason, assignment.CreatedAt, assignment.ConfirmedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return db.ErrSlotConflict
		}
		return fmt.Errorf("failed to insert assignment %s: %w", assignment.ID, err)
	}

	return nil
}

// UpdateAssignmentStatus persists a lifecycle transition. Only the mutable
// lifecycle fields are written; identity fields never change.
func (d *DB) UpdateAssignmentStatus(ctx context.Context, assignment *db.Assignment) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE assignment
		SET status = $2, reason = $3, confirmed_at = $4
		WHERE id = $1
	`, assignment.ID, assignment.Status, assignment.Reason, assignment.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to update assignment %s: %w", assignment.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}

	return nil
}

func scanAssignments(rows pgx.Rows) ([]db.Assignment, error) {
	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.PersonID, &a.SlotIndex, &a.Status, &a.Reason, &a.CreatedAt, &a.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}
