package postgres

import (
	"context"
	"fmt"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// GetAvailability retrieves every declared availability rule
func (d *DB) GetAvailability(ctx context.Context) ([]db.AvailabilityRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, person_id, weekday, date, slot, available
		FROM availability_record
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability records: %w", err)
	}
	defer rows.Close()

	var records []db.AvailabilityRecord
	for rows.Next() {
		var r db.AvailabilityRecord
		if err := rows.Scan(&r.ID, &r.PersonID, &r.Weekday, &r.Date, &r.Slot, &r.Available); err != nil {
			return nil, fmt.Errorf("failed to scan availability record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability records: %w", err)
	}

	return records, nil
}

// UpsertAvailability stores an availability rule, replacing any existing
// declaration for the same (person, weekday/date, slot) key.
func (d *DB) UpsertAvailability(ctx context.Context, record *db.AvailabilityRecord) error {
	var err error
	if record.Weekday != nil {
		_, err = d.pool.Exec(ctx, `
			INSERT INTO availability_record (id, person_id, weekday, date, slot, available)
			VALUES ($1, $2, $3, NULL, $4, $5)
			ON CONFLICT (person_id, weekday, slot) WHERE weekday IS NOT NULL
			DO UPDATE SET available = EXCLUDED.available
		`, record.ID, record.PersonID, record.Weekday, record.Slot, record.Available)
	} else {
		_, err = d.pool.Exec(ctx, `
			INSERT INTO availability_record (id, person_id, weekday, date, slot, available)
			VALUES ($1, $2, NULL, $3, $4, $5)
			ON CONFLICT (person_id, date, slot) WHERE date IS NOT NULL
			DO UPDATE SET available = EXCLUDED.available
		`, record.ID, record.PersonID, record.Date, record.Slot, record.Available)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert availability for person %s: %w", record.PersonID, err)
	}

	return nil
}
