package postgres

import (
	"context"
	"fmt"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// GetPeople retrieves every person on the roster, active or not. Callers
// filter by Active themselves so that lifecycle checks can still resolve
// people who have been deactivated since their assignment.
func (d *DB) GetPeople(ctx context.Context) ([]db.Person, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, email, active, adhoc_opt_in, monthly_limit
		FROM person
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []db.Person
	for rows.Next() {
		var p db.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Active, &p.AdhocOptIn, &p.MonthlyLimit); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// InsertPerson adds a new person to the roster
func (d *DB) InsertPerson(ctx context.Context, person *db.Person) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO person (id, name, email, active, adhoc_opt_in, monthly_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, person.ID, person.Name, person.Email, person.Active, person.AdhocOptIn, person.MonthlyLimit)
	if err != nil {
		return fmt.Errorf("failed to insert person %s: %w", person.ID, err)
	}

	return nil
}
