package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// RosterStore defines the database operations for roster administration
type RosterStore interface {
	GetPeople(ctx context.Context) ([]db.Person, error)
	InsertPerson(ctx context.Context, person *db.Person) error
	UpsertAvailability(ctx context.Context, record *db.AvailabilityRecord) error
}

// AddPerson creates a new active person on the roster
func AddPerson(ctx context.Context, store RosterStore, logger *zap.Logger, name, email string, adhocOptIn bool, monthlyLimit *int) (*db.Person, error) {
	if name == "" {
		return nil, fmt.Errorf("person name must not be empty")
	}
	if monthlyLimit != nil && *monthlyLimit < 1 {
		return nil, fmt.Errorf("monthly limit override must be at least 1, got %d", *monthlyLimit)
	}

	person := &db.Person{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Active:       true,
		AdhocOptIn:   adhocOptIn,
		MonthlyLimit: monthlyLimit,
	}

	if err := store.InsertPerson(ctx, person); err != nil {
		return nil, fmt.Errorf("failed to insert person: %w", err)
	}

	logger.Info("Added person to roster",
		zap.String("person_id", person.ID),
		zap.String("name", name))

	return person, nil
}

// ListPeople returns the roster ordered by name
func ListPeople(ctx context.Context, store RosterStore, logger *zap.Logger) ([]db.Person, error) {
	people, err := store.GetPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	sort.Slice(people, func(i, j int) bool {
		if people[i].Name != people[j].Name {
			return people[i].Name < people[j].Name
		}
		return people[i].ID < people[j].ID
	})

	return people, nil
}

// SetAvailability declares or updates one availability rule for a person.
// Exactly one of weekday or date must be given.
func SetAvailability(ctx context.Context, store RosterStore, logger *zap.Logger, personID string, weekday *int, date *string, slot string, available bool) (*db.AvailabilityRecord, error) {
	if (weekday == nil) == (date == nil) {
		return nil, fmt.Errorf("exactly one of weekday or date must be set")
	}
	if weekday != nil && (*weekday < 0 || *weekday > 6) {
		return nil, fmt.Errorf("weekday must be 0-6, got %d", *weekday)
	}
	if date != nil {
		if _, err := time.Parse("2006-01-02", *date); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", *date, err)
		}
	}
	if slot != db.SlotMorning && slot != db.SlotEvening {
		return nil, fmt.Errorf("slot must be %q or %q, got %q", db.SlotMorning, db.SlotEvening, slot)
	}

	record := &db.AvailabilityRecord{
		ID:        uuid.New().String(),
		PersonID:  personID,
		Weekday:   weekday,
		Date:      date,
		Slot:      slot,
		Available: available,
	}

	if err := store.UpsertAvailability(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to upsert availability: %w", err)
	}

	logger.Info("Availability updated",
		zap.String("person_id", personID),
		zap.String("slot", slot),
		zap.Bool("available", available))

	return record, nil
}
