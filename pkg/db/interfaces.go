package db

import (
	"context"
	"errors"
	"time"
)

// ErrSlotConflict is returned by InsertAssignment when another active
// assignment already occupies the (event, slot) pair. Callers should reload
// state and retry.
var ErrSlotConflict = errors.New("slot already occupied by an active assignment")

// ErrNotFound is returned by Get operations when no record matches
var ErrNotFound = errors.New("record not found")

// Database defines the interface for all database operations.
// The postgres.DB implementation satisfies this; services depend on narrower
// per-operation interfaces declared alongside each service.
type Database interface {
	GetPeople(ctx context.Context) ([]Person, error)
	InsertPerson(ctx context.Context, person *Person) error
	GetAvailability(ctx context.Context) ([]AvailabilityRecord, error)
	UpsertAvailability(ctx context.Context, record *AvailabilityRecord) error
	GetMonthEvents(ctx context.Context, year int, month time.Month) ([]Event, error)
	InsertEvents(ctx context.Context, events []Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]Assignment, error)
	GetEventAssignments(ctx context.Context, eventID string) ([]Assignment, error)
	GetConfirmedInRange(ctx context.Context, start, end string) ([]ConfirmedPair, error)
	LastActiveBefore(ctx context.Context, before time.Time, includeAdhoc bool) (map[string]time.Time, error)
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	UpdateAssignmentStatus(ctx context.Context, assignment *Assignment) error
	InsertAuditEntry(ctx context.Context, entry *AuditEntry) error
}
