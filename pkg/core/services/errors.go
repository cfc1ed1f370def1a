package services

import (
	"errors"

	"github.com/rotaplan/rotaplan/pkg/core/calendar"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// Operation error kinds. Wrapped with context at each return site; callers
// match with errors.Is.
var (
	// ErrInvalidPeriod marks a malformed or out-of-range year/month
	ErrInvalidPeriod = calendar.ErrInvalidPeriod

	// ErrInvalidTransition marks a lifecycle operation attempted from a
	// state that forbids it
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrSlotConflict marks a concurrent mutation racing on the same slot;
	// callers should reload and retry
	ErrSlotConflict = db.ErrSlotConflict

	// ErrQuotaExceeded marks an attempt to assign a person past their
	// effective monthly limit without the override flag
	ErrQuotaExceeded = errors.New("monthly quota exceeded")

	// ErrIneligible marks a swap target failing the availability or
	// double-booking checks without the override flag
	ErrIneligible = errors.New("person is not eligible for this slot")

	// ErrNotFound passes through store lookups that matched nothing
	ErrNotFound = db.ErrNotFound

	// ErrDuplicateEvent marks an attempt to create an event on an occupied
	// (date, time) pair
	ErrDuplicateEvent = errors.New("an event already exists at this date and time")
)
