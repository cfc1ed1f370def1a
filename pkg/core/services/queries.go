package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/pkg/core/calendar"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// QueryStore defines the read-side database operations
type QueryStore interface {
	GetMonthEvents(ctx context.Context, year int, month time.Month) ([]db.Event, error)
	GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]db.Assignment, error)
	GetConfirmedInRange(ctx context.Context, start, end string) ([]db.ConfirmedPair, error)
}

// EventWithAssignments is an event with its currently active assignments
// nested, in slot-index order
type EventWithAssignments struct {
	Event       db.Event
	Assignments []db.Assignment
}

// ListEventsWithAssignments returns the month's events ordered by date then
// time, each carrying only its active (suggested or confirmed) assignments.
// Declined and swapped assignments never appear. This is the feed for the
// export renderer.
func ListEventsWithAssignments(ctx context.Context, store QueryStore, logger *zap.Logger, year int, month time.Month) ([]EventWithAssignments, error) {
	if err := calendar.ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	events, err := store.GetMonthEvents(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month events: %w", err)
	}
	sortEvents(events)

	assignments, err := store.GetMonthAssignments(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month assignments: %w", err)
	}

	activeByEvent := make(map[string][]db.Assignment)
	for _, a := range assignments {
		if a.IsActive() {
			activeByEvent[a.EventID] = append(activeByEvent[a.EventID], a)
		}
	}

	out := make([]EventWithAssignments, 0, len(events))
	for _, e := range events {
		nested := activeByEvent[e.ID]
		sort.Slice(nested, func(i, j int) bool {
			return nested[i].SlotIndex < nested[j].SlotIndex
		})
		out = append(out, EventWithAssignments{Event: e, Assignments: nested})
	}

	logger.Debug("Listed month schedule",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("events", len(out)))

	return out, nil
}

// ListConfirmedInRange returns (event, person) pairs for confirmed
// assignments with event dates inside [start, end], both "2006-01-02"
// inclusive. This is the feed for the daily reminder trigger; formatting and
// delivery are the caller's concern.
func ListConfirmedInRange(ctx context.Context, store QueryStore, logger *zap.Logger, start, end string) ([]db.ConfirmedPair, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidPeriod, end, start)
	}

	pairs, err := store.GetConfirmedInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch confirmed assignments: %w", err)
	}

	logger.Debug("Listed confirmed assignments in range",
		zap.String("start", start),
		zap.String("end", end),
		zap.Int("count", len(pairs)))

	return pairs, nil
}
