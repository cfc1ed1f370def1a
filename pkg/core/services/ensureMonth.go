package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/core/calendar"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// EnsureMonthStore defines the database operations needed to build a month's
// recurring calendar
type EnsureMonthStore interface {
	GetMonthEvents(ctx context.Context, year int, month time.Month) ([]db.Event, error)
	InsertEvents(ctx context.Context, events []db.Event) error
}

// EnsureMonth guarantees that every date in the month matching the configured
// recurrence rule carries its two recurring events. Existing events are never
// touched or duplicated; only the missing ones are created. Returns the
// created events.
func EnsureMonth(ctx context.Context, store EnsureMonthStore, cfg *config.Config, logger *zap.Logger, year int, month time.Month) ([]db.Event, error) {
	dates, err := calendar.MonthDates(cfg.RecurrenceRule, year, month)
	if err != nil {
		return nil, err
	}

	logger.Debug("Expanded recurrence rule",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("dates", len(dates)))

	existing, err := store.GetMonthEvents(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month events: %w", err)
	}

	existingKeys := make(map[calendar.EventKey]bool, len(existing))
	for _, e := range existing {
		existingKeys[calendar.EventKey{Date: e.Date, Time: e.Time}] = true
	}

	missing := calendar.MissingOccurrences(dates, slotTimes(cfg), existingKeys)
	if len(missing) == 0 {
		logger.Debug("Month calendar already complete")
		return nil, nil
	}

	created := make([]db.Event, 0, len(missing))
	for _, occ := range missing {
		created = append(created, db.Event{
			ID:            uuid.New().String(),
			Date:          occ.Date,
			Time:          occ.Time,
			Category:      occ.Category,
			RequiredCount: cfg.DefaultRequiredCount,
		})
	}

	if err := store.InsertEvents(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to insert events: %w", err)
	}

	logger.Info("Created recurring events",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("count", len(created)))

	return created, nil
}

// AddEvent creates a single ad-hoc event at the given date and time. The
// (date, time) pair must be free.
func AddEvent(ctx context.Context, store EnsureMonthStore, cfg *config.Config, logger *zap.Logger, date, timeOfDay, label string, requiredCount int) (*db.Event, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	if err := calendar.ValidatePeriod(d.Year(), d.Month()); err != nil {
		return nil, err
	}
	if requiredCount <= 0 {
		requiredCount = cfg.DefaultRequiredCount
	}

	existing, err := store.GetMonthEvents(ctx, d.Year(), d.Month())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month events: %w", err)
	}
	for _, e := range existing {
		if e.Date == date && e.Time == timeOfDay {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateEvent, date, timeOfDay)
		}
	}

	event := db.Event{
		ID:            uuid.New().String(),
		Date:          date,
		Time:          timeOfDay,
		Category:      db.CategoryAdhoc,
		Label:         label,
		RequiredCount: requiredCount,
	}

	if err := store.InsertEvents(ctx, []db.Event{event}); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logger.Info("Created ad-hoc event",
		zap.String("id", event.ID),
		zap.String("date", date),
		zap.String("time", timeOfDay),
		zap.String("label", label))

	return &event, nil
}
