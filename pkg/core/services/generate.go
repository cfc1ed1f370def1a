package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/core/calendar"
	"github.com/rotaplan/rotaplan/pkg/core/scheduler"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// NoEligibleCandidate is the reported outcome for a slot the engine could
// not fill. It is part of a successful result, never an error.
const NoEligibleCandidate = "no eligible candidate"

// GenerateStore defines the database operations needed for a generation run
type GenerateStore interface {
	EnsureMonthStore
	GetPeople(ctx context.Context) ([]db.Person, error)
	GetAvailability(ctx context.Context) ([]db.AvailabilityRecord, error)
	GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]db.Assignment, error)
	LastActiveBefore(ctx context.Context, before time.Time, includeAdhoc bool) (map[string]time.Time, error)
	InsertAssignment(ctx context.Context, assignment *db.Assignment) error
	InsertAuditEntry(ctx context.Context, entry *db.AuditEntry) error
}

// Proposal pairs an event with the assignment the engine picked for one of
// its slots
type Proposal struct {
	Event      db.Event
	Assignment db.Assignment
}

// UnfilledSlot reports a slot the engine left open and why
type UnfilledSlot struct {
	Event     db.Event
	SlotIndex int
	Reason    string
}

// GenerateResult contains the outcome of one generation run
type GenerateResult struct {
	Year          int
	Month         time.Month
	Committed     bool
	EventsCreated []db.Event
	Proposals     []Proposal
	Unfilled      []UnfilledSlot
}

// Generate proposes assignments for every unfilled slot in the month.
//
// Recurring events are ensured first regardless of commit: events are cheap
// structural data, not proposals. The engine then walks the month's events in
// (date, time) order and each event's slots in index order, so the quota and
// rotation effects of earlier picks are visible to later ones within the same
// run. Slots already holding an active assignment are skipped, which makes
// re-runs idempotent and a crashed commit run safely resumable.
//
// With commit=true each pick is persisted as a suggested assignment; with
// commit=false the same selection runs but nothing is written.
func Generate(ctx context.Context, store GenerateStore, cfg *config.Config, logger *zap.Logger, year int, month time.Month, commit bool) (*GenerateResult, error) {
	if err := calendar.ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	logger.Info("Starting generation run",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Bool("commit", commit))

	created, err := EnsureMonth(ctx, store, cfg, logger, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure month events: %w", err)
	}

	events, err := store.GetMonthEvents(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month events: %w", err)
	}
	sortEvents(events)

	result := &GenerateResult{
		Year:          year,
		Month:         month,
		Committed:     commit,
		EventsCreated: created,
	}
	if len(events) == 0 {
		logger.Info("No events in month, nothing to generate")
		return result, nil
	}

	people, err := store.GetPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	records, err := store.GetAvailability(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}
	availability := scheduler.NewAvailability(records)

	assignments, err := store.GetMonthAssignments(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch month assignments: %w", err)
	}

	// Rotation baseline: each person's last service before the month's
	// first event
	firstDT, err := events[0].DateTime()
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: %w", events[0].ID, err)
	}
	baseline, err := store.LastActiveBefore(ctx, firstDT, cfg.QuotaCountsAdhoc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rotation baseline: %w", err)
	}

	state := scheduler.NewMonthState(baseline)
	eventsByID := make(map[string]db.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}

	// Seed the state and the slot occupancy map with the month's existing
	// active assignments so re-runs only fill what is still open
	occupied := make(map[string]map[int]bool)
	for _, a := range assignments {
		if !a.IsActive() {
			continue
		}
		event, ok := eventsByID[a.EventID]
		if !ok {
			continue
		}
		dt, err := event.DateTime()
		if err != nil {
			return nil, fmt.Errorf("malformed event %s: %w", event.ID, err)
		}
		state.Register(a.PersonID, event.Date, dt, countsTowardQuota(event, cfg))
		if occupied[a.EventID] == nil {
			occupied[a.EventID] = make(map[int]bool)
		}
		occupied[a.EventID][a.SlotIndex] = true
	}

	for _, event := range events {
		dt, err := event.DateTime()
		if err != nil {
			return nil, fmt.Errorf("malformed event %s: %w", event.ID, err)
		}

		for slot := 0; slot < event.RequiredCount; slot++ {
			if occupied[event.ID][slot] {
				continue
			}

			ranked := scheduler.RankCandidates(scheduler.RankInput{
				Event:              event,
				People:             people,
				Availability:       availability,
				State:              state,
				DefaultLimit:       cfg.DefaultMonthlyLimit,
				AdhocOptInRequired: cfg.AdhocOptInRequired,
			})

			if len(ranked) == 0 {
				logger.Warn("No eligible candidate for slot",
					zap.String("event_id", event.ID),
					zap.String("date", event.Date),
					zap.Int("slot", slot))
				result.Unfilled = append(result.Unfilled, UnfilledSlot{
					Event:     event,
					SlotIndex: slot,
					Reason:    NoEligibleCandidate,
				})
				continue
			}

			chosen := ranked[0].Person
			assignment := db.Assignment{
				ID:        uuid.New().String(),
				EventID:   event.ID,
				PersonID:  chosen.ID,
				SlotIndex: slot,
				Status:    db.StatusSuggested,
				CreatedAt: time.Now().UTC(),
			}

			if commit {
				if err := store.InsertAssignment(ctx, &assignment); err != nil {
					// Previously committed slots stay intact; a later run
					// resumes from current state
					return nil, fmt.Errorf("failed to insert assignment for event %s slot %d: %w", event.ID, slot, err)
				}
			}

			state.Register(chosen.ID, event.Date, dt, countsTowardQuota(event, cfg))
			if occupied[event.ID] == nil {
				occupied[event.ID] = make(map[int]bool)
			}
			occupied[event.ID][slot] = true

			result.Proposals = append(result.Proposals, Proposal{Event: event, Assignment: assignment})

			logger.Debug("Proposed assignment",
				zap.String("event_id", event.ID),
				zap.String("date", event.Date),
				zap.Int("slot", slot),
				zap.String("person_id", chosen.ID))
		}
	}

	logger.Info("Generation run complete",
		zap.Int("events_created", len(result.EventsCreated)),
		zap.Int("proposals", len(result.Proposals)),
		zap.Int("unfilled", len(result.Unfilled)),
		zap.Bool("commit", commit))

	if commit {
		recordAudit(ctx, store, logger, "generate", "schedule",
			fmt.Sprintf("%04d-%02d", year, month), "engine",
			nil, generateRunSnapshot(result))
	}

	return result, nil
}

// generateRunSnapshot is the audit shape for a generation run, including the
// unfilled-slot outcomes
func generateRunSnapshot(result *GenerateResult) map[string]any {
	unfilled := make([]map[string]any, 0, len(result.Unfilled))
	for _, u := range result.Unfilled {
		unfilled = append(unfilled, map[string]any{
			"event_id": u.Event.ID,
			"date":     u.Event.Date,
			"slot":     u.SlotIndex,
			"reason":   u.Reason,
		})
	}
	return map[string]any{
		"events_created": len(result.EventsCreated),
		"proposals":      len(result.Proposals),
		"unfilled":       unfilled,
	}
}
