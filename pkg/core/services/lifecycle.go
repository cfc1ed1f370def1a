package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/core/scheduler"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// LifecycleStore defines the database operations needed for assignment
// lifecycle transitions
type LifecycleStore interface {
	GetAssignment(ctx context.Context, id string) (*db.Assignment, error)
	GetEvent(ctx context.Context, id string) (*db.Event, error)
	UpdateAssignmentStatus(ctx context.Context, assignment *db.Assignment) error
	InsertAssignment(ctx context.Context, assignment *db.Assignment) error
	InsertAuditEntry(ctx context.Context, entry *db.AuditEntry) error
}

// SwapStore adds the month context queries the swap eligibility check needs
type SwapStore interface {
	LifecycleStore
	GetPeople(ctx context.Context) ([]db.Person, error)
	GetAvailability(ctx context.Context) ([]db.AvailabilityRecord, error)
	GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]db.Assignment, error)
}

// Confirm locks in a suggested assignment. Only suggested assignments can be
// confirmed.
func Confirm(ctx context.Context, store LifecycleStore, logger *zap.Logger, assignmentID, actor string) (*db.Assignment, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	if assignment.Status != db.StatusSuggested {
		return nil, fmt.Errorf("%w: cannot confirm from %q", ErrInvalidTransition, assignment.Status)
	}

	before := snapshotAssignment(assignment)
	now := time.Now().UTC()
	assignment.Status = db.StatusConfirmed
	assignment.ConfirmedAt = &now

	if err := store.UpdateAssignmentStatus(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %s: %w", assignmentID, err)
	}

	logger.Info("Assignment confirmed",
		zap.String("assignment_id", assignment.ID),
		zap.String("person_id", assignment.PersonID),
		zap.String("actor", actor))

	recordAudit(ctx, store, logger, "confirm", "assignment", assignment.ID, actor,
		before, snapshotAssignment(assignment))

	return assignment, nil
}

// Decline vacates an assignment's slot. Allowed from suggested or confirmed;
// the freed slot becomes eligible for a future generate run or a manual fill.
func Decline(ctx context.Context, store LifecycleStore, logger *zap.Logger, assignmentID, reason, actor string) (*db.Assignment, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	if !assignment.IsActive() {
		return nil, fmt.Errorf("%w: cannot decline from %q", ErrInvalidTransition, assignment.Status)
	}

	before := snapshotAssignment(assignment)
	assignment.Status = db.StatusDeclined
	assignment.Reason = reason

	if err := store.UpdateAssignmentStatus(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %s: %w", assignmentID, err)
	}

	logger.Info("Assignment declined",
		zap.String("assignment_id", assignment.ID),
		zap.String("person_id", assignment.PersonID),
		zap.String("reason", reason),
		zap.String("actor", actor))

	recordAudit(ctx, store, logger, "decline", "assignment", assignment.ID, actor,
		before, snapshotAssignment(assignment))

	return assignment, nil
}

// Swap replaces the person on a confirmed assignment. The outgoing assignment
// is marked swapped and a new suggested assignment for newPersonID takes over
// the same slot. Unless override is set, the new person must pass the same
// availability, quota and double-booking checks generation applies; an
// override is recorded in the audit trail, never applied silently.
func Swap(ctx context.Context, store SwapStore, cfg *config.Config, logger *zap.Logger, assignmentID, newPersonID string, override bool, actor string) (*db.Assignment, error) {
	assignment, err := store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	if assignment.Status != db.StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot swap from %q", ErrInvalidTransition, assignment.Status)
	}
	if assignment.PersonID == newPersonID {
		return nil, fmt.Errorf("%w: assignment already belongs to person %s", ErrInvalidTransition, newPersonID)
	}

	event, err := store.GetEvent(ctx, assignment.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", assignment.EventID, err)
	}

	if !override {
		if err := checkSwapEligibility(ctx, store, cfg, assignment, event, newPersonID); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("Swap eligibility checks overridden",
			zap.String("assignment_id", assignment.ID),
			zap.String("new_person_id", newPersonID),
			zap.String("actor", actor))
	}

	before := snapshotAssignment(assignment)
	assignment.Status = db.StatusSwapped

	if err := store.UpdateAssignmentStatus(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %s: %w", assignmentID, err)
	}

	replacement := &db.Assignment{
		ID:        uuid.New().String(),
		EventID:   assignment.EventID,
		PersonID:  newPersonID,
		SlotIndex: assignment.SlotIndex,
		Status:    db.StatusSuggested,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.InsertAssignment(ctx, replacement); err != nil {
		return nil, fmt.Errorf("failed to insert replacement assignment: %w", err)
	}

	logger.Info("Assignment swapped",
		zap.String("assignment_id", assignment.ID),
		zap.String("old_person_id", assignment.PersonID),
		zap.String("new_person_id", newPersonID),
		zap.Bool("override", override),
		zap.String("actor", actor))

	recordAudit(ctx, store, logger, "swap", "assignment", assignment.ID, actor,
		before, map[string]any{
			"old":         snapshotAssignment(assignment),
			"replacement": snapshotAssignment(replacement),
			"override":    override,
		})

	return replacement, nil
}

// checkSwapEligibility runs the incoming person through the same exclusion
// rules generation uses, against the event's month context with the outgoing
// assignment removed
func checkSwapEligibility(ctx context.Context, store SwapStore, cfg *config.Config, outgoing *db.Assignment, event *db.Event, newPersonID string) error {
	people, err := store.GetPeople(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch people: %w", err)
	}
	var newPerson *db.Person
	for i := range people {
		if people[i].ID == newPersonID {
			newPerson = &people[i]
			break
		}
	}
	if newPerson == nil {
		return fmt.Errorf("person %s: %w", newPersonID, ErrNotFound)
	}

	records, err := store.GetAvailability(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch availability: %w", err)
	}

	eventDate, err := parseDate(event.Date)
	if err != nil {
		return err
	}
	assignments, err := store.GetMonthAssignments(ctx, eventDate.Year(), eventDate.Month())
	if err != nil {
		return fmt.Errorf("failed to fetch month assignments: %w", err)
	}

	// The outgoing assignment is vacating; it must not count against the
	// incoming person or block the day
	state := scheduler.NewMonthState(nil)
	for _, a := range assignments {
		if !a.IsActive() || a.ID == outgoing.ID {
			continue
		}
		if a.EventID == event.ID {
			dt, derr := event.DateTime()
			if derr != nil {
				return fmt.Errorf("malformed event %s: %w", event.ID, derr)
			}
			state.Register(a.PersonID, event.Date, dt, countsTowardQuota(*event, cfg))
			continue
		}
		// Other events in the month only matter for counts and day blocks,
		// both keyed by their own dates
		other, gerr := store.GetEvent(ctx, a.EventID)
		if gerr != nil {
			return fmt.Errorf("failed to fetch event %s: %w", a.EventID, gerr)
		}
		dt, derr := other.DateTime()
		if derr != nil {
			return fmt.Errorf("malformed event %s: %w", other.ID, derr)
		}
		state.Register(a.PersonID, other.Date, dt, countsTowardQuota(*other, cfg))
	}

	reason, ok := scheduler.Evaluate(scheduler.RankInput{
		Event:              *event,
		Availability:       scheduler.NewAvailability(records),
		State:              state,
		DefaultLimit:       cfg.DefaultMonthlyLimit,
		AdhocOptInRequired: cfg.AdhocOptInRequired,
	}, *newPerson)
	if ok {
		return nil
	}

	if reason == scheduler.IneligibleAtLimit {
		return fmt.Errorf("%w: person %s", ErrQuotaExceeded, newPersonID)
	}
	return fmt.Errorf("%w: %s", ErrIneligible, reason)
}
