package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/pkg/db"
)

func TestGenerate_FourSundayScenario(t *testing.T) {
	// February 2025 has exactly four Sundays (2, 9, 16, 23). Six people, all
	// available every Sunday, default limit 2: the engine must commit
	// exactly 8 assignments (2 slots x 4 Sundays) with nobody above 2.
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	store := &mockStore{
		people:       activePeople(ids...),
		availability: sundayAvailable(ids...),
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	assert.Len(t, store.events, 8)
	assert.Len(t, result.EventsCreated, 8)
	assert.Len(t, result.Proposals, 8)
	assert.Empty(t, result.Unfilled)
	assert.Len(t, store.assignments, 8)

	counts := make(map[string]int)
	for _, a := range store.assignments {
		assert.Equal(t, db.StatusSuggested, a.Status)
		counts[a.PersonID]++
	}
	for id, n := range counts {
		assert.LessOrEqual(t, n, 2, "person %s exceeded the monthly limit", id)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	store := &mockStore{
		people:       activePeople(ids...),
		availability: sundayAvailable(ids...),
	}
	cfg := testConfig()

	first, err := Generate(context.Background(), store, cfg, zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)
	require.Len(t, first.Proposals, 8)

	second, err := Generate(context.Background(), store, cfg, zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	// Nothing new to create or fill
	assert.Empty(t, second.EventsCreated)
	assert.Empty(t, second.Proposals)
	assert.Len(t, store.events, 8)
	assert.Len(t, store.assignments, 8)
}

func TestGenerate_DryRunPersistsNothing(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	store := &mockStore{
		people:       activePeople(ids...),
		availability: sundayAvailable(ids...),
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, false)
	require.NoError(t, err)

	// The same selection runs, but no assignment or audit entry is written.
	// Events are structural and are still created.
	assert.Len(t, result.Proposals, 8)
	assert.Empty(t, store.assignments)
	assert.Empty(t, store.auditEntries)
	assert.Len(t, store.events, 8)
}

func TestGenerate_DeterministicAcrossRuns(t *testing.T) {
	ids := []string{"p3", "p1", "p2"}

	run := func() []string {
		store := &mockStore{
			people:       activePeople(ids...),
			availability: sundayAvailable(ids...),
		}
		result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, false)
		require.NoError(t, err)
		var picks []string
		for _, p := range result.Proposals {
			picks = append(picks, p.Assignment.PersonID)
		}
		return picks
	}

	assert.Equal(t, run(), run())
}

func TestGenerate_FillsOnlyVacatedSlots(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	store := &mockStore{
		people:       activePeople(ids...),
		availability: sundayAvailable(ids...),
	}
	cfg := testConfig()
	ctx := context.Background()

	_, err := Generate(ctx, store, cfg, zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	// Decline one assignment, then re-generate: only that slot is refilled
	victim := store.assignments[0]
	_, err = Decline(ctx, store, zap.NewNop(), victim.ID, "sick", "coordinator")
	require.NoError(t, err)

	result, err := Generate(ctx, store, cfg, zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)
	require.Len(t, result.Proposals, 1)
	assert.Equal(t, victim.EventID, result.Proposals[0].Assignment.EventID)
	assert.Equal(t, victim.SlotIndex, result.Proposals[0].Assignment.SlotIndex)
	assert.NotEqual(t, victim.ID, result.Proposals[0].Assignment.ID)

	// Exactly one active assignment on that slot afterwards
	assert.Len(t, store.activeFor(victim.EventID, victim.SlotIndex), 1)
}

func TestGenerate_AllAtLimitReportsUnfilled(t *testing.T) {
	// One person with a personal limit of 1 cannot cover eight slots: the
	// rest are reported unfilled, not failed
	limit := 1
	person := db.Person{ID: "p1", Name: "Person p1", Active: true, MonthlyLimit: &limit}
	store := &mockStore{
		people:       []db.Person{person},
		availability: sundayAvailable("p1"),
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	assert.Len(t, result.Proposals, 1)
	assert.Len(t, result.Unfilled, 7)
	for _, u := range result.Unfilled {
		assert.Equal(t, NoEligibleCandidate, u.Reason)
	}
	assert.Len(t, store.assignments, 1)
}

func TestGenerate_SpecificDateOverrideExcludes(t *testing.T) {
	// p1 is recurring-available on Sundays but has declared 2025-02-09
	// unavailable; p2 takes that date even though p1 would rank first
	date := "2025-02-09"
	availability := sundayAvailable("p1", "p2")
	availability = append(availability,
		db.AvailabilityRecord{ID: "ov-am", PersonID: "p1", Date: &date, Slot: db.SlotMorning, Available: false},
		db.AvailabilityRecord{ID: "ov-pm", PersonID: "p1", Date: &date, Slot: db.SlotEvening, Available: false},
	)
	store := &mockStore{
		people:       activePeople("p1", "p2"),
		availability: availability,
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	for _, p := range result.Proposals {
		if p.Event.Date == date {
			assert.Equal(t, "p2", p.Assignment.PersonID)
		}
	}
}

func TestGenerate_FairnessSpread(t *testing.T) {
	// With two people and a limit of 2, the four morning slots of the four
	// Sundays alternate instead of loading one person
	cfg := testConfig()
	cfg.DefaultMonthlyLimit = 4
	store := &mockStore{
		people:       activePeople("p1", "p2"),
		availability: sundayAvailable("p1", "p2"),
	}

	result, err := Generate(context.Background(), store, cfg, zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)
	require.Len(t, result.Proposals, 8)

	counts := make(map[string]int)
	for _, p := range result.Proposals {
		counts[p.Assignment.PersonID]++
	}
	assert.Equal(t, 4, counts["p1"])
	assert.Equal(t, 4, counts["p2"])
}

func TestGenerate_RotationBaseline(t *testing.T) {
	// p1 served recently before the month; p2 longer ago. The first open
	// slot goes to p2.
	store := &mockStore{
		people:       activePeople("p1", "p2"),
		availability: sundayAvailable("p1", "p2"),
		lastActive: map[string]time.Time{
			"p1": time.Date(2025, 1, 26, 9, 0, 0, 0, time.UTC),
			"p2": time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC),
		},
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, false)
	require.NoError(t, err)
	require.NotEmpty(t, result.Proposals)
	assert.Equal(t, "p2", result.Proposals[0].Assignment.PersonID)
}

func TestGenerate_MultiSlotEventDistinctPeople(t *testing.T) {
	// An ad-hoc event needing two operators never gets the same person in
	// both slots
	store := &mockStore{
		people: []db.Person{
			{ID: "p1", Name: "Person p1", Active: true, AdhocOptIn: true},
			{ID: "p2", Name: "Person p2", Active: true, AdhocOptIn: true},
		},
		availability: []db.AvailabilityRecord{
			{ID: "a1", PersonID: "p1", Date: strPtr("2025-02-05"), Slot: db.SlotEvening, Available: true},
			{ID: "a2", PersonID: "p2", Date: strPtr("2025-02-05"), Slot: db.SlotEvening, Available: true},
		},
		events: []db.Event{
			{ID: "e1", Date: "2025-02-05", Time: "19:00", Category: db.CategoryAdhoc, Label: "special", RequiredCount: 2},
		},
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	var onE1 []db.Assignment
	for _, p := range result.Proposals {
		if p.Event.ID == "e1" {
			onE1 = append(onE1, p.Assignment)
		}
	}
	require.Len(t, onE1, 2)
	assert.NotEqual(t, onE1[0].PersonID, onE1[1].PersonID)
}

func TestGenerate_AdhocOptInRespected(t *testing.T) {
	store := &mockStore{
		people: []db.Person{
			{ID: "p1", Name: "Person p1", Active: true, AdhocOptIn: false},
		},
		availability: []db.AvailabilityRecord{
			{ID: "a1", PersonID: "p1", Date: strPtr("2025-02-05"), Slot: db.SlotEvening, Available: true},
		},
		events: []db.Event{
			{ID: "e1", Date: "2025-02-05", Time: "19:00", Category: db.CategoryAdhoc, RequiredCount: 1},
		},
	}

	result, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	var unfilledOnE1 bool
	for _, u := range result.Unfilled {
		if u.Event.ID == "e1" {
			unfilledOnE1 = true
		}
	}
	assert.True(t, unfilledOnE1)
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	store := &mockStore{}

	_, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 1999, time.June, true)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.Month(0), true)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestGenerate_CommitWritesAuditEntry(t *testing.T) {
	store := &mockStore{
		people:       activePeople("p1"),
		availability: sundayAvailable("p1"),
	}

	_, err := Generate(context.Background(), store, testConfig(), zap.NewNop(), 2025, time.February, true)
	require.NoError(t, err)

	require.Len(t, store.auditEntries, 1)
	entry := store.auditEntries[0]
	assert.Equal(t, "generate", entry.Action)
	assert.Equal(t, "2025-02", entry.RecordID)
	assert.Contains(t, entry.After, "unfilled")
}

func strPtr(s string) *string { return &s }
