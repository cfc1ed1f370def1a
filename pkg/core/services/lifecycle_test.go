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

// lifecycleFixture seeds one Sunday morning event with a suggested
// assignment for p1 and returns the store
func lifecycleFixture() *mockStore {
	return &mockStore{
		people:       activePeople("p1", "p2", "p3"),
		availability: sundayAvailable("p1", "p2", "p3"),
		events: []db.Event{
			{ID: "e1", Date: "2025-02-02", Time: "09:00", Category: db.CategoryRecurringPrimary, RequiredCount: 1},
			{ID: "e2", Date: "2025-02-09", Time: "09:00", Category: db.CategoryRecurringPrimary, RequiredCount: 1},
		},
		assignments: []db.Assignment{
			{ID: "a1", EventID: "e1", PersonID: "p1", SlotIndex: 0, Status: db.StatusSuggested, CreatedAt: time.Now().UTC()},
		},
	}
}

func TestConfirm(t *testing.T) {
	store := lifecycleFixture()

	confirmed, err := Confirm(context.Background(), store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	assert.Equal(t, db.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	stored, err := store.GetAssignment(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, stored.Status)

	require.Len(t, store.auditEntries, 1)
	assert.Equal(t, "confirm", store.auditEntries[0].Action)
	assert.Equal(t, "coordinator", store.auditEntries[0].Actor)
	assert.Contains(t, store.auditEntries[0].Before, db.StatusSuggested)
	assert.Contains(t, store.auditEntries[0].After, db.StatusConfirmed)
}

func TestConfirm_InvalidFromConfirmed(t *testing.T) {
	store := lifecycleFixture()

	_, err := Confirm(context.Background(), store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	_, err = Confirm(context.Background(), store, zap.NewNop(), "a1", "coordinator")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirm_NotFound(t *testing.T) {
	store := lifecycleFixture()

	_, err := Confirm(context.Background(), store, zap.NewNop(), "missing", "coordinator")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecline_FromSuggestedAndConfirmed(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()

	declined, err := Decline(ctx, store, zap.NewNop(), "a1", "on holiday", "p1")
	require.NoError(t, err)
	assert.Equal(t, db.StatusDeclined, declined.Status)
	assert.Equal(t, "on holiday", declined.Reason)

	// The slot is vacated
	assert.Empty(t, store.activeFor("e1", 0))

	// Confirmed assignments can be declined too
	store = lifecycleFixture()
	_, err = Confirm(ctx, store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)
	_, err = Decline(ctx, store, zap.NewNop(), "a1", "sick", "coordinator")
	require.NoError(t, err)
	assert.Empty(t, store.activeFor("e1", 0))
}

func TestDecline_InvalidFromTerminal(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()

	_, err := Decline(ctx, store, zap.NewNop(), "a1", "x", "p1")
	require.NoError(t, err)

	_, err = Decline(ctx, store, zap.NewNop(), "a1", "x", "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSwap(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()
	cfg := testConfig()

	_, err := Confirm(ctx, store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	replacement, err := Swap(ctx, store, cfg, zap.NewNop(), "a1", "p2", false, "coordinator")
	require.NoError(t, err)

	assert.Equal(t, "p2", replacement.PersonID)
	assert.Equal(t, "e1", replacement.EventID)
	assert.Equal(t, 0, replacement.SlotIndex)
	assert.Equal(t, db.StatusSuggested, replacement.Status)

	// Exactly the new person is active on the slot; the old assignment is
	// swapped
	active := store.activeFor("e1", 0)
	require.Len(t, active, 1)
	assert.Equal(t, "p2", active[0].PersonID)

	old, err := store.GetAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, db.StatusSwapped, old.Status)
}

func TestSwap_RequiresConfirmed(t *testing.T) {
	store := lifecycleFixture()

	_, err := Swap(context.Background(), store, testConfig(), zap.NewNop(), "a1", "p2", false, "coordinator")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSwap_IneligibleNewPerson(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()
	cfg := testConfig()

	_, err := Confirm(ctx, store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	// p4 has no availability declared at all
	store.people = append(store.people, db.Person{ID: "p4", Name: "Person p4", Active: true})

	_, err = Swap(ctx, store, cfg, zap.NewNop(), "a1", "p4", false, "coordinator")
	assert.ErrorIs(t, err, ErrIneligible)

	// With the override flag the swap goes through and is audited
	replacement, err := Swap(ctx, store, cfg, zap.NewNop(), "a1", "p4", true, "coordinator")
	require.NoError(t, err)
	assert.Equal(t, "p4", replacement.PersonID)

	var found bool
	for _, e := range store.auditEntries {
		if e.Action == "swap" {
			assert.Contains(t, e.After, `"override":true`)
			found = true
		}
	}
	assert.True(t, found)
}

func TestSwap_QuotaExceeded(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()
	cfg := testConfig()

	// p2 is already at the default limit of 2 via other events in the month
	store.events = append(store.events,
		db.Event{ID: "e3", Date: "2025-02-16", Time: "09:00", Category: db.CategoryRecurringPrimary, RequiredCount: 1},
	)
	store.assignments = append(store.assignments,
		db.Assignment{ID: "a2", EventID: "e2", PersonID: "p2", SlotIndex: 0, Status: db.StatusConfirmed, CreatedAt: time.Now().UTC()},
		db.Assignment{ID: "a3", EventID: "e3", PersonID: "p2", SlotIndex: 0, Status: db.StatusSuggested, CreatedAt: time.Now().UTC()},
	)

	_, err := Confirm(ctx, store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	_, err = Swap(ctx, store, cfg, zap.NewNop(), "a1", "p2", false, "coordinator")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSwap_NewPersonNotFound(t *testing.T) {
	store := lifecycleFixture()
	ctx := context.Background()

	_, err := Confirm(ctx, store, zap.NewNop(), "a1", "coordinator")
	require.NoError(t, err)

	_, err = Swap(ctx, store, testConfig(), zap.NewNop(), "a1", "ghost", false, "coordinator")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertAssignment_SlotConflict(t *testing.T) {
	store := lifecycleFixture()

	err := store.InsertAssignment(context.Background(), &db.Assignment{
		ID: "dup", EventID: "e1", PersonID: "p2", SlotIndex: 0, Status: db.StatusSuggested,
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}
