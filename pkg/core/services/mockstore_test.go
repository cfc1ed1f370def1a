package services

import (
	"context"
	"strings"
	"time"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// mockStore is an in-memory db.Database used across the service tests
type mockStore struct {
	people       []db.Person
	availability []db.AvailabilityRecord
	events       []db.Event
	assignments  []db.Assignment
	lastActive   map[string]time.Time
	auditEntries []db.AuditEntry

	getPeopleErr        error
	getEventsErr        error
	insertEventsErr     error
	insertAssignmentErr error
	updateAssignmentErr error
}

func monthPrefix(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (m *mockStore) GetPeople(ctx context.Context) ([]db.Person, error) {
	if m.getPeopleErr != nil {
		return nil, m.getPeopleErr
	}
	return append([]db.Person(nil), m.people...), nil
}

func (m *mockStore) InsertPerson(ctx context.Context, person *db.Person) error {
	m.people = append(m.people, *person)
	return nil
}

func (m *mockStore) GetAvailability(ctx context.Context) ([]db.AvailabilityRecord, error) {
	return append([]db.AvailabilityRecord(nil), m.availability...), nil
}

func (m *mockStore) UpsertAvailability(ctx context.Context, record *db.AvailabilityRecord) error {
	m.availability = append(m.availability, *record)
	return nil
}

func (m *mockStore) GetMonthEvents(ctx context.Context, year int, month time.Month) ([]db.Event, error) {
	if m.getEventsErr != nil {
		return nil, m.getEventsErr
	}
	var out []db.Event
	for _, e := range m.events {
		if strings.HasPrefix(e.Date, monthPrefix(year, month)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) InsertEvents(ctx context.Context, events []db.Event) error {
	if m.insertEventsErr != nil {
		return m.insertEventsErr
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockStore) GetEvent(ctx context.Context, id string) (*db.Event, error) {
	for i := range m.events {
		if m.events[i].ID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) GetAssignment(ctx context.Context, id string) (*db.Assignment, error) {
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			a := m.assignments[i]
			return &a, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) GetMonthAssignments(ctx context.Context, year int, month time.Month) ([]db.Assignment, error) {
	prefix := monthPrefix(year, month)
	var out []db.Assignment
	for _, a := range m.assignments {
		if e := m.eventByID(a.EventID); e != nil && strings.HasPrefix(e.Date, prefix) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) GetEventAssignments(ctx context.Context, eventID string) ([]db.Assignment, error) {
	var out []db.Assignment
	for _, a := range m.assignments {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) GetConfirmedInRange(ctx context.Context, start, end string) ([]db.ConfirmedPair, error) {
	var out []db.ConfirmedPair
	for _, a := range m.assignments {
		if a.Status != db.StatusConfirmed {
			continue
		}
		e := m.eventByID(a.EventID)
		if e == nil || e.Date < start || e.Date > end {
			continue
		}
		out = append(out, db.ConfirmedPair{Event: *e, Person: m.personByID(a.PersonID)})
	}
	return out, nil
}

func (m *mockStore) LastActiveBefore(ctx context.Context, before time.Time, includeAdhoc bool) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(m.lastActive))
	for id, at := range m.lastActive {
		out[id] = at
	}
	return out, nil
}

func (m *mockStore) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	if m.insertAssignmentErr != nil {
		return m.insertAssignmentErr
	}
	for _, a := range m.assignments {
		if a.EventID == assignment.EventID && a.SlotIndex == assignment.SlotIndex && a.IsActive() {
			return db.ErrSlotConflict
		}
	}
	m.assignments = append(m.assignments, *assignment)
	return nil
}

func (m *mockStore) UpdateAssignmentStatus(ctx context.Context, assignment *db.Assignment) error {
	if m.updateAssignmentErr != nil {
		return m.updateAssignmentErr
	}
	for i := range m.assignments {
		if m.assignments[i].ID == assignment.ID {
			m.assignments[i] = *assignment
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) InsertAuditEntry(ctx context.Context, entry *db.AuditEntry) error {
	m.auditEntries = append(m.auditEntries, *entry)
	return nil
}

func (m *mockStore) eventByID(id string) *db.Event {
	for i := range m.events {
		if m.events[i].ID == id {
			return &m.events[i]
		}
	}
	return nil
}

func (m *mockStore) personByID(id string) db.Person {
	for _, p := range m.people {
		if p.ID == id {
			return p
		}
	}
	return db.Person{ID: id}
}

// activeFor returns the active assignments on an event slot
func (m *mockStore) activeFor(eventID string, slot int) []db.Assignment {
	var out []db.Assignment
	for _, a := range m.assignments {
		if a.EventID == eventID && a.SlotIndex == slot && a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:          "postgres://test",
		RecurrenceRule:       "FREQ=WEEKLY;BYDAY=SU",
		MorningTime:          "09:00",
		EveningTime:          "19:00",
		DefaultMonthlyLimit:  2,
		DefaultRequiredCount: 1,
		QuotaCountsAdhoc:     false,
		AdhocOptInRequired:   true,
	}
}

// sundayAvailable declares recurring Sunday availability for both slots
func sundayAvailable(personIDs ...string) []db.AvailabilityRecord {
	weekday := 0
	var out []db.AvailabilityRecord
	for _, id := range personIDs {
		wd := weekday
		out = append(out,
			db.AvailabilityRecord{ID: id + "-am", PersonID: id, Weekday: &wd, Slot: db.SlotMorning, Available: true},
			db.AvailabilityRecord{ID: id + "-pm", PersonID: id, Weekday: &wd, Slot: db.SlotEvening, Available: true},
		)
	}
	return out
}

func activePeople(ids ...string) []db.Person {
	var out []db.Person
	for _, id := range ids {
		out = append(out, db.Person{ID: id, Name: "Person " + id, Active: true})
	}
	return out
}
