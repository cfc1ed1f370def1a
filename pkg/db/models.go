package db

import "time"

// Event categories
const (
	CategoryRecurringPrimary   = "recurring_primary"
	CategoryRecurringSecondary = "recurring_secondary"
	CategoryAdhoc              = "adhoc"
)

// Assignment statuses
const (
	StatusSuggested = "suggested"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusSwapped   = "swapped"
)

// Time-of-day slots
const (
	SlotMorning = "morning"
	SlotEvening = "evening"
)

// Person represents a volunteer operator on the roster
type Person struct {
	ID           string
	Name         string
	Email        string
	Active       bool
	AdhocOptIn   bool
	MonthlyLimit *int // nil means the configured default applies
}

// AvailabilityRecord represents a declared availability rule for a person.
// Exactly one of Weekday or Date is set: Weekday for a recurring weekly
// pattern (0=Sunday..6=Saturday), Date for a specific-date override.
type AvailabilityRecord struct {
	ID        string
	PersonID  string
	Weekday   *int
	Date      *string // "2006-01-02"
	Slot      string
	Available bool
}

// Event represents a dated, timed occasion requiring one or more operators
type Event struct {
	ID            string
	Date          string // "2006-01-02"
	Time          string // "15:04"
	Category      string
	Label         string
	RequiredCount int
}

// Assignment represents a person's claim on one event slot
type Assignment struct {
	ID          string
	EventID     string
	PersonID    string
	SlotIndex   int
	Status      string
	Reason      string // decline reason, empty otherwise
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// IsActive reports whether the assignment currently occupies its slot
func (a Assignment) IsActive() bool {
	return a.Status == StatusSuggested || a.Status == StatusConfirmed
}

// Slot derives the time-of-day slot from the event time: before noon is
// morning, noon onward is evening
func (e Event) Slot() string {
	t, err := time.Parse("15:04", e.Time)
	if err != nil || t.Hour() >= 12 {
		return SlotEvening
	}
	return SlotMorning
}

// DateTime combines the event's date and time into a single UTC instant
func (e Event) DateTime() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", e.Date+" "+e.Time)
}

// ConfirmedPair joins a confirmed assignment to its event and person, the
// shape the notification sink consumes
type ConfirmedPair struct {
	Event  Event
	Person Person
}

// AuditEntry represents an immutable audit record for a lifecycle transition
// or a generation run
type AuditEntry struct {
	ID        string
	Action    string
	Table     string
	RecordID  string
	Before    string // JSON snapshot, empty when not applicable
	After     string
	Actor     string
	CreatedAt time.Time
}
