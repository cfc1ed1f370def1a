package scheduler

import (
	"fmt"
	"time"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// Availability answers availability queries from a batch-loaded set of
// declared records. Resolution order per query: a specific-date record wins,
// else a recurring weekday pattern applies, else the person is unavailable.
// Absence of a declaration is never treated as a yes.
type Availability struct {
	specific  map[string]bool // personID|date|slot -> declared value
	recurring map[string]bool // personID|weekday|slot -> declared value
}

// NewAvailability indexes the given records for constant-time lookups.
// Records are independent: a person may hold any mix of recurring patterns
// and date overrides.
func NewAvailability(records []db.AvailabilityRecord) *Availability {
	a := &Availability{
		specific:  make(map[string]bool),
		recurring: make(map[string]bool),
	}
	for _, r := range records {
		switch {
		case r.Date != nil:
			a.specific[specificKey(r.PersonID, *r.Date, r.Slot)] = r.Available
		case r.Weekday != nil:
			a.recurring[recurringKey(r.PersonID, *r.Weekday, r.Slot)] = r.Available
		}
	}
	return a
}

// IsAvailable reports whether the person is available on the given date
// (in "2006-01-02" form) and slot
func (a *Availability) IsAvailable(personID, date, slot string) bool {
	if declared, ok := a.specific[specificKey(personID, date, slot)]; ok {
		return declared
	}

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	if declared, ok := a.recurring[recurringKey(personID, int(d.Weekday()), slot)]; ok {
		return declared
	}

	return false
}

func specificKey(personID, date, slot string) string {
	return fmt.Sprintf("%s|%s|%s", personID, date, slot)
}

func recurringKey(personID string, weekday int, slot string) string {
	return fmt.Sprintf("%s|%d|%s", personID, weekday, slot)
}
