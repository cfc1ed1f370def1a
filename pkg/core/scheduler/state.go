package scheduler

import "time"

// MonthState tracks the quota and rotation effects of assignments as a
// generation run walks the month's events in order. Picks made for earlier
// slots are registered here so later slots see them, which is what makes the
// run's output order-dependent and reproducible.
type MonthState struct {
	counts     map[string]int
	lastServed map[string]time.Time
	dayBooked  map[string]map[string]bool // date -> personID -> booked
}

// NewMonthState creates a state seeded with each person's most recent service
// instant from before the month (the rotation baseline). Counts start at zero
// and existing in-month assignments are added via Register.
func NewMonthState(lastServed map[string]time.Time) *MonthState {
	s := &MonthState{
		counts:     make(map[string]int),
		lastServed: make(map[string]time.Time),
		dayBooked:  make(map[string]map[string]bool),
	}
	for id, at := range lastServed {
		s.lastServed[id] = at
	}
	return s
}

// Register records an assignment of the person to an event at the given date
// and instant. The person is always blocked for the rest of that calendar
// day; the quota count and rotation mark only move when the assignment
// counts toward the quota (ad-hoc events may be configured not to).
func (s *MonthState) Register(personID, date string, at time.Time, countsTowardQuota bool) {
	if s.dayBooked[date] == nil {
		s.dayBooked[date] = make(map[string]bool)
	}
	s.dayBooked[date][personID] = true

	if !countsTowardQuota {
		return
	}

	s.counts[personID]++
	if prev, ok := s.lastServed[personID]; !ok || at.After(prev) {
		s.lastServed[personID] = at
	}
}

// Count returns the person's current in-month assignment count
func (s *MonthState) Count(personID string) int {
	return s.counts[personID]
}

// LastServed returns the person's rotation mark, if any
func (s *MonthState) LastServed(personID string) (time.Time, bool) {
	at, ok := s.lastServed[personID]
	return at, ok
}

// IsDayBooked reports whether the person already holds an assignment on the
// given calendar day
func (s *MonthState) IsDayBooked(personID, date string) bool {
	return s.dayBooked[date][personID]
}
