package scheduler

import (
	"sort"
	"time"

	"github.com/rotaplan/rotaplan/pkg/db"
)

// Ineligibility explains why a person was excluded from a slot's candidate set
type Ineligibility string

const (
	IneligibleInactive    Ineligibility = "person inactive"
	IneligibleOptedOut    Ineligibility = "not opted in for ad-hoc events"
	IneligibleUnavailable Ineligibility = "unavailable for date and slot"
	IneligibleAtLimit     Ineligibility = "monthly limit reached"
	IneligibleDayBooked   Ineligibility = "already assigned that day"
)

// RankInput carries everything the ranker needs to order candidates for one
// event. All fields are read-only during ranking.
type RankInput struct {
	Event              db.Event
	People             []db.Person
	Availability       *Availability
	State              *MonthState
	DefaultLimit       int
	AdhocOptInRequired bool
}

// Candidate is a person eligible for a slot, annotated with the fairness
// signals their rank was derived from
type Candidate struct {
	Person     db.Person
	MonthCount int
	LastServed *time.Time // nil when the person has never served
}

// Evaluate checks a single person against the slot's exclusion rules.
// Exclusions are hard: an excluded person is never merely ranked last.
func Evaluate(in RankInput, p db.Person) (Ineligibility, bool) {
	if !p.Active {
		return IneligibleInactive, false
	}
	if in.Event.Category == db.CategoryAdhoc && in.AdhocOptInRequired && !p.AdhocOptIn {
		return IneligibleOptedOut, false
	}
	if !in.Availability.IsAvailable(p.ID, in.Event.Date, in.Event.Slot()) {
		return IneligibleUnavailable, false
	}
	if in.State.IsDayBooked(p.ID, in.Event.Date) {
		return IneligibleDayBooked, false
	}
	if in.State.Count(p.ID) >= EffectiveLimit(p, in.DefaultLimit) {
		return IneligibleAtLimit, false
	}
	return "", true
}

// EffectiveLimit returns the person's monthly limit, falling back to the
// system default when no personal override is set
func EffectiveLimit(p db.Person, defaultLimit int) int {
	if p.MonthlyLimit != nil {
		return *p.MonthlyLimit
	}
	return defaultLimit
}

// RankCandidates filters the roster down to the eligible candidates for the
// event and orders them by rotation fairness: fewest in-month assignments
// first, then oldest rotation mark (never-served ahead of everyone), then
// person ID so identical inputs always produce identical output.
func RankCandidates(in RankInput) []Candidate {
	candidates := make([]Candidate, 0, len(in.People))
	for _, p := range in.People {
		if _, ok := Evaluate(in, p); !ok {
			continue
		}
		c := Candidate{Person: p, MonthCount: in.State.Count(p.ID)}
		if at, ok := in.State.LastServed(p.ID); ok {
			served := at
			c.LastServed = &served
		}
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MonthCount != b.MonthCount {
			return a.MonthCount < b.MonthCount
		}
		switch {
		case a.LastServed == nil && b.LastServed != nil:
			return true
		case a.LastServed != nil && b.LastServed == nil:
			return false
		case a.LastServed != nil && b.LastServed != nil:
			if !a.LastServed.Equal(*b.LastServed) {
				return a.LastServed.Before(*b.LastServed)
			}
		}
		return a.Person.ID < b.Person.ID
	})

	return candidates
}
