package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Supported period bounds. Anything outside is rejected as invalid rather
// than silently producing an empty month.
const (
	MinYear = 2000
	MaxYear = 2100
)

// ErrInvalidPeriod is returned when a year/month pair is malformed or out of
// the supported range
var ErrInvalidPeriod = fmt.Errorf("invalid period: year must be %d-%d and month 1-12", MinYear, MaxYear)

// ValidatePeriod checks that the year/month pair is within the supported range
func ValidatePeriod(year int, month time.Month) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w (got year %d)", ErrInvalidPeriod, year)
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("%w (got month %d)", ErrInvalidPeriod, month)
	}
	return nil
}

// MonthDates expands the recurrence rule across the given month and returns
// the matching dates in ascending order
func MonthDates(recurrenceRule string, year int, month time.Month) ([]time.Time, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	rule, err := rrule.StrToRRule(recurrenceRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recurrence rule: %w", err)
	}

	// Anchor the rule at the first instant of the month and collect
	// occurrences up to the last
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).Add(-time.Second)
	rule.DTStart(first)

	return rule.Between(first, last, true), nil
}

// EventKey identifies an event occurrence by its date and time strings
type EventKey struct {
	Date string // "2006-01-02"
	Time string // "15:04"
}

// Occurrence is a recurring event occurrence the calendar wants to exist
type Occurrence struct {
	Date     string
	Time     string
	Category string
}

// MissingOccurrences computes which (date, time) occurrences are absent from
// the existing set. Each date carries one occurrence per slot time, in slot
// order. The computation is pure so repeated runs over the same inputs agree.
func MissingOccurrences(dates []time.Time, slotTimes []SlotTime, existing map[EventKey]bool) []Occurrence {
	var missing []Occurrence
	for _, d := range dates {
		dateStr := d.Format("2006-01-02")
		for _, st := range slotTimes {
			key := EventKey{Date: dateStr, Time: st.Time}
			if existing[key] {
				continue
			}
			missing = append(missing, Occurrence{
				Date:     dateStr,
				Time:     st.Time,
				Category: st.Category,
			})
		}
	}
	return missing
}

// SlotTime pairs a recurring slot time with the category its events carry
type SlotTime struct {
	Time     string
	Category string
}
