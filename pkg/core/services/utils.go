package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/core/calendar"
	"github.com/rotaplan/rotaplan/pkg/db"
)

// slotTimes returns the two recurring occurrences per calendar date, morning
// first so generation walks slots in time order
func slotTimes(cfg *config.Config) []calendar.SlotTime {
	return []calendar.SlotTime{
		{Time: cfg.MorningTime, Category: db.CategoryRecurringPrimary},
		{Time: cfg.EveningTime, Category: db.CategoryRecurringSecondary},
	}
}

// countsTowardQuota reports whether an assignment on the event moves the
// person's quota count and rotation mark
func countsTowardQuota(event db.Event, cfg *config.Config) bool {
	if event.Category == db.CategoryAdhoc {
		return cfg.QuotaCountsAdhoc
	}
	return true
}

// parseDate parses a "2006-01-02" date string
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// sortEvents orders events by date then time ascending. Stores return rows
// ordered already; this guards the walk order the engine depends on.
func sortEvents(events []db.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}
