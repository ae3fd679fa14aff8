package calendarclient

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// ValidateRRule checks that a recurrence rule string parses. Rules are
// validated here before they are stored, so ExpandRecurringBusy never sees
// a malformed one through the normal write path.
func ValidateRRule(s string) error {
	if _, err := rrule.StrToRRule(s); err != nil {
		return fmt.Errorf("invalid recurrence rule %q: %w", s, err)
	}
	return nil
}

// ExpandRecurringBusy expands manually declared recurring commitments into
// per-day busy intervals across the [from, to] window. Each entry's RRULE
// picks the days; the entry's start/end minutes apply on every occurrence.
// An unparsable rule fails the whole expansion: stored rules are validated
// on write, so a bad one here is data corruption, not user input.
func ExpandRecurringBusy(entries []db.RecurringBusyEntry, from, to time.Time) (map[string][]model.BusyInterval, error) {
	busyByDay := make(map[string][]model.BusyInterval)

	for _, entry := range entries {
		rule, err := rrule.StrToRRule(entry.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule for recurring entry %s: %w", entry.ID, err)
		}

		// Anchor the rule at the window start so expansion stays bounded.
		rule.DTStart(truncateToDay(from))

		for _, occurrence := range rule.Between(truncateToDay(from), to, true) {
			day := occurrence.Format(dayKeyFormat)
			busyByDay[day] = append(busyByDay[day], model.BusyInterval{
				Day:   day,
				Start: entry.StartMinutes,
				End:   entry.EndMinutes,
			})
		}
	}

	return busyByDay, nil
}

// MergeBusyCalendars combines busy maps from multiple sources (provider
// events, recurring entries) into one per-day calendar.
func MergeBusyCalendars(calendars ...map[string][]model.BusyInterval) map[string][]model.BusyInterval {
	merged := make(map[string][]model.BusyInterval)
	for _, busyByDay := range calendars {
		for day, intervals := range busyByDay {
			merged[day] = append(merged[day], intervals...)
		}
	}
	return merged
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
