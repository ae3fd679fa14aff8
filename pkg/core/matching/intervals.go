package matching

import (
	"sort"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

// Day window bounds in minutes from midnight. The window end matches the
// calendar provider's convention of 23:59 rather than a full 24h day.
const (
	DayWindowStart = 0
	DayWindowEnd   = 23*60 + 59
)

// ConversionResult holds the free slots derived for one day plus any busy
// intervals that were rejected during conversion.
type ConversionResult struct {
	FreeSlots []model.TimeSlot
	Rejected  []error
}

// FreeSlotsForDay inverts a day's busy intervals into the free slots that
// remain within the day window. Busy intervals are sorted and merged first so
// overlapping or touching entries produce a single occupied span; each gap
// between spans becomes a free slot. An all-day entry occupies the whole
// window. Malformed intervals are rejected individually and reported without
// aborting the rest of the day; zero-length intervals are ignored.
func FreeSlotsForDay(day string, busy []model.BusyInterval) ConversionResult {
	result := ConversionResult{}

	occupied := make([]model.BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.AllDay {
			// Whole window is occupied; no free time remains.
			return result
		}
		if err := validateInterval(b); err != nil {
			result.Rejected = append(result.Rejected, err)
			continue
		}
		if b.Start == b.End {
			continue
		}
		occupied = append(occupied, b)
	}

	if len(occupied) == 0 {
		result.FreeSlots = []model.TimeSlot{{Day: day, Start: DayWindowStart, End: DayWindowEnd}}
		return result
	}

	sort.Slice(occupied, func(i, j int) bool {
		return occupied[i].Start < occupied[j].Start
	})

	// Sweep left to right, emitting a free slot for each gap between merged
	// occupied spans.
	cursor := DayWindowStart
	for _, b := range occupied {
		if b.Start > cursor {
			result.FreeSlots = append(result.FreeSlots, model.TimeSlot{Day: day, Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < DayWindowEnd {
		result.FreeSlots = append(result.FreeSlots, model.TimeSlot{Day: day, Start: cursor, End: DayWindowEnd})
	}

	return result
}

// FreeSlotsByDay converts a full busy calendar (keyed by day) into the
// corresponding free-slot availability map. Days whose busy entries leave no
// free time are omitted from the output. Rejected intervals across all days
// are returned alongside the availability.
func FreeSlotsByDay(busyByDay map[string][]model.BusyInterval) (map[string][]model.TimeSlot, []error) {
	availability := make(map[string][]model.TimeSlot, len(busyByDay))
	var rejected []error

	for day, busy := range busyByDay {
		dayResult := FreeSlotsForDay(day, busy)
		rejected = append(rejected, dayResult.Rejected...)
		if len(dayResult.FreeSlots) > 0 {
			availability[day] = dayResult.FreeSlots
		}
	}

	return availability, rejected
}

func validateInterval(b model.BusyInterval) error {
	if b.Start < DayWindowStart || b.End > DayWindowEnd {
		return &ValidationError{
			Field:  "busy interval",
			Value:  b.Day,
			Reason: "time out of day range",
		}
	}
	if b.Start > b.End {
		return &ValidationError{
			Field:  "busy interval",
			Value:  b.Day,
			Reason: "start after end",
		}
	}
	return nil
}
