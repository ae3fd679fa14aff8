package calendarclient

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

const dayKeyFormat = "2006-01-02"

// eventToBusyInterval maps one calendar event to a busy interval on the day
// the event starts. Date-only events become all-day busy entries. Events
// running past midnight are clamped to the end of their start day; the
// matching window is per-day, so the spill-over is ignored. Events without
// usable start/end data are skipped.
func eventToBusyInterval(event *calendar.Event) (model.BusyInterval, bool) {
	if event == nil || event.Start == nil || event.End == nil {
		return model.BusyInterval{}, false
	}

	// All-day events carry a date instead of a dateTime.
	if event.Start.DateTime == "" {
		if event.Start.Date == "" {
			return model.BusyInterval{}, false
		}
		return model.BusyInterval{Day: event.Start.Date, AllDay: true}, true
	}

	start, err := time.Parse(time.RFC3339, event.Start.DateTime)
	if err != nil {
		return model.BusyInterval{}, false
	}
	end, err := time.Parse(time.RFC3339, event.End.DateTime)
	if err != nil {
		return model.BusyInterval{}, false
	}

	day := start.Format(dayKeyFormat)
	startMinutes := start.Hour()*60 + start.Minute()

	endMinutes := end.Hour()*60 + end.Minute()
	if end.Format(dayKeyFormat) != day {
		endMinutes = 23*60 + 59
	}

	if endMinutes <= startMinutes {
		return model.BusyInterval{}, false
	}

	return model.BusyInterval{Day: day, Start: startMinutes, End: endMinutes}, true
}
