package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// AvailabilityResult is a person's materialized free time over the horizon.
type AvailabilityResult struct {
	PersonID  string
	From      time.Time
	To        time.Time
	Days      []DayAvailability
	TotalFree float64 // hours
}

// DayAvailability is the free time of a single day, in slot order.
type DayAvailability struct {
	Day   string
	Slots []model.TimeSlot
}

// SyncAvailability fetches a person's calendar over the configured horizon
// and returns their free slots per day. Days with no free time are omitted.
func SyncAvailability(ctx context.Context, people db.PersonStore, source AvailabilitySource, logger *zap.Logger, personID string, horizonDays int) (*AvailabilityResult, error) {
	record, err := getPerson(ctx, people, personID)
	if err != nil {
		return nil, err
	}

	from := time.Now()
	to := from.AddDate(0, 0, horizonOrDefault(horizonDays))

	logger.Info("Syncing availability",
		zap.String("person_id", personID),
		zap.Time("from", from),
		zap.Time("to", to))

	person, err := materializePerson(ctx, source, logger, *record, from, to)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{PersonID: personID, From: from, To: to}

	days := make([]string, 0, len(person.Availability))
	for day := range person.Availability {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		slots := person.Availability[day]
		result.Days = append(result.Days, DayAvailability{Day: day, Slots: slots})
		for _, slot := range slots {
			result.TotalFree += slot.DurationHours()
		}
	}

	logger.Info("Availability synced",
		zap.String("person_id", personID),
		zap.Int("days", len(result.Days)),
		zap.Float64("total_free_hours", result.TotalFree))

	return result, nil
}
