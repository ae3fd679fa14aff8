package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/friendzone/pkg/core/matching"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// CompareUsersOptions configures a single-pair comparison.
type CompareUsersOptions struct {
	RequesterID     string
	CandidateID     string
	Weights         model.WeightSet
	HorizonDays     int
	OverlapCapHours float64
}

// Comparison is the full breakdown for exactly two people.
type Comparison struct {
	Result model.MatchResult
	// Weights echoes the normalized weights the comparison used.
	Weights model.WeightSet
}

// CompareUsers scores exactly two people against each other and returns the
// full component breakdown. Either person missing from storage is fatal.
func CompareUsers(ctx context.Context, people db.PersonStore, source AvailabilitySource, logger *zap.Logger, opts CompareUsersOptions) (*Comparison, error) {
	logger.Info("Comparing users",
		zap.String("requester_id", opts.RequesterID),
		zap.String("candidate_id", opts.CandidateID))

	weights, err := matching.ResolveWeights(opts.Weights)
	if err != nil {
		return nil, err
	}

	requesterRecord, err := getPerson(ctx, people, opts.RequesterID)
	if err != nil {
		return nil, err
	}
	candidateRecord, err := getPerson(ctx, people, opts.CandidateID)
	if err != nil {
		return nil, err
	}

	from := time.Now()
	to := from.AddDate(0, 0, horizonOrDefault(opts.HorizonDays))

	requester, err := materializePerson(ctx, source, logger, *requesterRecord, from, to)
	if err != nil {
		return nil, err
	}
	candidate, err := materializePerson(ctx, source, logger, *candidateRecord, from, to)
	if err != nil {
		return nil, err
	}

	aggregator := matching.NewAggregator(matching.NewOverlapEngine(opts.OverlapCapHours))
	result, err := aggregator.Compare(requester, candidate, weights)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s with %s: %w", opts.RequesterID, opts.CandidateID, err)
	}

	// One decimal of overlap hours is plenty for display.
	result.Details.TotalOverlapHours = math.Round(result.Details.TotalOverlapHours*10) / 10

	logger.Info("Comparison complete",
		zap.String("requester_id", opts.RequesterID),
		zap.String("candidate_id", opts.CandidateID),
		zap.Int("final_score", result.FinalScore))

	return &Comparison{Result: *result, Weights: weights}, nil
}

// materializePerson converts one person's busy calendar into a scoring-ready
// Person. Unlike the pool fan-out, any fetch failure here is fatal: a
// comparison of two named people has no batch to continue with.
func materializePerson(ctx context.Context, source AvailabilitySource, logger *zap.Logger, record db.Person, from, to time.Time) (model.Person, error) {
	busyByDay, err := source.BusyCalendar(ctx, record, from, to)
	switch {
	case errors.Is(err, ErrNoCalendar):
		if len(busyByDay) == 0 {
			busyByDay = nil
		} else {
			busyByDay = fillHorizonDays(busyByDay, from, to)
		}
	case err != nil:
		return model.Person{}, fmt.Errorf("failed to materialize availability for %s: %w", record.ID, err)
	default:
		busyByDay = fillHorizonDays(busyByDay, from, to)
	}

	availability, rejected := matching.FreeSlotsByDay(busyByDay)
	for _, rejErr := range rejected {
		logger.Warn("Skipping malformed busy interval",
			zap.String("person_id", record.ID),
			zap.Error(rejErr))
	}

	return model.Person{
		ID:              record.ID,
		Name:            record.Name,
		Interests:       record.Interests,
		PersonalityCode: record.PersonalityCode,
		Availability:    availability,
	}, nil
}

func getPerson(ctx context.Context, people db.PersonStore, id string) (*db.Person, error) {
	person, err := people.GetPerson(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, &matching.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person %s: %w", id, err)
	}
	return person, nil
}
