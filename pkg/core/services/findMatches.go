package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/friendzone/internal/metrics"
	"github.com/jakechorley/friendzone/pkg/core/matching"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// FindMatchesOptions configures a match run.
type FindMatchesOptions struct {
	RequesterID string
	Weights     model.WeightSet
	HorizonDays int
	// OverlapCapHours tunes the schedule score saturation point; zero uses
	// the engine default.
	OverlapCapHours float64
	// MaxConcurrentFetches bounds the calendar fan-out; zero means no bound.
	MaxConcurrentFetches int
	// FetchTimeout is the per-person calendar deadline. A fetch that misses
	// it fails that candidate instead of stalling the whole run.
	FetchTimeout time.Duration
}

// FindMatchesResult is the outcome of a match run.
type FindMatchesResult struct {
	RunID    string
	Results  []model.MatchResult
	Failures []model.CandidateFailure
}

// FindMatches resolves the requester and candidate pool, materializes
// everyone's availability concurrently, and ranks the pool with the weighted
// multi-factor score. Per-candidate failures (bad data, broken calendar
// fetch) exclude that candidate and are reported in the result; a missing
// requester aborts the whole run.
func FindMatches(ctx context.Context, people db.PersonStore, source AvailabilitySource, logger *zap.Logger, opts FindMatchesOptions) (*FindMatchesResult, error) {
	runID := uuid.New().String()
	started := time.Now()

	logger.Info("Finding matches",
		zap.String("run_id", runID),
		zap.String("requester_id", opts.RequesterID),
		zap.Float64("weight_interest", opts.Weights.Interest),
		zap.Float64("weight_schedule", opts.Weights.Schedule),
		zap.Float64("weight_personality", opts.Weights.Personality))

	records, err := people.GetPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	requesterRecord := findPerson(records, opts.RequesterID)
	if requesterRecord == nil {
		return nil, &matching.NotFoundError{ID: opts.RequesterID}
	}

	metrics.PoolSize.Set(float64(len(records) - 1))

	from := time.Now()
	to := from.AddDate(0, 0, horizonOrDefault(opts.HorizonDays))

	materialized, fetchFailures := materializeAvailability(ctx, source, logger, records, from, to, opts)

	requester, ok := materialized[opts.RequesterID]
	if !ok {
		// The requester's own calendar failing is fatal: there is no
		// schedule to rank anyone against.
		for _, failure := range fetchFailures {
			if failure.CandidateID == opts.RequesterID {
				return nil, fmt.Errorf("failed to materialize requester availability: %w", failure.Err)
			}
		}
		return nil, &matching.NotFoundError{ID: opts.RequesterID}
	}

	pool := make([]model.Person, 0, len(materialized))
	for _, record := range records {
		if record.ID == opts.RequesterID {
			continue
		}
		if person, ok := materialized[record.ID]; ok {
			pool = append(pool, person)
		}
	}

	aggregator := matching.NewAggregator(matching.NewOverlapEngine(opts.OverlapCapHours))
	ranked, err := aggregator.Rank(ctx, requester, pool, opts.Weights)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	result := &FindMatchesResult{
		RunID:    runID,
		Results:  ranked.Results,
		Failures: append(fetchFailures, ranked.Failures...),
	}

	metrics.CandidatesScored.Add(float64(len(pool)))
	for _, failure := range ranked.Failures {
		metrics.CandidatesFailed.WithLabelValues(failureReason(failure.Err)).Inc()
	}
	metrics.RankingDuration.Observe(time.Since(started).Seconds())

	logger.Info("Match run complete",
		zap.String("run_id", runID),
		zap.Int("ranked", len(result.Results)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("elapsed", time.Since(started)))

	return result, nil
}

// materializeAvailability fans out calendar fetches across the pool with
// bounded concurrency and converts each busy calendar to free slots. Every
// task's outcome is captured explicitly: a failed fetch produces a tagged
// failure for that person, never a silent empty calendar.
func materializeAvailability(ctx context.Context, source AvailabilitySource, logger *zap.Logger, records []db.Person, from, to time.Time, opts FindMatchesOptions) (map[string]model.Person, []model.CandidateFailure) {
	type outcome struct {
		person  model.Person
		failure *model.CandidateFailure
	}

	outcomes := make([]outcome, len(records))

	g, gCtx := errgroup.WithContext(ctx)
	if opts.MaxConcurrentFetches > 0 {
		g.SetLimit(opts.MaxConcurrentFetches)
	}

	for i, record := range records {
		g.Go(func() error {
			fetchCtx := gCtx
			if opts.FetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gCtx, opts.FetchTimeout)
				defer cancel()
			}

			busyByDay, err := source.BusyCalendar(fetchCtx, record, from, to)
			switch {
			case errors.Is(err, ErrNoCalendar):
				// Without a connected calendar, recurring entries are the
				// only schedule signal. Absent those too, the person ranks
				// on interests and personality alone.
				if len(busyByDay) == 0 {
					busyByDay = nil
				} else {
					busyByDay = fillHorizonDays(busyByDay, from, to)
				}
			case err != nil:
				metrics.CandidatesFailed.WithLabelValues("fetch").Inc()
				outcomes[i] = outcome{failure: &model.CandidateFailure{
					CandidateID: record.ID,
					Err:         &matching.ComputationError{CandidateID: record.ID, Err: err},
				}}
				return nil
			default:
				// Horizon days without any busy entry are fully free.
				busyByDay = fillHorizonDays(busyByDay, from, to)
			}

			availability, rejected := matching.FreeSlotsByDay(busyByDay)
			for _, rejErr := range rejected {
				logger.Warn("Skipping malformed busy interval",
					zap.String("person_id", record.ID),
					zap.Error(rejErr))
			}

			outcomes[i] = outcome{person: model.Person{
				ID:              record.ID,
				Name:            record.Name,
				Interests:       record.Interests,
				PersonalityCode: record.PersonalityCode,
				Availability:    availability,
			}}
			return nil
		})
	}
	g.Wait()

	materialized := make(map[string]model.Person, len(records))
	var failures []model.CandidateFailure
	for _, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		materialized[o.person.ID] = o.person
	}

	return materialized, failures
}

func findPerson(records []db.Person, id string) *db.Person {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// fillHorizonDays adds an empty busy list for every horizon day missing from
// the map, so event-free days invert to a fully free day.
func fillHorizonDays(busyByDay map[string][]model.BusyInterval, from, to time.Time) map[string][]model.BusyInterval {
	if busyByDay == nil {
		busyByDay = make(map[string][]model.BusyInterval)
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		if _, ok := busyByDay[day]; !ok {
			busyByDay[day] = nil
		}
	}
	return busyByDay
}

func horizonOrDefault(days int) int {
	if days <= 0 {
		return 14
	}
	return days
}

func failureReason(err error) string {
	var vErr *matching.ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "computation"
}
