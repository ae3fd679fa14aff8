package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

// Aggregator combines the three component scorers into one ranked output.
type Aggregator struct {
	overlap *OverlapEngine
}

// NewAggregator creates an aggregator using the given overlap engine.
func NewAggregator(overlap *OverlapEngine) *Aggregator {
	return &Aggregator{overlap: overlap}
}

// RankedMatches is the outcome of ranking a candidate pool: the ordered
// results plus every candidate that failed to score. An empty Results list
// with no failures means no candidate cleared the nonzero-score filter,
// which is a valid outcome and not an error.
type RankedMatches struct {
	Results  []model.MatchResult
	Failures []model.CandidateFailure
}

// Rank scores every candidate against the requester and returns the
// descending ranked list. Candidates with a combined score of zero are
// filtered out; ties keep their input order. Scoring each candidate is a
// pure function of the two people involved, so candidates are scored
// concurrently. A candidate that fails validation or scoring is excluded
// and reported in Failures without aborting the rest of the pool.
func (a *Aggregator) Rank(ctx context.Context, requester model.Person, pool []model.Person, weights model.WeightSet) (*RankedMatches, error) {
	if requester.ID == "" {
		return nil, &NotFoundError{ID: requester.ID}
	}

	// A malformed requester code would otherwise surface as one failure
	// per candidate; it is the requester's fault, so fail the run once.
	if requester.PersonalityCode != "" {
		if err := ValidatePersonalityCode(requester.PersonalityCode); err != nil {
			return nil, err
		}
	}

	weights, err := ResolveWeights(weights)
	if err != nil {
		return nil, err
	}

	type slot struct {
		result *model.MatchResult
		err    error
	}

	candidates := make([]model.Person, 0, len(pool))
	for _, candidate := range pool {
		if candidate.ID == requester.ID {
			continue
		}
		candidates = append(candidates, candidate)
	}

	slots := make([]slot, len(candidates))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		g.Go(func() error {
			result, err := a.scoreCandidate(requester, candidate, weights)
			mu.Lock()
			slots[i] = slot{result: result, err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score candidates: %w", err)
	}

	ranked := &RankedMatches{
		Results:  []model.MatchResult{},
		Failures: []model.CandidateFailure{},
	}

	for i, s := range slots {
		if s.err != nil {
			ranked.Failures = append(ranked.Failures, model.CandidateFailure{
				CandidateID: candidates[i].ID,
				Err:         s.err,
			})
			continue
		}
		if s.result.FinalScore == 0 {
			continue
		}
		ranked.Results = append(ranked.Results, *s.result)
	}

	// Stable sort so equal scores keep their input order.
	sort.SliceStable(ranked.Results, func(i, j int) bool {
		return ranked.Results[i].FinalScore > ranked.Results[j].FinalScore
	})

	return ranked, nil
}

// Compare produces the full breakdown for exactly two people, the
// single-pair variant of Rank used for "compare these two" requests.
func (a *Aggregator) Compare(requester, candidate model.Person, weights model.WeightSet) (*model.MatchResult, error) {
	weights, err := ResolveWeights(weights)
	if err != nil {
		return nil, err
	}
	return a.scoreCandidate(requester, candidate, weights)
}

func (a *Aggregator) scoreCandidate(requester, candidate model.Person, weights model.WeightSet) (result *model.MatchResult, err error) {
	// Scoring is pure arithmetic, but a panic while scoring one candidate
	// must not take down the whole pool.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ComputationError{CandidateID: candidate.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	interest := ScoreInterests(requester.Interests, candidate.Interests)

	personality, err := ScorePersonalities(requester.PersonalityCode, candidate.PersonalityCode)
	if err != nil {
		return nil, err
	}

	schedule := a.overlap.Compare(requester.Availability, candidate.Availability)

	combined := float64(interest.Score)*weights.Interest +
		schedule.Score*weights.Schedule +
		float64(personality.Score)*weights.Personality

	return &model.MatchResult{
		CandidateID: candidate.ID,
		Name:        candidate.Name,
		FinalScore:  int(math.Round(combined)),
		Scores: model.ComponentScores{
			Interest:    interest.Score,
			Schedule:    int(math.Round(schedule.Score)),
			Personality: personality.Score,
		},
		Details: model.MatchDetails{
			CommonInterests:   interest.CommonInterests,
			OverlapSlots:      schedule.Slots,
			TotalOverlapHours: schedule.TotalOverlapHours,
			Personality:       personality.Detail,
		},
	}, nil
}
