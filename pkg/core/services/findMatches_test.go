package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/friendzone/pkg/core/matching"
	"github.com/jakechorley/friendzone/pkg/core/model"
	"github.com/jakechorley/friendzone/pkg/db"
)

// mockPeople implements a test double for db.PersonStore
type mockPeople struct {
	people       []db.Person
	inserted     []*db.Person
	getPeopleErr error
}

func (m *mockPeople) GetPeople(ctx context.Context) ([]db.Person, error) {
	if m.getPeopleErr != nil {
		return nil, m.getPeopleErr
	}
	return m.people, nil
}

func (m *mockPeople) GetPerson(ctx context.Context, id string) (*db.Person, error) {
	for i := range m.people {
		if m.people[i].ID == id {
			return &m.people[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockPeople) InsertPerson(ctx context.Context, person *db.Person) error {
	m.inserted = append(m.inserted, person)
	return nil
}

func (m *mockPeople) AddRecurringBusy(ctx context.Context, entry *db.RecurringBusyEntry) error {
	for i := range m.people {
		if m.people[i].ID == entry.PersonID {
			m.people[i].RecurringBusy = append(m.people[i].RecurringBusy, *entry)
			return nil
		}
	}
	return db.ErrNotFound
}

// mockSource implements a test double for AvailabilitySource. People absent
// from both maps behave as if they never connected a calendar.
type mockSource struct {
	busy map[string]map[string][]model.BusyInterval
	errs map[string]error
}

func (m *mockSource) BusyCalendar(ctx context.Context, person db.Person, from, to time.Time) (map[string][]model.BusyInterval, error) {
	if err, ok := m.errs[person.ID]; ok {
		return m.busy[person.ID], err
	}
	if busy, ok := m.busy[person.ID]; ok {
		return busy, nil
	}
	return nil, ErrNoCalendar
}

func testPeople() []db.Person {
	return []db.Person{
		{ID: "user-1", Name: "Jordan", Interests: []string{"coding", "music"}, PersonalityCode: "INFJ"},
		{ID: "user-2", Name: "Alex", Interests: []string{"coding", "gaming"}, PersonalityCode: "ENFP"},
		{ID: "user-3", Name: "Sam", Interests: []string{"music", "art"}, PersonalityCode: "INTJ"},
	}
}

func TestFindMatches_RanksPool(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	source := &mockSource{}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
		Weights:     model.WeightSet{Interest: 0.4, Schedule: 0.3, Personality: 0.3},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Failures)

	// No calendars connected, so only interests and personality score.
	// Alex: 0.4*50 + 0.3*100 = 50. Sam: 0.4*50 + 0.3*75 = 42.5 -> 43.
	require.Len(t, result.Results, 2)
	assert.Equal(t, "user-2", result.Results[0].CandidateID)
	assert.Equal(t, 50, result.Results[0].FinalScore)
	assert.Equal(t, 0, result.Results[0].Scores.Schedule)
	assert.Equal(t, "user-3", result.Results[1].CandidateID)
	assert.Equal(t, 43, result.Results[1].FinalScore)
}

func TestFindMatches_ConnectedCalendarsSaturateSchedule(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	// Both calendars fetch successfully with no events, leaving every
	// horizon day fully free. Two weeks of shared free time is far past
	// the overlap cap.
	source := &mockSource{busy: map[string]map[string][]model.BusyInterval{
		"user-1": {},
		"user-2": {},
	}}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
		Weights:     model.WeightSet{Interest: 0.4, Schedule: 0.3, Personality: 0.3},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Results)
	assert.Equal(t, "user-2", result.Results[0].CandidateID)
	assert.Equal(t, 100, result.Results[0].Scores.Schedule)
	// 0.4*50 + 0.3*100 + 0.3*100 = 80
	assert.Equal(t, 80, result.Results[0].FinalScore)
}

func TestFindMatches_CandidateFetchFailureIsReported(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	source := &mockSource{errs: map[string]error{
		"user-2": errors.New("calendar api unavailable"),
	}}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
	})
	require.NoError(t, err)

	// Sam still ranks; Alex is excluded with a tagged failure.
	require.Len(t, result.Results, 1)
	assert.Equal(t, "user-3", result.Results[0].CandidateID)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "user-2", result.Failures[0].CandidateID)
	var compErr *matching.ComputationError
	assert.ErrorAs(t, result.Failures[0].Err, &compErr)
}

func TestFindMatches_RequesterFetchFailureIsFatal(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	source := &mockSource{errs: map[string]error{
		"user-1": errors.New("calendar api unavailable"),
	}}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
	})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestFindMatches_RequesterNotFound(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	source := &mockSource{}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-99",
	})
	assert.Nil(t, result)

	var nfErr *matching.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "user-99", nfErr.ID)
}

func TestFindMatches_DefaultWeightsWhenUnset(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	source := &mockSource{}
	logger := zap.NewNop()

	// Zero-value weights normalize to the 0.4/0.3/0.3 defaults inside the
	// aggregator, so results match the explicit-default run.
	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, 50, result.Results[0].FinalScore)
}

func TestFindMatches_RecurringBusyWithoutCalendar(t *testing.T) {
	people := &mockPeople{people: testPeople()}
	// user-2 has no connected calendar but declared recurring commitments,
	// which still count as a schedule signal.
	day := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	source := &mockSource{
		busy: map[string]map[string][]model.BusyInterval{
			"user-1": {},
			"user-2": {day: {{Day: day, Start: 540, End: 600}}},
		},
		errs: map[string]error{
			"user-2": ErrNoCalendar,
		},
	}
	logger := zap.NewNop()

	result, err := FindMatches(context.Background(), people, source, logger, FindMatchesOptions{
		RequesterID: "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	// The recurring entries alone fill the horizon, so the shared free
	// time saturates the schedule score.
	assert.Equal(t, "user-2", result.Results[0].CandidateID)
	assert.Equal(t, 100, result.Results[0].Scores.Schedule)
}
