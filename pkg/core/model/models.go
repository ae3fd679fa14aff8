package model

// Person represents a user eligible for matching. Availability is keyed by
// day (an ISO date or weekday label, treated as an opaque key) and holds the
// person's free slots for that day, sorted ascending and non-overlapping.
type Person struct {
	ID              string
	Name            string
	Interests       []string              // empty when none set
	PersonalityCode string                // 4-letter code, empty when not set
	Availability    map[string][]TimeSlot // day key -> free slots
}

// TimeSlot is a contiguous free interval within a single day, expressed in
// minutes from midnight. End is exclusive and always greater than Start.
type TimeSlot struct {
	Day   string
	Start int
	End   int
}

// DurationHours returns the slot length in hours.
func (s TimeSlot) DurationHours() float64 {
	return float64(s.End-s.Start) / 60.0
}

// BusyInterval is an occupied interval sourced from a calendar provider.
// AllDay entries occupy the entire day window regardless of Start/End.
type BusyInterval struct {
	Day    string
	Start  int
	End    int
	AllDay bool
}

// WeightSet holds the relative importance of each scoring component.
// After normalization the three weights sum to 1.0 within 1e-6.
type WeightSet struct {
	Interest    float64
	Schedule    float64
	Personality float64
}

// Sum returns the total of the three weights.
func (w WeightSet) Sum() float64 {
	return w.Interest + w.Schedule + w.Personality
}

// OverlapSlot is a shared free interval between two people on one day.
type OverlapSlot struct {
	Day      string
	Start    int
	End      int
	Duration float64 // hours
}

// PersonalityDetail explains how a personality score was produced.
// Tag is "special" for table pairs, "rule-based" for positional scoring,
// and "none" when either side has no code set.
type PersonalityDetail struct {
	Tag            string
	ConditionsMet  int
	SatisfiedRules []string
}

// MatchDetails carries the explainability payload attached to each result.
type MatchDetails struct {
	CommonInterests   []string
	OverlapSlots      []OverlapSlot
	TotalOverlapHours float64
	Personality       PersonalityDetail
}

// ComponentScores holds the three rounded component scores (0-100 each).
type ComponentScores struct {
	Interest    int
	Schedule    int
	Personality int
}

// MatchResult is one ranked candidate with its combined score and breakdown.
type MatchResult struct {
	CandidateID string
	Name        string
	FinalScore  int
	Scores      ComponentScores
	Details     MatchDetails
}

// CandidateFailure reports a candidate that could not be scored. Failed
// candidates are excluded from the ranked output but never dropped silently.
type CandidateFailure struct {
	CandidateID string
	Err         error
}
