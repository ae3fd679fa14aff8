package matching

import "math"

// InterestMatch is the outcome of scoring shared interests.
type InterestMatch struct {
	Score           int
	CommonInterests []string
}

// ScoreInterests measures what fraction of the requester's stated interests
// the candidate shares, as a 0-100 score. This is deliberately asymmetric:
// the score answers "how much of what I care about do they share", not a
// mutual similarity — swapping arguments changes the result by contract.
// A requester with no interests scores 0.
func ScoreInterests(requester, candidate []string) InterestMatch {
	match := InterestMatch{CommonInterests: []string{}}
	if len(requester) == 0 {
		return match
	}

	candidateSet := make(map[string]struct{}, len(candidate))
	for _, interest := range candidate {
		candidateSet[interest] = struct{}{}
	}

	for _, interest := range requester {
		if _, ok := candidateSet[interest]; ok {
			match.CommonInterests = append(match.CommonInterests, interest)
		}
	}

	match.Score = int(math.Round(float64(len(match.CommonInterests)) / float64(len(requester)) * 100))
	return match
}
