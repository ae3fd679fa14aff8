package matching

import (
	"strings"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

// Personality detail tags.
const (
	PersonalityTagSpecial   = "special"
	PersonalityTagRuleBased = "rule-based"
	PersonalityTagNone      = "none"
)

// specialPairs lists personality-code pairs granted an automatic 100 score.
// Pairs match in either order.
var specialPairs = [][2]string{
	{"INFJ", "ENFP"},
	{"INTJ", "ENTP"},
	{"INFP", "ENFJ"},
	{"INTP", "INFJ"},
	{"ISTJ", "ISFJ"},
	{"ESTP", "ESFP"},
	{"ISFJ", "ESFJ"},
}

// codeAlphabets holds the two valid letters for each code position.
var codeAlphabets = [4]string{"EI", "SN", "TF", "JP"}

// PersonalityMatch is the outcome of scoring two personality codes.
type PersonalityMatch struct {
	Score  int
	Detail model.PersonalityDetail
}

// ScorePersonalities scores compatibility between two 4-letter personality
// codes. Special pairs score 100 outright; otherwise four positional rules
// each contribute 25 points: attitudes (position 1) differ, deciding
// functions (position 3) differ, perceiving functions (position 2) match,
// and lifestyles (position 4) match. If either code is empty the pair scores
// 0 with tag "none"; a malformed code is a ValidationError.
func ScorePersonalities(code1, code2 string) (PersonalityMatch, error) {
	if code1 == "" || code2 == "" {
		return PersonalityMatch{
			Detail: model.PersonalityDetail{Tag: PersonalityTagNone, SatisfiedRules: []string{}},
		}, nil
	}

	code1 = strings.ToUpper(code1)
	code2 = strings.ToUpper(code2)

	if err := ValidatePersonalityCode(code1); err != nil {
		return PersonalityMatch{}, err
	}
	if err := ValidatePersonalityCode(code2); err != nil {
		return PersonalityMatch{}, err
	}

	if isSpecialPair(code1, code2) {
		return PersonalityMatch{
			Score: 100,
			Detail: model.PersonalityDetail{
				Tag:            PersonalityTagSpecial,
				ConditionsMet:  4,
				SatisfiedRules: []string{"special pair"},
			},
		}, nil
	}

	return scoreByRules(code1, code2), nil
}

// SpecialMatches returns every code that forms a special pair with the given
// code, in table order.
func SpecialMatches(code string) []string {
	code = strings.ToUpper(code)
	matches := []string{}
	for _, pair := range specialPairs {
		switch code {
		case pair[0]:
			matches = append(matches, pair[1])
		case pair[1]:
			matches = append(matches, pair[0])
		}
	}
	return matches
}

// ValidatePersonalityCode checks that a code is exactly four characters with
// each position drawn from its alphabet ({E,I}{S,N}{T,F}{J,P}).
func ValidatePersonalityCode(code string) error {
	if len(code) != 4 {
		return &ValidationError{Field: "personality code", Value: code, Reason: "must be 4 characters"}
	}
	upper := strings.ToUpper(code)
	for i, alphabet := range codeAlphabets {
		if !strings.ContainsRune(alphabet, rune(upper[i])) {
			return &ValidationError{
				Field:  "personality code",
				Value:  code,
				Reason: "position " + string(rune('1'+i)) + " must be one of " + alphabet,
			}
		}
	}
	return nil
}

func isSpecialPair(code1, code2 string) bool {
	for _, pair := range specialPairs {
		if (code1 == pair[0] && code2 == pair[1]) || (code1 == pair[1] && code2 == pair[0]) {
			return true
		}
	}
	return false
}

func scoreByRules(code1, code2 string) PersonalityMatch {
	match := PersonalityMatch{
		Detail: model.PersonalityDetail{Tag: PersonalityTagRuleBased, SatisfiedRules: []string{}},
	}

	rules := []struct {
		name      string
		satisfied bool
	}{
		{"1st letter differs (E/I)", code1[0] != code2[0]},
		{"3rd letter differs (T/F)", code1[2] != code2[2]},
		{"2nd letter matches (S/N)", code1[1] == code2[1]},
		{"4th letter matches (J/P)", code1[3] == code2[3]},
	}

	for _, rule := range rules {
		if rule.satisfied {
			match.Detail.ConditionsMet++
			match.Detail.SatisfiedRules = append(match.Detail.SatisfiedRules, rule.name)
		}
	}

	match.Score = match.Detail.ConditionsMet * 25
	return match
}
