package matching

import (
	"github.com/jakechorley/friendzone/pkg/core/model"
)

// DefaultWeights is the preset used when no weight spec is supplied.
var DefaultWeights = model.WeightSet{Interest: 0.4, Schedule: 0.3, Personality: 0.3}

// weightPresets maps preset names to fixed weight sets. Unknown names fall
// back to "balanced".
var weightPresets = map[string]model.WeightSet{
	"interest-first":    {Interest: 0.6, Schedule: 0.2, Personality: 0.2},
	"schedule-first":    {Interest: 0.2, Schedule: 0.6, Personality: 0.2},
	"personality-first": {Interest: 0.2, Schedule: 0.2, Personality: 0.6},
	"balanced":          {Interest: 0.33, Schedule: 0.33, Personality: 0.34},
}

// WeightSpec is a partial, caller-supplied weight specification. Nil fields
// are filled from DefaultWeights before normalization. Values may be decimals
// or percentages; the two are auto-detected by their sum.
type WeightSpec struct {
	Interest    *float64
	Schedule    *float64
	Personality *float64
}

// NormalizeWeights resolves a weight spec into a WeightSet summing to 1.0
// within 1e-6. Missing components take their default; if the filled values
// sum to more than 10 they are treated as percentages and divided by 100;
// the result is then rescaled by its sum, so already-normalized and
// near-normalized inputs keep their proportions. Negative inputs are
// rejected.
func NormalizeWeights(spec WeightSpec) (model.WeightSet, error) {
	weights := model.WeightSet{
		Interest:    valueOr(spec.Interest, DefaultWeights.Interest),
		Schedule:    valueOr(spec.Schedule, DefaultWeights.Schedule),
		Personality: valueOr(spec.Personality, DefaultWeights.Personality),
	}

	if weights.Interest < 0 || weights.Schedule < 0 || weights.Personality < 0 {
		return model.WeightSet{}, &ValidationError{
			Field:  "weights",
			Value:  "negative component",
			Reason: "weights must be non-negative",
		}
	}

	total := weights.Sum()
	if total == 0 {
		return model.WeightSet{}, &ValidationError{
			Field:  "weights",
			Value:  "zero total",
			Reason: "at least one weight must be positive",
		}
	}

	if total > 10 {
		// Percentages.
		weights.Interest /= 100
		weights.Schedule /= 100
		weights.Personality /= 100
		total = weights.Sum()
	}

	// Always rescale by the final sum so the output lands on exactly 1.0.
	// Sliders like 50/30/30 convert to 1.1 above; a hand-typed set summing
	// to 0.999 keeps its proportions but still gets nudged onto 1.
	weights.Interest /= total
	weights.Schedule /= total
	weights.Personality /= total

	return weights, nil
}

// ResolveWeights normalizes an already-assembled weight set for scoring.
// The zero value means the caller expressed no preference and resolves to
// DefaultWeights.
func ResolveWeights(w model.WeightSet) (model.WeightSet, error) {
	if w == (model.WeightSet{}) {
		return DefaultWeights, nil
	}
	return NormalizeWeights(WeightSpec{
		Interest:    &w.Interest,
		Schedule:    &w.Schedule,
		Personality: &w.Personality,
	})
}

// WeightsFromSliders builds a WeightSet from three 0-100 slider values.
func WeightsFromSliders(interest, schedule, personality float64) (model.WeightSet, error) {
	return NormalizeWeights(WeightSpec{
		Interest:    &interest,
		Schedule:    &schedule,
		Personality: &personality,
	})
}

// WeightsForPreset resolves a named preset, falling back to "balanced" for
// unknown names.
func WeightsForPreset(name string) model.WeightSet {
	if preset, ok := weightPresets[name]; ok {
		return preset
	}
	return weightPresets["balanced"]
}

// PresetNames returns the available preset names.
func PresetNames() []string {
	names := make([]string, 0, len(weightPresets))
	for name := range weightPresets {
		names = append(names, name)
	}
	return names
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
