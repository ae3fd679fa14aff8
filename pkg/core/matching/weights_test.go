package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func assertSumsToOne(t *testing.T, weights model.WeightSet) {
	t.Helper()
	assert.InDelta(t, 1.0, weights.Sum(), 1e-6)
}

func TestNormalizeWeights_EmptySpecUsesDefaults(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{})
	require.NoError(t, err)

	assert.Equal(t, DefaultWeights, weights)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_PartialSpecFilledFromDefaults(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{Interest: floatPtr(0.5)})
	require.NoError(t, err)

	// 0.5 + 0.3 + 0.3 = 1.1: renormalized by the sum.
	assert.InDelta(t, 0.5/1.1, weights.Interest, 1e-9)
	assert.InDelta(t, 0.3/1.1, weights.Schedule, 1e-9)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_PercentagesDetected(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(50),
		Schedule:    floatPtr(30),
		Personality: floatPtr(20),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, weights.Interest, 1e-9)
	assert.InDelta(t, 0.3, weights.Schedule, 1e-9)
	assert.InDelta(t, 0.2, weights.Personality, 1e-9)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_PercentagesNotSummingTo100(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(50),
		Schedule:    floatPtr(30),
		Personality: floatPtr(30),
	})
	require.NoError(t, err)

	assertSumsToOne(t, weights)
	assert.Greater(t, weights.Interest, weights.Schedule)
}

func TestNormalizeWeights_AlreadyNormalizedAccepted(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(0.4),
		Schedule:    floatPtr(0.35),
		Personality: floatPtr(0.25),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.4, weights.Interest, 1e-9)
	assert.InDelta(t, 0.35, weights.Schedule, 1e-9)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_NearOneSumStillLandsOnOne(t *testing.T) {
	// Sums just shy of 1.0 keep their proportions but must still come out
	// at exactly 1.0, not 0.999.
	weights, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(0.4),
		Schedule:    floatPtr(0.35),
		Personality: floatPtr(0.249),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.4/0.999, weights.Interest, 1e-9)
	assert.InDelta(t, 0.35/0.999, weights.Schedule, 1e-9)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_GenericRenormalization(t *testing.T) {
	weights, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(2),
		Schedule:    floatPtr(1),
		Personality: floatPtr(1),
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, weights.Interest, 1e-9)
	assert.InDelta(t, 0.25, weights.Schedule, 1e-9)
	assert.InDelta(t, 0.25, weights.Personality, 1e-9)
	assertSumsToOne(t, weights)
}

func TestNormalizeWeights_NegativeInputRejected(t *testing.T) {
	_, err := NormalizeWeights(WeightSpec{Interest: floatPtr(-0.2)})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "weights", vErr.Field)
}

func TestNormalizeWeights_AllZeroRejected(t *testing.T) {
	_, err := NormalizeWeights(WeightSpec{
		Interest:    floatPtr(0),
		Schedule:    floatPtr(0),
		Personality: floatPtr(0),
	})

	assert.Error(t, err)
}

func TestWeightsFromSliders(t *testing.T) {
	weights, err := WeightsFromSliders(60, 25, 15)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, weights.Interest, 1e-9)
	assert.InDelta(t, 0.25, weights.Schedule, 1e-9)
	assert.InDelta(t, 0.15, weights.Personality, 1e-9)
	assertSumsToOne(t, weights)
}

func TestWeightsForPreset(t *testing.T) {
	interestFirst := WeightsForPreset("interest-first")
	assert.InDelta(t, 0.6, interestFirst.Interest, 1e-9)

	scheduleFirst := WeightsForPreset("schedule-first")
	assert.InDelta(t, 0.6, scheduleFirst.Schedule, 1e-9)

	personalityFirst := WeightsForPreset("personality-first")
	assert.InDelta(t, 0.6, personalityFirst.Personality, 1e-9)

	// Unknown presets fall back to balanced.
	fallback := WeightsForPreset("no-such-preset")
	assert.Equal(t, WeightsForPreset("balanced"), fallback)
	assertSumsToOne(t, fallback)
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	assert.Contains(t, names, "balanced")
	assert.Contains(t, names, "interest-first")
	assert.Len(t, names, 4)
}

func TestResolveWeights(t *testing.T) {
	// The zero value means "no preference" and resolves to the defaults.
	resolved, err := ResolveWeights(model.WeightSet{})
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights, resolved)

	// Non-normalized sets go through the usual pipeline.
	resolved, err = ResolveWeights(model.WeightSet{Interest: 60, Schedule: 20, Personality: 20})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, resolved.Interest, 1e-9)
	assertSumsToOne(t, resolved)

	_, err = ResolveWeights(model.WeightSet{Interest: -1, Schedule: 1, Personality: 1})
	assert.Error(t, err)
}
