package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

func availabilityOf(slots ...model.TimeSlot) map[string][]model.TimeSlot {
	availability := make(map[string][]model.TimeSlot)
	for _, slot := range slots {
		availability[slot.Day] = append(availability[slot.Day], slot)
	}
	return availability
}

func TestOverlapEngine_PartialOverlap(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	a := availabilityOf(model.TimeSlot{Day: "Monday", Start: 14 * 60, End: 17 * 60})
	b := availabilityOf(model.TimeSlot{Day: "Monday", Start: 15 * 60, End: 18 * 60})

	overlap := engine.Compare(a, b)

	require.Len(t, overlap.Slots, 1)
	assert.Equal(t, "Monday", overlap.Slots[0].Day)
	assert.Equal(t, 15*60, overlap.Slots[0].Start)
	assert.Equal(t, 17*60, overlap.Slots[0].End)
	assert.InDelta(t, 2.0, overlap.TotalOverlapHours, 1e-9)
	assert.InDelta(t, 10.0, overlap.Score, 1e-9) // 2h of a 20h cap
}

func TestOverlapEngine_Symmetric(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	a := availabilityOf(
		model.TimeSlot{Day: "Monday", Start: 600, End: 720},
		model.TimeSlot{Day: "Wednesday", Start: 540, End: 660},
	)
	b := availabilityOf(
		model.TimeSlot{Day: "Monday", Start: 660, End: 780},
		model.TimeSlot{Day: "Friday", Start: 540, End: 660},
	)

	ab := engine.Compare(a, b)
	ba := engine.Compare(b, a)

	assert.Equal(t, ab.Score, ba.Score)
	assert.Equal(t, ab.TotalOverlapHours, ba.TotalOverlapHours)
	assert.Equal(t, ab.Slots, ba.Slots)
}

func TestOverlapEngine_DisjointDaysScoreZero(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	a := availabilityOf(model.TimeSlot{Day: "Monday", Start: 540, End: 660})
	b := availabilityOf(model.TimeSlot{Day: "Tuesday", Start: 540, End: 660})

	overlap := engine.Compare(a, b)

	assert.Zero(t, overlap.Score)
	assert.Zero(t, overlap.TotalOverlapHours)
	assert.Empty(t, overlap.Slots)
}

func TestOverlapEngine_DisjointTimesOnSameDayScoreZero(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	a := availabilityOf(model.TimeSlot{Day: "Monday", Start: 540, End: 660})
	b := availabilityOf(model.TimeSlot{Day: "Monday", Start: 660, End: 780})

	overlap := engine.Compare(a, b)

	// Touching slots share no time: max(start) == min(end).
	assert.Zero(t, overlap.Score)
	assert.Empty(t, overlap.Slots)
}

func TestOverlapEngine_ScoreSaturatesAtCap(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	// Two identical fully-free days: 2 * 23.98h of overlap, far past the cap.
	a := availabilityOf(
		model.TimeSlot{Day: "2026-09-01", Start: 0, End: 1439},
		model.TimeSlot{Day: "2026-09-02", Start: 0, End: 1439},
	)

	overlap := engine.Compare(a, a)

	assert.Greater(t, overlap.TotalOverlapHours, DefaultOverlapCapHours)
	assert.Equal(t, 100.0, overlap.Score)
}

func TestOverlapEngine_CustomCap(t *testing.T) {
	engine := NewOverlapEngine(2)

	a := availabilityOf(model.TimeSlot{Day: "Monday", Start: 540, End: 660})

	overlap := engine.Compare(a, a)

	// 2h of overlap at a 2h cap saturates.
	assert.Equal(t, 100.0, overlap.Score)
}

func TestOverlapEngine_SlotsOrderedByDay(t *testing.T) {
	engine := NewOverlapEngine(DefaultOverlapCapHours)

	a := availabilityOf(
		model.TimeSlot{Day: "2026-09-03", Start: 540, End: 600},
		model.TimeSlot{Day: "2026-09-01", Start: 540, End: 600},
	)

	overlap := engine.Compare(a, a)

	require.Len(t, overlap.Slots, 2)
	assert.Equal(t, "2026-09-01", overlap.Slots[0].Day)
	assert.Equal(t, "2026-09-03", overlap.Slots[1].Day)
}
