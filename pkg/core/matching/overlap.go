package matching

import (
	"sort"

	"github.com/jakechorley/friendzone/pkg/core/model"
)

// DefaultOverlapCapHours is the total overlap, in hours, treated as a perfect
// schedule match. Tunable, not derived.
const DefaultOverlapCapHours = 20.0

// ScheduleOverlap is the outcome of intersecting two people's availability.
type ScheduleOverlap struct {
	Score             float64
	TotalOverlapHours float64
	Slots             []model.OverlapSlot
}

// OverlapEngine scores schedule compatibility between two availability maps.
// The zero value is not usable; construct with NewOverlapEngine.
type OverlapEngine struct {
	capHours float64
}

// NewOverlapEngine creates an engine with the given saturation cap. A cap of
// zero or below falls back to DefaultOverlapCapHours.
func NewOverlapEngine(capHours float64) *OverlapEngine {
	if capHours <= 0 {
		capHours = DefaultOverlapCapHours
	}
	return &OverlapEngine{capHours: capHours}
}

// Compare intersects the two availability maps day by day and maps the total
// shared hours to a saturating 0-100 score. The operation is symmetric:
// Compare(a, b) and Compare(b, a) produce the same result.
func (e *OverlapEngine) Compare(a, b map[string][]model.TimeSlot) ScheduleOverlap {
	overlap := ScheduleOverlap{Slots: []model.OverlapSlot{}}

	days := make([]string, 0, len(a))
	for day := range a {
		if _, ok := b[day]; ok {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	for _, day := range days {
		for _, slotA := range a[day] {
			for _, slotB := range b[day] {
				start := max(slotA.Start, slotB.Start)
				end := min(slotA.End, slotB.End)
				if start >= end {
					continue
				}

				duration := float64(end-start) / 60.0
				overlap.Slots = append(overlap.Slots, model.OverlapSlot{
					Day:      day,
					Start:    start,
					End:      end,
					Duration: duration,
				})
				overlap.TotalOverlapHours += duration
			}
		}
	}

	overlap.Score = min(overlap.TotalOverlapHours/e.capHours*100, 100)
	return overlap
}
