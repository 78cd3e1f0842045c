package services

import (
	"sort"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/anjiri1684/lesson_ledger/utils"
)

const DaysPerWeek = 7

type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyOverlap is indexed by day of week, 0 being Sunday. Every day holds a
// non-nil slice so it encodes as [] rather than null.
type WeeklyOverlap [DaysPerWeek][]TimeWindow

type interval struct {
	start, end int
}

// ComputeOverlap intersects two weekly grids pairwise per day. Intervals are
// half-open, so windows that only touch do not overlap. Unavailable or
// malformed slots are ignored.
func ComputeOverlap(tutorSlots, parentSlots []models.AvailabilitySlot) WeeklyOverlap {
	tutorDays := slotsByDay(tutorSlots)
	parentDays := slotsByDay(parentSlots)

	var result WeeklyOverlap
	for day := 0; day < DaysPerWeek; day++ {
		var found []interval
		for _, a := range tutorDays[day] {
			for _, b := range parentDays[day] {
				if a.start < b.end && b.start < a.end {
					found = append(found, interval{start: max(a.start, b.start), end: min(a.end, b.end)})
				}
			}
		}
		result[day] = windows(found)
	}
	return result
}

func slotsByDay(slots []models.AvailabilitySlot) [DaysPerWeek][]interval {
	var days [DaysPerWeek][]interval
	for _, slot := range slots {
		if !slot.IsAvailable || slot.DayOfWeek < 0 || slot.DayOfWeek >= DaysPerWeek {
			continue
		}
		start, err := utils.ParseClock(slot.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(slot.EndTime)
		if err != nil || end <= start {
			continue
		}
		days[slot.DayOfWeek] = append(days[slot.DayOfWeek], interval{start: start, end: end})
	}
	return days
}

// windows sorts by start then end and drops exact duplicates, which appear
// when one owner lists the same slot twice.
func windows(found []interval) []TimeWindow {
	sort.Slice(found, func(i, j int) bool {
		if found[i].start != found[j].start {
			return found[i].start < found[j].start
		}
		return found[i].end < found[j].end
	})

	out := make([]TimeWindow, 0, len(found))
	for i, iv := range found {
		if i > 0 && iv == found[i-1] {
			continue
		}
		out = append(out, TimeWindow{Start: utils.FormatClock(iv.start), End: utils.FormatClock(iv.end)})
	}
	return out
}
