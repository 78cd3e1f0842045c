package services

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/anjiri1684/lesson_ledger/models"
)

const (
	sunday = iota
	monday
	tuesday
)

func slot(day int, start, end string) models.AvailabilitySlot {
	return models.AvailabilitySlot{DayOfWeek: day, StartTime: start, EndTime: end, IsAvailable: true}
}

func TestComputeOverlap(t *testing.T) {
	blocked := slot(tuesday, "08:00", "18:00")
	blocked.IsAvailable = false

	tests := []struct {
		name   string
		tutor  []models.AvailabilitySlot
		parent []models.AvailabilitySlot
		day    int
		want   []TimeWindow
	}{
		{
			name:   "contained window",
			tutor:  []models.AvailabilitySlot{slot(monday, "09:00", "12:00")},
			parent: []models.AvailabilitySlot{slot(monday, "10:00", "11:00"), slot(monday, "13:00", "14:00")},
			day:    monday,
			want:   []TimeWindow{{Start: "10:00", End: "11:00"}},
		},
		{
			name:   "touching endpoints do not overlap",
			tutor:  []models.AvailabilitySlot{slot(monday, "09:00", "10:00")},
			parent: []models.AvailabilitySlot{slot(monday, "10:00", "11:00")},
			day:    monday,
			want:   []TimeWindow{},
		},
		{
			name:   "every pair is reported",
			tutor:  []models.AvailabilitySlot{slot(monday, "08:00", "10:00"), slot(monday, "15:00", "18:00")},
			parent: []models.AvailabilitySlot{slot(monday, "09:00", "16:00"), slot(monday, "17:00", "19:00")},
			day:    monday,
			want: []TimeWindow{
				{Start: "09:00", End: "10:00"},
				{Start: "15:00", End: "16:00"},
				{Start: "17:00", End: "18:00"},
			},
		},
		{
			name:   "unavailable slots are ignored",
			tutor:  []models.AvailabilitySlot{blocked},
			parent: []models.AvailabilitySlot{slot(tuesday, "09:00", "10:00")},
			day:    tuesday,
			want:   []TimeWindow{},
		},
		{
			name:   "different days never meet",
			tutor:  []models.AvailabilitySlot{slot(sunday, "09:00", "12:00")},
			parent: []models.AvailabilitySlot{slot(monday, "09:00", "12:00")},
			day:    sunday,
			want:   []TimeWindow{},
		},
		{
			name:   "duplicate slots yield one window",
			tutor:  []models.AvailabilitySlot{slot(monday, "09:00", "12:00"), slot(monday, "09:00", "12:00")},
			parent: []models.AvailabilitySlot{slot(monday, "11:00", "13:00")},
			day:    monday,
			want:   []TimeWindow{{Start: "11:00", End: "12:00"}},
		},
		{
			name:   "overlapping slots from one owner are not merged",
			tutor:  []models.AvailabilitySlot{slot(monday, "09:00", "11:00"), slot(monday, "10:00", "12:00")},
			parent: []models.AvailabilitySlot{slot(monday, "08:00", "13:00")},
			day:    monday,
			want:   []TimeWindow{{Start: "09:00", End: "11:00"}, {Start: "10:00", End: "12:00"}},
		},
		{
			name:   "end of day",
			tutor:  []models.AvailabilitySlot{slot(sunday, "20:00", "24:00")},
			parent: []models.AvailabilitySlot{slot(sunday, "22:30", "24:00")},
			day:    sunday,
			want:   []TimeWindow{{Start: "22:30", End: "24:00"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverlap(tt.tutor, tt.parent)
			if !reflect.DeepEqual(got[tt.day], tt.want) {
				t.Fatalf("want %v, got %v", tt.want, got[tt.day])
			}
		})
	}
}

func TestComputeOverlapIsSymmetric(t *testing.T) {
	a := []models.AvailabilitySlot{slot(monday, "09:00", "12:00"), slot(tuesday, "14:00", "16:00")}
	b := []models.AvailabilitySlot{slot(monday, "10:00", "11:00"), slot(tuesday, "15:00", "17:00")}

	if !reflect.DeepEqual(ComputeOverlap(a, b), ComputeOverlap(b, a)) {
		t.Fatal("overlap depends on argument order")
	}
}

func TestEmptyDaysEncodeAsEmptyLists(t *testing.T) {
	raw, err := json.Marshal(ComputeOverlap(nil, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "[[],[],[],[],[],[],[]]" {
		t.Fatalf("unexpected encoding %s", raw)
	}
}
