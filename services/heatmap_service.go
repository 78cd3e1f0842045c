package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
)

const heatmapDateLayout = "2006-01-02"

// HeatmapFromLessons counts verified lessons per local calendar date of year.
// Days without lessons are left out of the map rather than stored as 0.
func HeatmapFromLessons(lessons []models.Lesson, year int, loc *time.Location) map[string]int {
	heatmap := make(map[string]int)
	for _, lesson := range lessons {
		if !lesson.IsVerified() {
			continue
		}
		local := lesson.ScheduledStart.In(loc)
		if local.Year() != year {
			continue
		}
		heatmap[local.Format(heatmapDateLayout)]++
	}
	return heatmap
}

// BuildHeatmap buckets the tutor's verified lessons by day in the tutor's own
// time zone. A zero year means the current year there.
func (s *StatsService) BuildHeatmap(ctx context.Context, tutorID uuid.UUID, year int) (map[string]int, error) {
	const op = "services.BuildHeatmap"

	tutor, err := s.tutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	loc := tutor.Location(s.defaultLoc)
	if year == 0 {
		year = s.now().In(loc).Year()
	}

	lessons, err := s.source.LessonsForTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: lessons: %w", op, err)
	}
	return HeatmapFromLessons(lessons, year, loc), nil
}
