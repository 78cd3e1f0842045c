package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/anjiri1684/lesson_ledger/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsSource is the read-only view of lessons, testimonials and the student
// directory that statistics are computed from.
type StatsSource interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	LessonsForTutor(ctx context.Context, tutorID uuid.UUID) ([]models.Lesson, error)
	LessonsForStudent(ctx context.Context, studentID uuid.UUID) ([]models.Lesson, error)
	PublicRatings(ctx context.Context, tutorID uuid.UUID) ([]int, error)
	CountActiveStudents(ctx context.Context, tutorID uuid.UUID) (int64, error)
}

// StatsCache holds computed TutorStats. Get returns nil on a miss along with
// the cache generation, which Set takes back so that figures computed before
// an invalidation are never served.
type StatsCache interface {
	Get(ctx context.Context, tutorID uuid.UUID) (*models.TutorStats, int64, error)
	Set(ctx context.Context, generation int64, stats models.TutorStats) error
}

type TutorSnapshot struct {
	Lessons        []models.Lesson
	PublicRatings  []int
	ActiveStudents int64
}

// AggregateTutorStats derives a tutor's public figures from one snapshot. It
// keeps no state, so the same snapshot always yields the same stats. Verified
// lessons starting after asOf are left out.
func AggregateTutorStats(snap TutorSnapshot, asOf time.Time) models.TutorStats {
	var verified time.Duration
	var verifiedLessons int64
	for _, lesson := range snap.Lessons {
		if !lesson.IsVerified() || lesson.ScheduledStart.After(asOf) {
			continue
		}
		verified += lesson.Duration()
		verifiedLessons++
	}

	var ratingSum int64
	for _, r := range snap.PublicRatings {
		ratingSum += int64(r)
	}

	return models.TutorStats{
		TotalVerifiedHours:  utils.RoundToTenth(int64(verified), int64(time.Hour)),
		VerifiedLessons:     verifiedLessons,
		ActiveStudentsCount: snap.ActiveStudents,
		AverageRating:       utils.RoundToTenth(ratingSum, int64(len(snap.PublicRatings))),
		TotalLessons:        int64(len(snap.Lessons)),
	}
}

func AggregateStudentProgress(lessons []models.Lesson) models.StudentProgress {
	var verified time.Duration
	var progress models.StudentProgress
	for _, lesson := range lessons {
		progress.TotalLessons++
		if !lesson.IsVerified() {
			continue
		}
		verified += lesson.Duration()
		progress.VerifiedLessons++
	}
	progress.VerifiedHours = utils.RoundToTenth(int64(verified), int64(time.Hour))
	return progress
}

type StatsService struct {
	source     StatsSource
	cache      StatsCache
	defaultLoc *time.Location
	now        func() time.Time
}

type StatsOption func(*StatsService)

func WithStatsCache(c StatsCache) StatsOption {
	return func(s *StatsService) {
		s.cache = c
	}
}

func WithStatsClock(now func() time.Time) StatsOption {
	return func(s *StatsService) {
		s.now = now
	}
}

func NewStatsService(source StatsSource, defaultLoc *time.Location, opts ...StatsOption) *StatsService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	s := &StatsService{source: source, defaultLoc: defaultLoc, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ComputeTutorStats recomputes a tutor's statistics from the store, bypassing
// any cache.
func (s *StatsService) ComputeTutorStats(ctx context.Context, tutorID uuid.UUID, asOf time.Time) (models.TutorStats, error) {
	const op = "services.ComputeTutorStats"

	if _, err := s.tutor(ctx, tutorID); err != nil {
		return models.TutorStats{}, fmt.Errorf("%s: %w", op, err)
	}

	lessons, err := s.source.LessonsForTutor(ctx, tutorID)
	if err != nil {
		return models.TutorStats{}, fmt.Errorf("%s: lessons: %w", op, err)
	}
	ratings, err := s.source.PublicRatings(ctx, tutorID)
	if err != nil {
		return models.TutorStats{}, fmt.Errorf("%s: ratings: %w", op, err)
	}
	active, err := s.source.CountActiveStudents(ctx, tutorID)
	if err != nil {
		return models.TutorStats{}, fmt.Errorf("%s: students: %w", op, err)
	}

	stats := AggregateTutorStats(TutorSnapshot{
		Lessons:        lessons,
		PublicRatings:  ratings,
		ActiveStudents: active,
	}, asOf)
	stats.TutorID = tutorID
	return stats, nil
}

// TutorStats serves the cached figures when present and recomputes otherwise.
func (s *StatsService) TutorStats(ctx context.Context, tutorID uuid.UUID) (models.TutorStats, error) {
	var generation int64
	cacheable := false
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, tutorID)
		switch {
		case err != nil:
			log.Printf("⚠️ Stats cache read failed for tutor %s: %v", tutorID, err)
		case cached != nil:
			return *cached, nil
		default:
			generation, cacheable = gen, true
		}
	}

	stats, err := s.ComputeTutorStats(ctx, tutorID, s.now())
	if err != nil {
		return models.TutorStats{}, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, generation, stats); err != nil {
			log.Printf("⚠️ Stats cache write failed for tutor %s: %v", tutorID, err)
		}
	}
	return stats, nil
}

// StudentProgress is visible to the student's parent and tutor only.
func (s *StatsService) StudentProgress(ctx context.Context, actorID, studentID uuid.UUID) (models.StudentProgress, error) {
	const op = "services.StudentProgress"

	student, err := s.source.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentProgress{}, fmt.Errorf("%s: student %s: %w", op, studentID, ErrNotFound)
		}
		return models.StudentProgress{}, fmt.Errorf("%s: %w", op, err)
	}
	if actorID != student.ParentID && actorID != student.TutorID {
		return models.StudentProgress{}, fmt.Errorf("%s: %w", op, ErrForbiddenRelationship)
	}

	lessons, err := s.source.LessonsForStudent(ctx, studentID)
	if err != nil {
		return models.StudentProgress{}, fmt.Errorf("%s: lessons: %w", op, err)
	}

	progress := AggregateStudentProgress(lessons)
	progress.StudentID = studentID
	return progress, nil
}

func (s *StatsService) tutor(ctx context.Context, tutorID uuid.UUID) (*models.User, error) {
	user, err := s.source.FindUser(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tutor %s: %w", tutorID, ErrNotFound)
		}
		return nil, err
	}
	if user.Role != models.RoleTutor {
		return nil, fmt.Errorf("user %s is not a tutor: %w", tutorID, ErrNotFound)
	}
	return user, nil
}
