package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anjiri1684/lesson_ledger/database"
	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStore interface {
	FindStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	CompleteLesson(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ConfirmLesson(ctx context.Context, id uuid.UUID, confirmed bool, disputeNote *string, at time.Time) (bool, error)
	CancelLesson(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	LessonsForTutor(ctx context.Context, tutorID uuid.UUID) ([]models.Lesson, error)
	LessonsForParent(ctx context.Context, parentID uuid.UUID) ([]models.Lesson, error)
	DisputedLessons(ctx context.Context) ([]models.Lesson, error)
}

// StatsInvalidator drops any cached statistics for a tutor.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, tutorID uuid.UUID) error
}

// LessonService is the only writer of lesson status and confirmation verdicts.
type LessonService struct {
	store  LessonStore
	events EventPublisher
	stats  StatsInvalidator
	now    func() time.Time
}

type LessonOption func(*LessonService)

func WithEventPublisher(p EventPublisher) LessonOption {
	return func(s *LessonService) {
		s.events = p
	}
}

func WithStatsInvalidator(i StatsInvalidator) LessonOption {
	return func(s *LessonService) {
		s.stats = i
	}
}

func WithClock(now func() time.Time) LessonOption {
	return func(s *LessonService) {
		s.now = now
	}
}

func NewLessonService(store LessonStore, opts ...LessonOption) *LessonService {
	s := &LessonService{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type ScheduleLessonInput struct {
	TutorID   uuid.UUID
	StudentID uuid.UUID
	Start     time.Time
	End       time.Time
	Notes     *string
}

// ScheduleLesson creates a scheduled lesson together with its unconfirmed
// confirmation row.
func (s *LessonService) ScheduleLesson(ctx context.Context, in ScheduleLessonInput) (*models.Lesson, error) {
	const op = "services.ScheduleLesson"

	if !in.End.After(in.Start) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTimeRange)
	}

	student, err := s.store.FindStudent(ctx, in.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: unknown student %s: %w", op, in.StudentID, ErrForbiddenRelationship)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if student.TutorID != in.TutorID {
		return nil, fmt.Errorf("%s: student %s does not belong to tutor %s: %w", op, student.ID, in.TutorID, ErrForbiddenRelationship)
	}

	lesson := &models.Lesson{
		TutorID:        in.TutorID,
		StudentID:      student.ID,
		ScheduledStart: in.Start.UTC(),
		ScheduledEnd:   in.End.UTC(),
		Status:         models.LessonScheduled,
		Notes:          trimmedOrNil(in.Notes),
	}
	if err := s.store.CreateLesson(ctx, lesson); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lesson.Student = student

	s.invalidate(ctx, lesson.TutorID)
	s.publish(EventLessonScheduled, lesson)
	return lesson, nil
}

// MarkCompleted records the tutor's claim that a scheduled lesson happened.
// Calling it on a lesson that is already completed fails.
func (s *LessonService) MarkCompleted(ctx context.Context, tutorID, lessonID uuid.UUID) (*models.Lesson, error) {
	const op = "services.MarkCompleted"

	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lesson.TutorID != tutorID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbiddenRelationship)
	}

	at := s.now()
	applied, err := s.store.CompleteLesson(ctx, lessonID, at)
	if errors.Is(err, database.ErrConfirmationMissing) {
		log.Printf("🔥 INTEGRITY: lesson %s has no confirmation row, completion rolled back", lessonID)
		return nil, fmt.Errorf("%s: confirmation for lesson %s: %w", op, lessonID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		return nil, fmt.Errorf("%s: lesson %s is not scheduled: %w", op, lessonID, ErrInvalidTransition)
	}

	lesson.Status = models.LessonCompleted
	if c := lesson.Confirmation; c != nil {
		c.TutorConfirmed = true
		c.TutorConfirmedAt = &at
	}
	return s.afterTransition(ctx, op, lesson, EventLessonCompleted, false)
}

// ConfirmByParent records the parent's verdict exactly once. confirmed=true
// verifies the lesson, false disputes it and keeps disputeNote.
func (s *LessonService) ConfirmByParent(ctx context.Context, parentID, lessonID uuid.UUID, confirmed bool, disputeNote *string) (*models.Lesson, error) {
	const op = "services.ConfirmByParent"

	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if lesson.ParentID() != parentID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbiddenRelationship)
	}

	var note *string
	if !confirmed {
		note = trimmedOrNil(disputeNote)
	}

	at := s.now()
	applied, err := s.store.ConfirmLesson(ctx, lessonID, confirmed, note, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		return nil, fmt.Errorf("%s: %w", op, s.confirmRejection(ctx, lessonID))
	}

	eventType := EventLessonDisputed
	finalStatus := models.ConfirmationDisputed
	if confirmed {
		eventType = EventLessonVerified
		finalStatus = models.ConfirmationVerified
	}
	if c := lesson.Confirmation; c != nil {
		c.ParentConfirmed = &confirmed
		c.ParentConfirmedAt = &at
		c.FinalStatus = finalStatus
		c.DisputeNote = note
	}
	return s.afterTransition(ctx, op, lesson, eventType, true)
}

// confirmRejection explains why a conditional confirmation write did not land.
// Status and verdict never move backwards, so reading after the failed write
// gives the same answer the write saw.
func (s *LessonService) confirmRejection(ctx context.Context, lessonID uuid.UUID) error {
	current, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return err
	}

	switch {
	case current.Confirmation == nil:
		log.Printf("🔥 INTEGRITY: lesson %s has no confirmation row", lessonID)
		return fmt.Errorf("confirmation for lesson %s: %w", lessonID, ErrNotFound)
	case current.Confirmation.ParentConfirmed != nil:
		return ErrAlreadyConfirmed
	default:
		return fmt.Errorf("lesson %s is %s: %w", lessonID, current.Status, ErrInvalidTransition)
	}
}

// CancelLesson is allowed to the tutor or the student's parent while the lesson
// is still scheduled.
func (s *LessonService) CancelLesson(ctx context.Context, actorID, lessonID uuid.UUID) (*models.Lesson, error) {
	const op = "services.CancelLesson"

	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if actorID != lesson.TutorID && actorID != lesson.ParentID() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbiddenRelationship)
	}

	applied, err := s.store.CancelLesson(ctx, lessonID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		return nil, fmt.Errorf("%s: lesson %s is not scheduled: %w", op, lessonID, ErrInvalidTransition)
	}

	lesson.Status = models.LessonCancelled
	return s.afterTransition(ctx, op, lesson, EventLessonCancelled, false)
}

func (s *LessonService) GetLesson(ctx context.Context, actorID uuid.UUID, role string, lessonID uuid.UUID) (*models.Lesson, error) {
	const op = "services.GetLesson"

	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if role != models.RoleAdmin && actorID != lesson.TutorID && actorID != lesson.ParentID() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbiddenRelationship)
	}
	return lesson, nil
}

func (s *LessonService) TutorLessons(ctx context.Context, tutorID uuid.UUID) ([]models.Lesson, error) {
	lessons, err := s.store.LessonsForTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("services.TutorLessons: %w", err)
	}
	return lessons, nil
}

func (s *LessonService) ParentLessons(ctx context.Context, parentID uuid.UUID) ([]models.Lesson, error) {
	lessons, err := s.store.LessonsForParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("services.ParentLessons: %w", err)
	}
	return lessons, nil
}

// Disputes lists disputed lessons for manual review. Nothing here resolves them.
func (s *LessonService) Disputes(ctx context.Context) ([]models.Lesson, error) {
	lessons, err := s.store.DisputedLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("services.Disputes: %w", err)
	}
	return lessons, nil
}

func (s *LessonService) loadLesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", lessonID, ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

// afterTransition runs once a transition has committed. applied is the
// pre-transition lesson with the committed change applied in memory; it stands
// in for the stored row if reading it back fails.
func (s *LessonService) afterTransition(ctx context.Context, op string, applied *models.Lesson, eventType string, statsChanged bool) (*models.Lesson, error) {
	if statsChanged {
		s.invalidate(ctx, applied.TutorID)
	}

	lesson, err := s.loadLesson(ctx, applied.ID)
	if err != nil {
		log.Printf("⚠️ %s: lesson %s committed but reload failed: %v", op, applied.ID, err)
		lesson = applied
	}

	log.Printf("✅ Lesson %s: %s", lesson.ID, eventType)
	s.publish(eventType, lesson)
	return lesson, nil
}

func (s *LessonService) invalidate(ctx context.Context, tutorID uuid.UUID) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, tutorID); err != nil {
		log.Printf("⚠️ Failed to invalidate cached stats for tutor %s: %v", tutorID, err)
	}
}

func (s *LessonService) publish(eventType string, lesson *models.Lesson) {
	if s.events == nil {
		return
	}
	s.events.Publish(newLessonEvent(eventType, lesson, s.now()))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
