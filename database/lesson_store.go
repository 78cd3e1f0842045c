package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConfirmationMissing means a lesson exists without its confirmation row.
// Rows are created together, so seeing this is an integrity fault.
var ErrConfirmationMissing = errors.New("lesson confirmation row missing")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateLesson inserts the lesson and its unconfirmed confirmation row in one
// transaction.
func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(lesson).Error; err != nil {
			return err
		}

		confirmation := models.LessonConfirmation{
			LessonID:    lesson.ID,
			FinalStatus: models.ConfirmationUnconfirmed,
		}
		if err := tx.Create(&confirmation).Error; err != nil {
			return err
		}
		lesson.Confirmation = &confirmation
		return nil
	})
}

func (s *Store) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Preload("Student").
		First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CompleteLesson moves a scheduled lesson to completed and records tutor-side
// completion. It reports false, leaving both rows untouched, when the lesson
// is no longer scheduled.
func (s *Store) CompleteLesson(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Lesson{}).
			Where("id = ? AND status = ?", id, models.LessonScheduled).
			Update("status", models.LessonCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		res = tx.Model(&models.LessonConfirmation{}).
			Where("lesson_id = ? AND tutor_confirmed = ?", id, false).
			Updates(map[string]any{
				"tutor_confirmed":    true,
				"tutor_confirmed_at": at.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConfirmationMissing
		}

		applied = true
		return nil
	})
	return applied, err
}

// ConfirmLesson records the parent's verdict. The write only lands while
// parent_confirmed is still NULL and the lesson is completed, so two racing
// verdicts cannot both succeed.
func (s *Store) ConfirmLesson(ctx context.Context, id uuid.UUID, confirmed bool, disputeNote *string, at time.Time) (bool, error) {
	finalStatus := models.ConfirmationDisputed
	if confirmed {
		finalStatus = models.ConfirmationVerified
	}

	values := map[string]any{
		"parent_confirmed":    confirmed,
		"parent_confirmed_at": at.UTC(),
		"final_status":        finalStatus,
	}
	if !confirmed && disputeNote != nil {
		values["dispute_note"] = *disputeNote
	}

	db := s.db.WithContext(ctx)
	completed := db.Model(&models.Lesson{}).
		Select("id").
		Where("id = ? AND status = ?", id, models.LessonCompleted)

	res := db.Model(&models.LessonConfirmation{}).
		Where("lesson_id = ? AND parent_confirmed IS NULL", id).
		Where("lesson_id IN (?)", completed).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) CancelLesson(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("id = ? AND status = ?", id, models.LessonScheduled).
		Updates(map[string]any{"status": models.LessonCancelled, "updated_at": at.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) LessonsForTutor(ctx context.Context, tutorID uuid.UUID) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Preload("Student").
		Where("tutor_id = ?", tutorID).
		Order("scheduled_start desc").
		Find(&lessons).Error
	return lessons, err
}

func (s *Store) LessonsForStudent(ctx context.Context, studentID uuid.UUID) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Where("student_id = ?", studentID).
		Order("scheduled_start desc").
		Find(&lessons).Error
	return lessons, err
}

func (s *Store) LessonsForParent(ctx context.Context, parentID uuid.UUID) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Preload("Student").
		Joins("JOIN students ON students.id = lessons.student_id").
		Where("students.parent_id = ?", parentID).
		Order("lessons.scheduled_start desc").
		Find(&lessons).Error
	return lessons, err
}

func (s *Store) DisputedLessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Preload("Student").
		Joins("JOIN lesson_confirmations ON lesson_confirmations.lesson_id = lessons.id").
		Where("lesson_confirmations.final_status = ?", models.ConfirmationDisputed).
		Order("lesson_confirmations.parent_confirmed_at desc").
		Find(&lessons).Error
	return lessons, err
}

// ScheduledLessonsEndedBetween lists lessons still scheduled whose end falls in (from, to].
func (s *Store) ScheduledLessonsEndedBetween(ctx context.Context, from, to time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("status = ? AND scheduled_end > ? AND scheduled_end <= ?", models.LessonScheduled, from.UTC(), to.UTC()).
		Find(&lessons).Error
	return lessons, err
}

// UnconfirmedLessonsCompletedBetween lists completed lessons the parent has not
// answered yet whose tutor completion falls in (from, to].
func (s *Store) UnconfirmedLessonsCompletedBetween(ctx context.Context, from, to time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Confirmation").
		Preload("Student").
		Joins("JOIN lesson_confirmations ON lesson_confirmations.lesson_id = lessons.id").
		Where("lessons.status = ? AND lesson_confirmations.final_status = ?", models.LessonCompleted, models.ConfirmationUnconfirmed).
		Where("lesson_confirmations.tutor_confirmed_at > ? AND lesson_confirmations.tutor_confirmed_at <= ?", from.UTC(), to.UTC()).
		Find(&lessons).Error
	return lessons, err
}
