package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonCancelled LessonStatus = "cancelled"
)

type Lesson struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TutorID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"tutor_id"`
	StudentID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"student_id"`
	ScheduledStart time.Time    `gorm:"not null;index" json:"scheduled_start"`
	ScheduledEnd   time.Time    `gorm:"not null" json:"scheduled_end"`
	Status         LessonStatus `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Notes          *string      `gorm:"type:text" json:"notes,omitempty"`

	Confirmation *LessonConfirmation `gorm:"foreignKey:LessonID" json:"confirmation,omitempty"`
	Student      *Student            `gorm:"foreignKey:StudentID" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l Lesson) Duration() time.Duration {
	return l.ScheduledEnd.Sub(l.ScheduledStart)
}

// IsVerified reports whether the lesson counts toward public trust statistics.
// A cancelled lesson never counts, whatever its confirmation row says.
func (l Lesson) IsVerified() bool {
	if l.Status == LessonCancelled || l.Confirmation == nil {
		return false
	}
	return l.Confirmation.FinalStatus == ConfirmationVerified
}

// ParentID is the parent of the lesson's student, or uuid.Nil when the student
// was not loaded.
func (l Lesson) ParentID() uuid.UUID {
	if l.Student == nil {
		return uuid.Nil
	}
	return l.Student.ParentID
}
