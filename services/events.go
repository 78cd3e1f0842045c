package services

import (
	"time"

	"github.com/anjiri1684/lesson_ledger/models"
	"github.com/google/uuid"
)

const (
	EventLessonScheduled = "lesson.scheduled"
	EventLessonCompleted = "lesson.completed"
	EventLessonCancelled = "lesson.cancelled"
	EventLessonVerified  = "lesson.verified"
	EventLessonDisputed  = "lesson.disputed"
)

type LessonEvent struct {
	Type        string                    `json:"type"`
	LessonID    uuid.UUID                 `json:"lesson_id"`
	TutorID     uuid.UUID                 `json:"tutor_id"`
	ParentID    uuid.UUID                 `json:"parent_id"`
	StudentID   uuid.UUID                 `json:"student_id"`
	Status      models.LessonStatus       `json:"status"`
	FinalStatus models.ConfirmationStatus `json:"final_status"`
	StartsAt    time.Time                 `json:"starts_at"`
	DisputeNote *string                   `json:"dispute_note,omitempty"`
	OccurredAt  time.Time                 `json:"occurred_at"`
}

// EventPublisher is told about every successful lesson transition. Publish
// must not block the request that caused it.
type EventPublisher interface {
	Publish(event LessonEvent)
}

func newLessonEvent(eventType string, lesson *models.Lesson, at time.Time) LessonEvent {
	event := LessonEvent{
		Type:       eventType,
		LessonID:   lesson.ID,
		TutorID:    lesson.TutorID,
		ParentID:   lesson.ParentID(),
		StudentID:  lesson.StudentID,
		Status:     lesson.Status,
		StartsAt:   lesson.ScheduledStart,
		OccurredAt: at,
	}
	if lesson.Confirmation != nil {
		event.FinalStatus = lesson.Confirmation.FinalStatus
		event.DisputeNote = lesson.Confirmation.DisputeNote
	}
	return event
}
