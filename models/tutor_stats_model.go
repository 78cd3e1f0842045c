package models

import "github.com/google/uuid"

// TutorStats is recomputed from lessons on demand and never stored.
type TutorStats struct {
	TutorID             uuid.UUID `json:"tutor_id"`
	TotalVerifiedHours  float64   `json:"total_verified_hours"`
	VerifiedLessons     int64     `json:"verified_lessons"`
	ActiveStudentsCount int64     `json:"active_students_count"`
	AverageRating       float64   `json:"average_rating"`
	TotalLessons        int64     `json:"total_lessons"`
}

type StudentProgress struct {
	StudentID       uuid.UUID `json:"student_id"`
	VerifiedHours   float64   `json:"verified_hours"`
	VerifiedLessons int64     `json:"verified_lessons"`
	TotalLessons    int64     `json:"total_lessons"`
}
