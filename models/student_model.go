package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TutorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tutor_id"`
	ParentID uuid.UUID `gorm:"type:uuid;not null;index" json:"parent_id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	IsActive bool      `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
