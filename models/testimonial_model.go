package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Testimonial struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TutorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"tutor_id"`
	ParentID *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	Rating   int        `gorm:"not null" json:"rating"`
	Comment  string     `gorm:"type:text" json:"comment"`
	IsPublic bool       `gorm:"not null" json:"is_public"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
