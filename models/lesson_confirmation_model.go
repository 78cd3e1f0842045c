package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfirmationStatus string

const (
	ConfirmationUnconfirmed ConfirmationStatus = "unconfirmed"
	ConfirmationVerified    ConfirmationStatus = "verified"
	ConfirmationDisputed    ConfirmationStatus = "disputed"
	// ConfirmationNoShow is only ever written by an administrative override
	// outside this service.
	ConfirmationNoShow ConfirmationStatus = "no_show"
)

type LessonConfirmation struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"lesson_id"`
	TutorConfirmed    bool               `gorm:"not null;default:false" json:"tutor_confirmed"`
	TutorConfirmedAt  *time.Time         `json:"tutor_confirmed_at,omitempty"`
	ParentConfirmed   *bool              `json:"parent_confirmed"`
	ParentConfirmedAt *time.Time         `json:"parent_confirmed_at,omitempty"`
	FinalStatus       ConfirmationStatus `gorm:"size:20;not null;default:'unconfirmed'" json:"final_status"`
	DisputeNote       *string            `gorm:"type:text" json:"dispute_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *LessonConfirmation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
