package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilitySlot is one recurring weekly window. DayOfWeek 0 is Sunday;
// StartTime and EndTime are "HH:MM" civil times with no zone attached.
type AvailabilitySlot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerRole   string    `gorm:"size:20;not null" json:"owner_role"`
	DayOfWeek   int       `gorm:"not null" json:"day_of_week"`
	StartTime   string    `gorm:"size:5;not null" json:"start_time"`
	EndTime     string    `gorm:"size:5;not null" json:"end_time"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`

	CreatedAt time.Time `json:"-"`
}

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
