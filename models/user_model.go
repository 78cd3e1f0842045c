package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleTutor  = "tutor"
	RoleParent = "parent"
	RoleAdmin  = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Role     string    `gorm:"size:20;not null" json:"role"`
	TimeZone *string   `gorm:"size:100" json:"time_zone"`
	IsActive bool      `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Location resolves the user's IANA zone, falling back when it is unset or unknown.
func (u User) Location(fallback *time.Location) *time.Location {
	if u.TimeZone == nil || *u.TimeZone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(*u.TimeZone)
	if err != nil {
		return fallback
	}
	return loc
}
