package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values for User.Role.
const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// User represents an account in the system.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255"`
	Surname      string    `json:"surname" gorm:"size:255"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:256;not null"`
	PhoneNumber  *string   `json:"phone_number" gorm:"uniqueIndex;size:20"` // nullable so absent phones don't collide on the unique index
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:50;default:'USER';index"`
	GroupID      *uint     `json:"group_id" gorm:"index"`
	AvatarKey    string    `json:"avatar_key,omitempty" gorm:"size:1024"`
	IsBlocked    bool      `json:"is_blocked" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"modified_at"`

	Group *Group `json:"-" gorm:"foreignKey:GroupID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
