package model

import "time"

// Group scopes a moderator's authority: a MODERATOR may only act on users
// that share their group.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;index"`
	CreatedAt time.Time `json:"created_at"`

	Users []User `json:"users,omitempty" gorm:"foreignKey:GroupID"`
}
