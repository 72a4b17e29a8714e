package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes a chat account created through the invite-gated signup flow.
type User struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string `json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`

	// InviteCodeUsed records the invite code redeemed at signup.
	InviteCodeUsed string `gorm:"not null" json:"-"`

	Conversations []Conversation `gorm:"foreignKey:UserID" json:"-"`
	Sessions      []Session      `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
