package models

import "time"

// InviteCode is a single-use token gating account creation. ExpiresAt is
// optional; a nil value means the code never expires.
type InviteCode struct {
	BaseModel

	Code      string     `gorm:"uniqueIndex;not null" json:"code"`
	IsUsed    bool       `gorm:"default:false;not null;index:idx_invite_codes_usable" json:"isUsed"`
	CreatedBy string     `gorm:"type:uuid;not null;index" json:"createdBy"`
	UsedBy    *string    `gorm:"type:uuid" json:"usedBy,omitempty"`
	ExpiresAt *time.Time `gorm:"index:idx_invite_codes_usable" json:"expiresAt,omitempty"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}
