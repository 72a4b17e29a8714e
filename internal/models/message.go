package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation. Messages are immutable once
// written, so only a creation timestamp is tracked.
type Message struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string    `gorm:"type:uuid;not null;index:idx_messages_conversation_created" json:"conversationId"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created" json:"createdAt"`

	Conversation *Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
