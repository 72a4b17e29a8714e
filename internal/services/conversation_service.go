package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/kekishida/ai-chat/internal/models"
	apperrors "github.com/kekishida/ai-chat/pkg/errors"
)

// ErrConversationNotFound covers both missing conversations and conversations
// owned by another user. Callers must not be able to tell the two apart.
var ErrConversationNotFound = apperrors.New("CONVERSATION_NOT_FOUND", "Conversation not found", http.StatusNotFound)

// ConversationService manages per-user conversations and their messages.
type ConversationService struct {
	db *gorm.DB
}

// NewConversationService constructs a ConversationService instance.
func NewConversationService(db *gorm.DB) (*ConversationService, error) {
	if db == nil {
		return nil, errors.New("conversation service: db is required")
	}
	return &ConversationService{db: db}, nil
}

// Create starts a new conversation for the user.
func (s *ConversationService) Create(ctx context.Context, userID, title string) (*models.Conversation, error) {
	ctx = ensureContext(ctx)

	conversation := &models.Conversation{
		Title:  title,
		UserID: strings.TrimSpace(userID),
	}
	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, fmt.Errorf("conversation service: create: %w", err)
	}
	return conversation, nil
}

// Get fetches a conversation scoped to its owner.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	ctx = ensureContext(ctx)

	var conversation models.Conversation
	err := s.db.WithContext(ctx).
		First(&conversation, "id = ? AND user_id = ?", conversationID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation service: get: %w", err)
	}
	return &conversation, nil
}

// List returns the user's conversations, most recently active first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	ctx = ensureContext(ctx)

	var conversations []models.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("conversation service: list: %w", err)
	}
	return conversations, nil
}

// Delete removes a conversation and its messages. The two deletes are
// sequential, not transactional; a failure after the message purge leaves
// an empty conversation behind rather than rolling back.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	ctx = ensureContext(ctx)

	conversation, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversation.ID).
		Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("conversation service: delete messages: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(conversation).Error; err != nil {
		return fmt.Errorf("conversation service: delete: %w", err)
	}
	return nil
}

// Messages returns the conversation's messages in chronological order.
// Ownership is checked before any message is read.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	ctx = ensureContext(ctx)

	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("conversation service: messages: %w", err)
	}
	return messages, nil
}

// AppendMessage persists a message at the end of the conversation.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	ctx = ensureContext(ctx)

	message := &models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("conversation service: append message: %w", err)
	}
	return message, nil
}

// Touch bumps the conversation's updated_at so activity ordering stays fresh.
func (s *ConversationService) Touch(ctx context.Context, conversationID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	if err != nil {
		return fmt.Errorf("conversation service: touch: %w", err)
	}
	return nil
}
