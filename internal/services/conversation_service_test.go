package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kekishida/ai-chat/internal/models"
)

func TestConversationServiceOwnership(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewConversationService(db)
	require.NoError(t, err)

	ctx := context.Background()

	conversation, err := svc.Create(ctx, "owner-id", "First chat")
	require.NoError(t, err)

	found, err := svc.Get(ctx, "owner-id", conversation.ID)
	require.NoError(t, err)
	require.Equal(t, "First chat", found.Title)

	// Another user's conversation looks exactly like a missing one.
	_, err = svc.Get(ctx, "intruder-id", conversation.ID)
	require.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.Get(ctx, "owner-id", "missing-id")
	require.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.Messages(ctx, "intruder-id", conversation.ID)
	require.ErrorIs(t, err, ErrConversationNotFound)

	err = svc.Delete(ctx, "intruder-id", conversation.ID)
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationServiceListOrdering(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewConversationService(db)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := svc.Create(ctx, "owner-id", "older")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "owner-id", "newer")
	require.NoError(t, err)

	// Force distinct timestamps, then bump the older conversation.
	base := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", first.ID).
		Update("updated_at", base).Error)
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", second.ID).
		Update("updated_at", base.Add(time.Minute)).Error)

	list, err := svc.List(ctx, "owner-id")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	require.NoError(t, svc.Touch(ctx, first.ID))

	list, err = svc.List(ctx, "owner-id")
	require.NoError(t, err)
	require.Equal(t, first.ID, list[0].ID)
}

func TestConversationServiceMessages(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewConversationService(db)
	require.NoError(t, err)

	ctx := context.Background()

	conversation, err := svc.Create(ctx, "owner-id", "chat")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, conversation.ID, models.RoleUser, "hello")
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, conversation.ID, models.RoleAssistant, "hi there")
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, conversation.ID, models.RoleUser, "how are you?")
	require.NoError(t, err)

	messages, err := svc.Messages(ctx, "owner-id", conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "hello", messages[0].Content)
	require.Equal(t, models.RoleAssistant, messages[1].Role)
	require.Equal(t, "how are you?", messages[2].Content)
}

func TestConversationServiceDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewConversationService(db)
	require.NoError(t, err)

	ctx := context.Background()

	conversation, err := svc.Create(ctx, "owner-id", "doomed")
	require.NoError(t, err)
	keep, err := svc.Create(ctx, "owner-id", "kept")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, conversation.ID, models.RoleUser, "to be removed")
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, keep.ID, models.RoleUser, "to be kept")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner-id", conversation.ID))

	_, err = svc.Get(ctx, "owner-id", conversation.ID)
	require.ErrorIs(t, err, ErrConversationNotFound)

	var orphaned int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("conversation_id = ?", conversation.ID).Count(&orphaned).Error)
	require.Zero(t, orphaned)

	messages, err := svc.Messages(ctx, "owner-id", keep.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}
