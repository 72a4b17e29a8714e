package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kekishida/ai-chat/internal/services"
	"github.com/kekishida/ai-chat/pkg/errors"
	"github.com/kekishida/ai-chat/pkg/response"
)

// ConversationHandler exposes the authenticated user's conversation history.
type ConversationHandler struct {
	conversations *services.ConversationService
}

func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	conversations, err := h.conversations.List(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, conversations)
}

// GET /api/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	conversation, err := h.conversations.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, conversation)
}

// GET /api/conversations/:id/messages
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	messages, err := h.conversations.Messages(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, messages)
}

// DELETE /api/conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.conversations.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
