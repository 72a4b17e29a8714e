package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kekishida/ai-chat/internal/services"
	"github.com/kekishida/ai-chat/pkg/errors"
	"github.com/kekishida/ai-chat/pkg/logger"
	"github.com/kekishida/ai-chat/pkg/response"
)

// ChatHandler streams chat turns to clients over Server-Sent Events.
type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversationId" validate:"omitempty,uuid4"`
}

// POST /api/chat
//
// Errors in the synchronous phase (bad payload, unknown conversation) are
// plain JSON responses; once streaming starts, failures arrive as an SSE
// error event instead.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req chatRequest
	if !bindAndValidate(c, &req) {
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	events, err := h.chat.StreamTurn(requestContext(c), userID, req.ConversationID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, canFlush := c.Writer.(http.Flusher)
	clientGone := c.Request.Context().Done()

	// Drain every event even after the client disconnects: the generation
	// goroutine must finish persisting the assistant reply.
	disconnected := false
	for event := range events {
		if disconnected {
			continue
		}

		select {
		case <-clientGone:
			disconnected = true
			continue
		default:
		}

		frame, err := json.Marshal(event)
		if err != nil {
			logger.WithModule("chat").Error("marshal stream event", zap.Error(err))
			continue
		}

		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", frame); err != nil {
			disconnected = true
			continue
		}
		if canFlush {
			flusher.Flush()
		}
	}
}
