package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kekishida/ai-chat/internal/llm"
	"github.com/kekishida/ai-chat/internal/models"
	apperrors "github.com/kekishida/ai-chat/pkg/errors"
	"github.com/kekishida/ai-chat/pkg/logger"
	"github.com/kekishida/ai-chat/pkg/metrics"
)

const maxTitleLength = 200

// Stream event types emitted during a chat turn.
const (
	StreamEventToken = "token"
	StreamEventDone  = "done"
	StreamEventError = "error"
)

// StreamEvent is one frame of a streamed chat turn.
type StreamEvent struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Completer produces streaming completions over conversation history.
type Completer interface {
	StreamChat(ctx context.Context, history []llm.ChatMessage) (llm.TokenStream, error)
}

// ChatService orchestrates a chat turn: persisting the user message,
// streaming the model response, and persisting the assistant reply.
type ChatService struct {
	conversations *ConversationService
	completer     Completer
}

// NewChatService constructs a ChatService instance.
func NewChatService(conversations *ConversationService, completer Completer) (*ChatService, error) {
	if conversations == nil {
		return nil, errors.New("chat service: conversation service is required")
	}
	if completer == nil {
		return nil, errors.New("chat service: completer is required")
	}
	return &ChatService{
		conversations: conversations,
		completer:     completer,
	}, nil
}

// StreamTurn runs one chat turn for the user. The synchronous phase resolves
// the conversation and persists the user message so failures surface as plain
// errors; after it returns, events flow on the channel until a terminal done
// or error frame, and the channel closes.
//
// The streaming phase detaches from the caller's cancellation: once the user
// message is stored the turn runs to completion even if the client goes away,
// so the assistant reply is never lost mid-write.
func (s *ChatService) StreamTurn(ctx context.Context, userID, conversationID, content string) (<-chan StreamEvent, error) {
	ctx = ensureContext(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("message is required")
	}

	var conversation *models.Conversation
	var err error
	if conversationID == "" {
		conversation, err = s.conversations.Create(ctx, userID, DeriveTitle(content))
	} else {
		conversation, err = s.conversations.Get(ctx, userID, conversationID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.conversations.AppendMessage(ctx, conversation.ID, models.RoleUser, content); err != nil {
		return nil, err
	}

	stored, err := s.conversations.Messages(ctx, userID, conversation.ID)
	if err != nil {
		return nil, err
	}

	history := make([]llm.ChatMessage, 0, len(stored))
	for _, msg := range stored {
		history = append(history, llm.ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	events := make(chan StreamEvent)
	go s.streamTurn(context.WithoutCancel(ctx), events, conversation.ID, history)

	return events, nil
}

func (s *ChatService) streamTurn(ctx context.Context, events chan<- StreamEvent, conversationID string, history []llm.ChatMessage) {
	defer close(events)

	log := logger.WithModule("chat").With(zap.String("conversation_id", conversationID))

	stream, err := s.completer.StreamChat(ctx, history)
	if err != nil {
		log.Error("open completion stream", zap.Error(err))
		metrics.ChatTurns.WithLabelValues("error").Inc()
		events <- StreamEvent{Type: StreamEventError, Error: "Failed to generate response"}
		return
	}
	defer stream.Close()

	var full strings.Builder
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("completion stream", zap.Error(err))
			metrics.ChatTurns.WithLabelValues("error").Inc()
			events <- StreamEvent{Type: StreamEventError, Error: "Failed to generate response"}
			return
		}

		full.WriteString(token)
		metrics.StreamedTokens.Inc()
		events <- StreamEvent{Type: StreamEventToken, Content: token}
	}

	message, err := s.conversations.AppendMessage(ctx, conversationID, models.RoleAssistant, full.String())
	if err != nil {
		log.Error("persist assistant message", zap.Error(err))
		metrics.ChatTurns.WithLabelValues("error").Inc()
		events <- StreamEvent{Type: StreamEventError, Error: "Failed to generate response"}
		return
	}

	if err := s.conversations.Touch(ctx, conversationID); err != nil {
		log.Warn("touch conversation", zap.Error(err))
	}

	metrics.ChatTurns.WithLabelValues("success").Inc()
	events <- StreamEvent{
		Type:           StreamEventDone,
		ConversationID: conversationID,
		MessageID:      message.ID,
	}
}

// DeriveTitle builds a conversation title from the opening message:
// whitespace collapsed to single spaces, truncated to 200 characters.
func DeriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(title) <= maxTitleLength {
		return title
	}

	runes := []rune(title)
	return string(runes[:maxTitleLength])
}
