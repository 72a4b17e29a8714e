package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Message roles accepted by the completion client.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role/content pair of conversation history.
type ChatMessage struct {
	Role    string
	Content string
}

// Config describes the upstream chat model connection.
type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	Region       string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// Enabled reports whether the required credentials are present.
func (c Config) Enabled() bool {
	return c.Model != "" && c.APIKey != ""
}

// TokenStream yields incremental completion text in strict arrival order.
// Recv returns io.EOF once the upstream stream completes.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// Client wraps the upstream language model behind streaming and blocking
// calls. The underlying model is initialised lazily on first use and shared
// by all subsequent calls.
type Client struct {
	cfg Config

	initOnce sync.Once
	runnable compose.Runnable[map[string]any, *schema.Message]
	initErr  error
}

// NewClient constructs a completion client. No connection is made until the
// first call.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) chain(ctx context.Context) (compose.Runnable[map[string]any, *schema.Message], error) {
	c.initOnce.Do(func() {
		if !c.cfg.Enabled() {
			c.initErr = errors.New("llm: api key and model must be configured")
			return
		}

		cmCfg := &ark.ChatModelConfig{
			BaseURL: c.cfg.BaseURL,
			Region:  c.cfg.Region,
			APIKey:  c.cfg.APIKey,
			Model:   c.cfg.Model,
		}
		if c.cfg.MaxTokens > 0 {
			maxTokens := c.cfg.MaxTokens
			cmCfg.MaxTokens = &maxTokens
		}
		if c.cfg.Temperature > 0 {
			temperature := float32(c.cfg.Temperature)
			cmCfg.Temperature = &temperature
		}

		chatModel, err := ark.NewChatModel(ctx, cmCfg)
		if err != nil {
			c.initErr = fmt.Errorf("llm: create chat model: %w", err)
			return
		}

		promptTemplate := prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.MessagesPlaceholder("history", true),
			schema.UserMessage("{query}"),
		)

		chain := compose.NewChain[map[string]any, *schema.Message]()
		chain.AppendChatTemplate(promptTemplate)
		chain.AppendChatModel(chatModel)

		runnable, err := chain.Compile(ctx)
		if err != nil {
			c.initErr = fmt.Errorf("llm: compile chat chain: %w", err)
			return
		}

		c.runnable = runnable
	})

	return c.runnable, c.initErr
}

// StreamChat opens a streaming completion over the supplied history. The
// final history entry must be the pending user message.
func (c *Client) StreamChat(ctx context.Context, history []ChatMessage) (TokenStream, error) {
	input, err := c.buildChainInput(history)
	if err != nil {
		return nil, err
	}

	runnable, err := c.chain(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := runnable.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("llm: stream completion: %w", err)
	}

	return &modelTokenStream{inner: stream}, nil
}

// StreamComplete streams a completion, invoking onToken for every text
// fragment in arrival order, and returns the accumulated full text.
func (c *Client) StreamComplete(ctx context.Context, history []ChatMessage, onToken func(token string)) (string, error) {
	stream, err := c.StreamChat(ctx, history)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		full.WriteString(token)
		if onToken != nil {
			onToken(token)
		}
	}

	return full.String(), nil
}

// Complete performs a blocking completion and returns the response text, or
// an empty string when the response carries no text content.
func (c *Client) Complete(ctx context.Context, history []ChatMessage) (string, error) {
	input, err := c.buildChainInput(history)
	if err != nil {
		return "", err
	}

	runnable, err := c.chain(ctx)
	if err != nil {
		return "", err
	}

	response, err := runnable.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("llm: invoke completion: %w", err)
	}
	if response == nil {
		return "", nil
	}

	return response.Content, nil
}

func (c *Client) buildChainInput(history []ChatMessage) (map[string]any, error) {
	if len(history) == 0 {
		return nil, errors.New("llm: history is empty")
	}

	last := history[len(history)-1]
	if last.Role != RoleUser {
		return nil, errors.New("llm: history must end with a user message")
	}

	prior := make([]*schema.Message, 0, len(history)-1)
	for _, msg := range history[:len(history)-1] {
		switch msg.Role {
		case RoleUser:
			prior = append(prior, schema.UserMessage(msg.Content))
		case RoleAssistant:
			prior = append(prior, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  c.cfg.SystemPrompt,
		"history": prior,
		"query":   last.Content,
	}, nil
}
