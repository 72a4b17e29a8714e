package app

import "github.com/kekishida/ai-chat/internal/llm"

// CompletionClientConfig converts AIConfig into the completion client parameters.
func (c AIConfig) CompletionClientConfig() llm.Config {
	return llm.Config{
		APIKey:       c.APIKey,
		Model:        c.Model,
		BaseURL:      c.BaseURL,
		Region:       c.Region,
		MaxTokens:    c.MaxTokens,
		Temperature:  c.Temperature,
		SystemPrompt: c.SystemPrompt,
	}
}
