package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("openai: empty completion")

// Complete sends one system prompt and one user message and returns the trimmed reply.
// An empty systemPrompt falls back to SystemPrompt.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = SystemPrompt
	}

	chatCompletion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userMessage),
			},
			Model: openai.ChatModel(c.model),
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(chatCompletion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	reply := strings.TrimSpace(chatCompletion.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	log.Debug().
		Str("model", c.model).
		Int64("total_tokens", chatCompletion.Usage.TotalTokens).
		Str("finish_reason", string(chatCompletion.Choices[0].FinishReason)).
		Msg("Received chat completion")

	return reply, nil
}
