// Package gemini answers chat messages with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

var ErrEmptyCompletion = errors.New("gemini: empty completion")

type Client struct {
	client  *genai.Client
	modelID string
}

// NewClient creates a Gemini client. Extra options are passed to genai.NewClient.
func NewClient(ctx context.Context, apiKey, modelID string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{client: client, modelID: modelID}, nil
}

// Complete sends userMessage with systemPrompt as the system instruction and
// returns the trimmed text of the first candidate.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	if strings.TrimSpace(systemPrompt) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	reply, err := responseText(resp)
	if err != nil {
		return "", err
	}

	if resp.UsageMetadata != nil {
		log.Debug().
			Str("model", c.modelID).
			Int32("total_tokens", resp.UsageMetadata.TotalTokenCount).
			Msg("Received Gemini completion")
	}

	return reply, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	reply := strings.TrimSpace(text.String())
	if reply == "" {
		return "", ErrEmptyCompletion
	}
	return reply, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
