package openai

import (
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config selects the account, model and endpoint used for completions.
type Config struct {
	APIKey string
	// Model defaults to gpt-4o.
	Model string
	// BaseURL overrides the API endpoint, e.g. for an OpenAI-compatible proxy.
	BaseURL string
}

// Client wraps the OpenAI client and answers free-form chat messages.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI client wrapper with the specified configuration and HTTP client.
// Requests are never retried; the caller's context bounds each call.
func NewClient(cfg Config, httpClient http.Client) Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	client := openai.NewClient(opts...)

	return Client{
		client: &client,
		model:  model,
	}
}

// Model returns the chat model used for completions.
func (c *Client) Model() string {
	return c.model
}
