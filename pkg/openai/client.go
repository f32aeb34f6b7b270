// Package openai wraps the OpenAI chat completions API behind a small
// interface with an ordered model fallback chain.
package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// defaultModels are tried in order until one returns text.
var defaultModels = []string{"gpt-4o-mini", "o4-mini", "gpt-4o", "gpt-3.5-turbo"}

// Client performs chat completions.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single system+user completion.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Option configures the client.
type Option func(*chatClient)

// WithModels overrides the fallback model chain.
func WithModels(models []string) Option {
	return func(c *chatClient) {
		if len(models) > 0 {
			c.models = models
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *chatClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *chatClient) {
		c.http = hc
	}
}

type chatClient struct {
	apiKey  string
	baseURL string
	models  []string
	http    *http.Client
	api     *gopenai.Client
}

// NewClient creates an OpenAI chat client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &chatClient{
		apiKey: apiKey,
		models: defaultModels,
	}
	for _, o := range opts {
		o(c)
	}
	cfg := gopenai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.http != nil {
		cfg.HTTPClient = c.http
	}
	c.api = gopenai.NewClientWithConfig(cfg)
	return c
}

// Complete tries each model in order and returns the first non-empty
// completion. An error is returned only when every model fails.
func (c *chatClient) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for _, model := range c.models {
		resp, err := c.api.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
			Model: model,
			Messages: []gopenai.ChatCompletionMessage{
				{Role: gopenai.ChatMessageRoleSystem, Content: req.System},
				{Role: gopenai.ChatMessageRoleUser, Content: req.User},
			},
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			lastErr = err
			zap.L().Debug("openai: model failed, trying next",
				zap.String("model", model), zap.Error(err))
			continue
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", eris.Wrap(lastErr, "openai: all models failed")
	}
	return "", eris.New("openai: no model produced text")
}
