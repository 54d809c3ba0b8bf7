// Package openai implements port.LLMClient for OpenAI-compatible chat APIs,
// including Groq's.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"freightx/internal/config"
	"freightx/internal/llm"
)

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Client implements port.LLMClient on top of go-openai.
type Client struct {
	client      *goopenai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
}

// NewClient creates a chat client from a provider config. Provider "groq"
// targets GroqBaseURL unless BaseURL overrides it.
func NewClient(cfg *config.LLMProviderConfig) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}

	baseURL := cfg.BaseURL
	model := cfg.DefaultModel
	if provider == "groq" {
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		if model == "" {
			model = defaultGroqModel
		}
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	// go-openai drops a zero temperature from the request, so the provider
	// default would apply instead.
	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &Client{
		client:      goopenai.NewClientWithConfig(clientCfg),
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.Unavailable(c.provider, 0, fmt.Errorf("empty response from API"))
	}
	if resp.Choices[0].FinishReason == goopenai.FinishReasonLength {
		return "", llm.Unavailable(c.provider, 0, fmt.Errorf("output truncated (finish_reason: length)"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || isRateLimitCode(apiErr.Code) {
			return llm.NewRateLimitError(c.provider, err, llm.ParseRetryAfterMessage(apiErr.Message))
		}
		return llm.Unavailable(c.provider, apiErr.HTTPStatusCode, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return llm.NewRateLimitError(c.provider, err, llm.ParseRetryAfterMessage(err.Error()))
		}
		return llm.Unavailable(c.provider, reqErr.HTTPStatusCode, err)
	}

	return llm.Unavailable(c.provider, 0, err)
}

func isRateLimitCode(code any) bool {
	s, ok := code.(string)
	return ok && s == "rate_limit_exceeded"
}
