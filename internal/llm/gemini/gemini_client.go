// Package gemini implements port.LLMClient with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"freightx/internal/config"
	"freightx/internal/llm"
)

const defaultModel = "gemini-2.0-flash"

// Client implements port.LLMClient using the Gemini API backend.
type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

// NewClient creates a Gemini client from a provider config. BaseURL, when
// set, replaces the public endpoint.
func NewClient(ctx context.Context, cfg *config.LLMProviderConfig) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	maxTokens := int32(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &Client{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 {
		return "", llm.Unavailable("gemini", 0, fmt.Errorf("no candidates in response"))
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return "", llm.Unavailable("gemini", 0, fmt.Errorf("output truncated (finish_reason: MAX_TOKENS)"))
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", llm.Unavailable("gemini", 0, fmt.Errorf("no parts in candidate content"))
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func classify(err error) error {
	code, msg, ok := apiErrorDetails(err)
	if !ok {
		return llm.Unavailable("gemini", 0, err)
	}
	if code == http.StatusTooManyRequests {
		return llm.NewRateLimitError("gemini", err, llm.ParseRetryAfterMessage(msg))
	}
	return llm.Unavailable("gemini", code, err)
}

func apiErrorDetails(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
