package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultPerplexityURL     = "https://api.perplexity.ai/chat/completions"
	defaultPerplexityTimeout = 120 * time.Second
)

// PerplexityConfig holds the settings for the research client.
type PerplexityConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// PerplexityClient calls the Perplexity chat completions API.
type PerplexityClient struct {
	cfg    PerplexityConfig
	client *http.Client
}

// NewPerplexity creates a research client. BaseURL and Timeout default to
// the public API endpoint and 120s when unset.
func NewPerplexity(cfg PerplexityConfig) *PerplexityClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPerplexityURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultPerplexityTimeout
	}
	return &PerplexityClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Query performs a single-turn completion and returns the answer text plus
// any citations the API attached.
func (c *PerplexityClient) Query(ctx context.Context, systemPrompt, userPrompt string) (Answer, error) {
	if c.cfg.APIKey == "" {
		return Answer{}, &APIError{Provider: "perplexity", Message: "API key not configured"}
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Answer{}, &APIError{Provider: "perplexity", Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return Answer{}, &APIError{Provider: "perplexity", Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Answer{}, &APIError{Provider: "perplexity", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, &APIError{Provider: "perplexity", Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Answer{}, &APIError{
			Provider: "perplexity",
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("unexpected status: %s", string(respBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Answer{}, &APIError{Provider: "perplexity", Message: "invalid JSON response", Err: err}
	}

	if len(parsed.Choices) == 0 {
		return Answer{}, &APIError{Provider: "perplexity", Message: "response has no choices"}
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return Answer{}, &APIError{Provider: "perplexity", Message: "response message is empty"}
	}

	return Answer{Content: content, Citations: parsed.Citations}, nil
}
