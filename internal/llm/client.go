// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
)

var ErrMissingAPIKey = errors.New("LLM_API_KEY environment variable not set")

type Config struct {
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	// RetryDelay is the first backoff step; it doubles on every retry.
	RetryDelay time.Duration
}

// Client handles chat completions
type Client struct {
	apiKey      string
	baseURL     string
	temperature float64
	retryDelay  time.Duration
	client      *http.Client
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultInitialDelay
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		retryDelay:  delay,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete sends a system and a user message and returns the first choice's
// text. Rate limits and 5xx responses are retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, model, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retry, err := c.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retry {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries (%d) exceeded: %w", defaultMaxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("HTTP request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			err = fmt.Errorf("LLM API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		} else {
			err = fmt.Errorf("LLM API error (%d): %s", resp.StatusCode, string(respBody))
		}
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, err
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", false, fmt.Errorf("no choices returned")
	}
	return chat.Choices[0].Message.Content, false, nil
}
