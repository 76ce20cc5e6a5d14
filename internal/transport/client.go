// Package transport issues generation requests to a decompose endpoint over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/generation"
)

const maxResponseBytes = 1 << 20

type Client struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

type request struct {
	Model string `json:"model"`
	Query string `json:"query"`
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Generate posts the goal and decodes the service envelope. Network failures
// and non-2xx statuses come back as *generation.TransportError.
func (c *Client) Generate(ctx context.Context, modelID, query string) (generation.RawResponse, error) {
	var raw generation.RawResponse

	body, err := json.Marshal(request{Model: modelID, Query: query})
	if err != nil {
		return raw, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return raw, &generation.TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return raw, &generation.TransportError{Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return raw, &generation.TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("generation response",
		zap.String("model", modelID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &generation.TransportError{
			Err: fmt.Errorf("generation service returned %d: %s", resp.StatusCode, snippet(respBody)),
		}
	}

	if err := json.Unmarshal(respBody, &raw); err != nil {
		return generation.RawResponse{}, fmt.Errorf("%w: %v", generation.ErrMalformedResponse, err)
	}
	return raw, nil
}

func snippet(b []byte) string {
	const limit = 200
	b = bytes.TrimSpace(b)
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
