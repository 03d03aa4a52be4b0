// Package chat proxies the companion assistant to an OpenAI-compatible chat
// completions API, with per-user request limits enforced in Redis.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/smardesk/smardesk-backend/pkg/metrics"
)

// DefaultModel is the upstream model used for both request kinds.
const DefaultModel = "gpt-4o-mini"

const maxUpstreamRetries = 3

// Client calls the upstream chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient creates an upstream client. baseURL is the API root (e.g.
// "https://api.openai.com/v1"); model defaults to DefaultModel.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one user message with the kind's system prompt and returns
// the assistant reply. Transient upstream failures (network errors, 429,
// 5xx) are retried with exponential backoff; other errors are permanent.
func (c *Client) Complete(ctx context.Context, kind, userMessage string) (string, error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt(kind)},
			{Role: "user", Content: userMessage},
		},
		Temperature: temperatureFor(kind),
		MaxTokens:   maxTokensFor(kind),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	var reply string
	operation := func() error {
		reply, err = c.doRequest(ctx, body)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxUpstreamRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to build upstream request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logrus.Warnf("chat upstream request failed: %v", err)
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ChatUpstreamDuration.Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		logrus.Warnf("chat upstream returned %d, will retry", resp.StatusCode)
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", backoff.Permanent(fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, data))
	}

	var parsed completionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to parse upstream response: %w", err))
	}
	if parsed.Error != nil {
		return "", backoff.Permanent(fmt.Errorf("upstream error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("upstream returned no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}
