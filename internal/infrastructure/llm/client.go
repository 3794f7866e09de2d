package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ainews/internal/config"
	"ainews/internal/ports"
)

// Client implements ports.ChatModel against any OpenAI-compatible
// chat-completions endpoint (Gemini's compatibility layer by default).
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatModel = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete posts one system+user exchange and returns the model's reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c == nil || c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return parsed.Choices[0].Message.Content, nil
}
