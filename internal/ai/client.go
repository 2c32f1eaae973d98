package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/tz"
)

var ErrNotConfigured = errors.New("ai: api key is not configured")

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	zone    *tz.Zone
	client  *http.Client
}

func New(cfg config.AIConfig, zone *tz.Zone) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		zone:    zone,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func (c *Client) chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, data)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// ExtractTasks asks the model for a JSON list of nested task drafts. A reply
// that is not a JSON list yields no drafts.
func (c *Client) ExtractTasks(ctx context.Context, transcript string) ([]model.TaskDraft, error) {
	today := c.zone.LocalDate(c.zone.NowUTC())
	reply, err := c.chat(ctx, extractSystem, fmt.Sprintf(extractPrompt, today, transcript), 0.1, 8192)
	if err != nil {
		return nil, err
	}
	return ParseDrafts(reply), nil
}

// Summarize returns a prose summary of the transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	return c.chat(ctx, summarySystem, fmt.Sprintf(summaryPrompt, transcript), 0.3, 2048)
}

// ParseDrafts decodes a model reply, tolerating a surrounding markdown fence.
func ParseDrafts(reply string) []model.TaskDraft {
	text := StripFence(reply)
	if !strings.HasPrefix(text, "[") {
		return []model.TaskDraft{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return []model.TaskDraft{}
	}
	drafts := make([]model.TaskDraft, 0, len(items))
	for _, item := range items {
		var d model.TaskDraft
		if len(item) == 0 || item[0] != '{' || json.Unmarshal(item, &d) != nil {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// StripFence removes a ``` or ```json fence around the reply.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
