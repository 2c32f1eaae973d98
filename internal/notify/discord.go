package notify

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
)

var ErrNoBotToken = errors.New("notify: discord bot token is not configured")

// DiscordSender posts messages through the Discord REST API as a bot.
type DiscordSender struct {
	apiBase string
	token   string
	client  *http.Client
}

func NewDiscordSender(cfg config.DiscordConfig) *DiscordSender {
	return &DiscordSender{
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		token:   cfg.BotToken,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *DiscordSender) Send(ctx context.Context, channelID string, embed Embed) error {
	if s.token == "" {
		return ErrNoBotToken
	}

	payload, err := json.Marshal(map[string]any{"embeds": []Embed{embed}})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", s.apiBase, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord status %d: %s", resp.StatusCode, data)
	}
	return nil
}

// LogSender writes the message to a writer instead of posting it. Used by
// dry runs.
type LogSender struct {
	W io.Writer
}

func (s LogSender) Send(_ context.Context, channelID string, embed Embed) error {
	data, err := json.MarshalIndent(embed, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.W, "channel %s\n%s\n", channelID, data)
	return err
}
