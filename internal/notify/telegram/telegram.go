// Package telegram delivers alert summaries via the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
)

// DefaultBaseURL is the Telegram Bot API base URL.
const DefaultBaseURL = "https://api.telegram.org"

// ChannelConfig holds configuration for the Telegram channel.
type ChannelConfig struct {
	// BotToken and ChatID identify the bot and the target chat (both
	// required).
	BotToken string
	ChatID   string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for channel operations.
	Logger zerolog.Logger
}

// Channel sends summaries as plain text Telegram messages.
type Channel struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewChannel creates a Telegram channel.
func NewChannel(cfg ChannelConfig) *Channel {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("telegram"))
	}

	return &Channel{
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Type returns the channel identifier.
func (c *Channel) Type() string {
	return "telegram"
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send delivers the summary as one sendMessage call. Non-2xx responses are
// failures.
func (c *Channel) Send(ctx context.Context, s notify.Summary) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID: c.chatID,
		Text:   s.PlainText(),
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// Ensure Channel implements notify.Channel.
var _ notify.Channel = (*Channel)(nil)
