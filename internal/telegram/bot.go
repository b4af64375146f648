package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Bot is a minimal Bot API client.
type Bot struct {
	token  string
	apiURL string
	client *http.Client
}

// NewBot returns a client for the bot with the given token. An empty apiURL
// uses DefaultAPIURL.
func NewBot(token, apiURL string) *Bot {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Bot{
		token:  token,
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// SendMessage sends a plain-text message to chatID. For private chats the
// chat id equals the user's Telegram id.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("telegram marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", b.apiURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		// *url.Error embeds the URL, which carries the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram read body: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("telegram unmarshal (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
	}

	slog.Debug("telegram message sent", "chat_id", chatID)
	return nil
}
