package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"github.com/shanehull/inforanger/internal/types"
)

const (
	defaultTelegramAPI     = "https://api.telegram.org"
	defaultTelegramTimeout = 30 * time.Second
	linkButtonLabel        = "View on Perplexity"
)

// TelegramConfig holds bot API settings.
type TelegramConfig struct {
	BotToken  string
	ChannelID string
	BaseURL   string
	Timeout   time.Duration
}

// TelegramSender posts messages to a Telegram channel via the bot API.
type TelegramSender struct {
	cfg    TelegramConfig
	client *http.Client
}

// NewTelegramSender creates a sender. BaseURL and Timeout default to the
// public bot API and 30s when unset.
func NewTelegramSender(cfg TelegramConfig) *TelegramSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTelegramAPI
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTelegramTimeout
	}
	return &TelegramSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type inlineButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Deliver sends one chunk, attaching the link button only when the chunk
// carries the link affordance.
func (s *TelegramSender) Deliver(ctx context.Context, chunk types.MessageChunk, link string) error {
	buttonLink := ""
	if chunk.HasLink {
		buttonLink = link
	}
	return s.send(ctx, chunk.Text, buttonLink)
}

// Notify sends a plain notice with no button.
func (s *TelegramSender) Notify(ctx context.Context, text string) error {
	return s.send(ctx, text, "")
}

func (s *TelegramSender) send(ctx context.Context, text, link string) error {
	if s.cfg.BotToken == "" || s.cfg.ChannelID == "" {
		return &DeliveryError{Channel: "telegram", Message: "bot token or channel ID not configured"}
	}

	payload := sendMessageRequest{
		ChatID:    s.cfg.ChannelID,
		Text:      text,
		ParseMode: "html",
	}
	if link != "" {
		payload.ReplyMarkup = &inlineKeyboard{
			InlineKeyboard: [][]inlineButton{{{Text: linkButtonLabel, URL: link}}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Channel: "telegram", Message: "failed to encode request", Err: err}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.cfg.BaseURL, s.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Channel: "telegram", Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &DeliveryError{Channel: "telegram", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DeliveryError{Channel: "telegram", Message: "failed to read response body", Err: err}
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return &DeliveryError{
			Channel: "telegram",
			Message: fmt.Sprintf("invalid JSON response (status %d)", resp.StatusCode),
			Err:     err,
		}
	}

	if !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = fmt.Sprintf("unknown error (status %d)", resp.StatusCode)
		}
		return &DeliveryError{Channel: "telegram", Message: desc}
	}

	log.Debug().Int("chars", len(text)).Bool("button", link != "").Msg("Telegram message sent")
	return nil
}
