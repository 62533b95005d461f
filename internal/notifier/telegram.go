package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phuslu/log"

	"CommodityTracker/internal/collector"
)

// pollTimeout bounds Bot API calls; it must exceed the long-poll timeout.
const pollTimeout = 60 * time.Second

// Notifier delivers text and chart reports.
type Notifier interface {
	Send(text string) error
	SendPhoto(name string, img []byte, caption string) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects to the Bot API with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id: %w", err)
	}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, collector.NewHTTPClient(proxyURL, pollTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	log.Info().Str("bot", api.Self.UserName).Msg("telegram bot connected")
	return &TelegramNotifier{api: api, chatID: id}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendPhoto sends a PNG with an HTML caption.
func (t *TelegramNotifier) SendPhoto(name string, img []byte, caption string) error {
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{Name: name, Bytes: img})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// retryBackoff is the first retry delay; it doubles on every attempt.
var retryBackoff = time.Second

// SendWithRetry sends a message with exponential backoff retry.
func SendWithRetry(ctx context.Context, n Notifier, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.Send(text); err != nil {
			lastErr = err
			backoff := retryBackoff * time.Duration(1<<uint(i))
			log.Warn().Err(err).Int("attempt", i+1).Int("of", maxRetries+1).Dur("retry_in", backoff).Msg("telegram send failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// LogNotifier writes reports to the log when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Send(text string) error {
	log.Info().Str("text", text).Msg("report")
	return nil
}

func (LogNotifier) SendPhoto(name string, img []byte, caption string) error {
	log.Info().Str("name", name).Int("bytes", len(img)).Str("caption", caption).Msg("chart")
	return nil
}
