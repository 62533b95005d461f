package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phuslu/log"
)

// Reply is the answer to a bot command. Image, when set, is sent as a
// photo after the text.
type Reply struct {
	Text      string
	Image     []byte
	ImageName string
}

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) Reply

// StartPolling begins long-polling for Telegram commands from the configured
// chat. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if update.Message.Chat.ID != t.chatID {
				log.Warn().Int64("chat", update.Message.Chat.ID).Msg("ignoring command from unknown chat")
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			log.Info().Str("command", text).Msg("received command")
			t.deliver(handler(ctx, text))
		}
	}
}

func (t *TelegramNotifier) deliver(r Reply) {
	if r.Text != "" {
		if err := t.Send(r.Text); err != nil {
			log.Error().Err(err).Msg("send reply")
		}
	}
	if len(r.Image) > 0 {
		if err := t.SendPhoto(r.ImageName, r.Image, ""); err != nil {
			log.Error().Err(err).Msg("send chart")
		}
	}
}
