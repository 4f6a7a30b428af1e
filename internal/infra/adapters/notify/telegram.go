// Package notify delivers operational payment alerts. The Telegram
// implementation posts to an ops channel; dev mode uses the noop.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"academy-payments/internal/domain/ports/adapter"
	"academy-payments/internal/infra/metrics"
)

var _ adapter.OpsNotifier = (*TelegramNotifier)(nil)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyPayment(ctx context.Context, kind, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("[payments/%s] %s", kind, text))
	if _, err := n.bot.Send(msg); err != nil {
		metrics.OpsAlertTotal.WithLabelValues(kind, "error").Inc()
		return err
	}
	metrics.OpsAlertTotal.WithLabelValues(kind, "sent").Inc()
	return nil
}
