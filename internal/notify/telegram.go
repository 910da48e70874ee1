// Package notify sends best-effort staff notifications about new bookings.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"stationbook/internal/models"
)

// TelegramNotifier posts booking summaries to the configured staff chats.
// Delivery failures are logged per chat and the last one is returned so
// callers can count them; nothing here ever blocks a booking.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewTelegramNotifier creates the notifier. An empty token or chat list
// returns (nil, nil): the service treats a nil notifier as disabled.
func NewTelegramNotifier(token string, chatIDs []int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" || len(chatIDs) == 0 {
		logger.Info().Msg("Telegram notifications are not configured")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(chatIDs)).Msg("Telegram notifications enabled")
	return &TelegramNotifier{bot: bot, chatIDs: chatIDs, logger: logger}, nil
}

// BookingCreated sends a short summary of the new booking to each chat.
func (n *TelegramNotifier) BookingCreated(ctx context.Context, booking *models.Booking) error {
	text := fmt.Sprintf(
		"New booking %s\nStation: %s\nCustomer: %s\nDate: %s %s-%s\nPrice: %.2f",
		booking.BookingCode,
		booking.StationName,
		booking.CustomerName,
		booking.DateString(),
		booking.StartTime.Format(models.TimeFormat),
		booking.EndTime.Format(models.TimeFormat),
		booking.TotalPrice,
	)

	return n.SendText(ctx, text)
}

// SendText delivers a plain message to every staff chat.
func (n *TelegramNotifier) SendText(ctx context.Context, text string) error {
	var lastErr error
	for _, chatID := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send staff message")
			lastErr = err
		}
	}
	return lastErr
}
