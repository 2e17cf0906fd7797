// Package notify delivers outbound status notifications. Delivery is fire
// and forget: a failed send is logged and never affects conversation state.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobagent/internal/domain"
)

// Notifier is the outbound notification contract.
type Notifier interface {
	ApplicationSubmitted(app *domain.JobApplication)
	ContactResponded(contact *domain.NetworkingContact)
}

// TelegramNotifier sends updates to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier connects the bot. Token validation happens here so a
// misconfigured token fails at startup, not at first send.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

var _ Notifier = (*TelegramNotifier)(nil)

// ApplicationSubmitted announces a submitted application.
func (t *TelegramNotifier) ApplicationSubmitted(app *domain.JobApplication) {
	t.send(fmt.Sprintf(
		"✅ <b>Application submitted</b>\n%s at %s\n📍 %s\n🔗 <a href=\"%s\">View posting</a>",
		app.JobTitle, app.Company, app.Location, app.JobURL))
}

// ContactResponded announces a networking reply.
func (t *TelegramNotifier) ContactResponded(contact *domain.NetworkingContact) {
	t.send(fmt.Sprintf(
		"💬 <b>%s responded</b> (%s at %s)\n%s",
		contact.Name, contact.Title, contact.Company, contact.ResponseText))
}

func (t *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("telegram notification failed", "error", err)
	}
}

// NopNotifier is used when no notification channel is configured.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) ApplicationSubmitted(*domain.JobApplication) {}
func (NopNotifier) ContactResponded(*domain.NetworkingContact)  {}
