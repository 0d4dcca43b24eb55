package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
)

// Telegram sends the message to one chat through the Bot API.
type Telegram struct {
	bot    *bot.Bot
	token  string
	chatID string
}

func NewTelegram(token, chatID string, timeout time.Duration, opts ...bot.Option) (*Telegram, error) {
	opts = append([]bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(timeout, &http.Client{Timeout: timeout}),
	}, opts...)

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", redact(err, token))
	}

	return &Telegram{
		bot:    b,
		token:  token,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Notify(ctx context.Context, report *domain.RunReport) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   Message(report),
	})
	if err != nil {
		// request errors carry the url, which carries the bot token
		return fmt.Errorf("failed to send telegram message: %w", redact(err, t.token))
	}

	return nil
}
