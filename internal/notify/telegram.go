// Package notify sends outbound messages to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/time/rate"
)

// Telegram sends messages to a single configured chat. Sends are
// synchronous with a bounded timeout; delivery failures are returned to the
// caller, which logs and moves on.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegram authenticates the bot token and binds the target chat.
func NewTelegram(token string, chatID int64, timeout time.Duration) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Telegram{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}, nil
}

// Send delivers a plain-text message.
func (t *Telegram) Send(ctx context.Context, text string) error {
	return t.send(ctx, text, "")
}

// SendPre delivers text wrapped in a preformatted block, preserving the
// fixed-width alignment of the daily summary.
func (t *Telegram) SendPre(ctx context.Context, text string) error {
	return t.send(ctx, "<pre>\n"+text+"\n</pre>", tgbotapi.ModeHTML)
}

func (t *Telegram) send(ctx context.Context, text, parseMode string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = parseMode
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
