package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/GeoNet/ews/internal/ews"
)

type sender interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends alerts to a Telegram chat.
type Telegram struct {
	bot        sender
	chatID     int64
	maxRetries int
	retryDelay time.Duration
}

// NewTelegram returns a Telegram notifier for the bot token and chat.
// Non positive retries or delay use 3 and 1s.
func NewTelegram(token, chatID string, maxRetries int, retryDelay time.Duration) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newTelegram(bot, id, maxRetries, retryDelay), nil
}

func newTelegram(bot sender, chatID int64, maxRetries int, retryDelay time.Duration) *Telegram {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Telegram{
		bot:        bot,
		chatID:     chatID,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Notify sends a, backing off linearly between attempts.
func (t *Telegram) Notify(a Alert) error {
	msg := tgbotapi.NewMessage(t.chatID, format(a))
	msg.ParseMode = "MarkdownV2"

	var lastErr error

	for i := 0; i < t.maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err

		if i < t.maxRetries-1 {
			time.Sleep(t.retryDelay * time.Duration(i+1))
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", t.maxRetries, lastErr)
}

func format(a Alert) string {
	var b strings.Builder

	switch a.Transition.To {
	case ews.Alarmed:
		b.WriteString("🚨 *EARTHQUAKE ALARM*\n\n")
	default:
		b.WriteString("⚠️ *Onset detected*\n\n")
	}

	fmt.Fprintf(&b, "📡 Stream: `%s`\n", escape(a.Source))
	fmt.Fprintf(&b, "📅 Time: %s\n", escape(a.At.UTC().Format("2006-01-02 15:04:05.000")))

	switch a.Transition.To {
	case ews.Alarmed:
		fmt.Fprintf(&b, "📏 PGD: *%s*\n", escape(fmt.Sprintf("%.3e m", a.Transition.PGD)))
		fmt.Fprintf(&b, "🏢 Drift exceedance: *%s* \\(limit %s\\)\n",
			escape(fmt.Sprintf("%.1f%%", a.Report.ExceedanceProbability)),
			escape(fmt.Sprintf("%.1f%%", a.Report.ProbabilityThreshold)))
	default:
		fmt.Fprintf(&b, "📈 STA/LTA: %s\n", escape(fmt.Sprintf("%.2f", a.Transition.Ratio)))
	}

	return b.String()
}

// escape escapes the Telegram MarkdownV2 reserved characters.
func escape(s string) string {
	var b strings.Builder

	for _, c := range s {
		switch c {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}

	return b.String()
}
