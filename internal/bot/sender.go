package bot

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two outbound Telegram messages to avoid
// 429 Too Many Requests (~30 msgs/min per chat).
const sendInterval = time.Second

// telegramAPI is the slice of *tgbotapi.BotAPI the sender needs.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender pushes messages to Telegram, fire-and-forget, with a minimum spacing
// between sends. It is the NotifySink the trackers write into.
type Sender struct {
	api telegramAPI

	mu       sync.Mutex
	lastSend time.Time
}

func NewSender(api telegramAPI) *Sender {
	return &Sender{api: api}
}

// Notify sends plain text. Team names come from the provider, so score updates
// stay out of Markdown mode entirely rather than being escaped.
func (s *Sender) Notify(chatID int64, text string) {
	s.send(tgbotapi.NewMessage(chatID, text))
}

// SendText sends plain text to a chat.
func (s *Sender) SendText(chatID int64, text string) {
	s.send(tgbotapi.NewMessage(chatID, text))
}

// SendMarkdown sends a Markdown-formatted message (static texts only).
func (s *Sender) SendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	s.send(msg)
}

// Typing shows the "typing..." indicator while a slow operation runs.
func (s *Sender) Typing(chatID int64) {
	if _, err := s.api.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.Debug("telegram: chat action failed", "chat_id", chatID, "error", err)
	}
}

func (s *Sender) send(msg tgbotapi.MessageConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := sendInterval - time.Since(s.lastSend); wait > 0 {
		time.Sleep(wait)
	}
	s.lastSend = time.Now()

	if _, err := s.api.Send(msg); err != nil {
		slog.Warn("telegram: send failed",
			"chat_id", msg.ChatID, "error", err, "preview", preview(msg.Text))
	}
}

func preview(text string) string {
	if len(text) <= 50 {
		return text
	}
	return text[:50] + "..."
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
