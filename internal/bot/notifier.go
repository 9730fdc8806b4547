package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mailtriage/internal/service"
	"mailtriage/internal/store"
)

type chatKey struct{}

// WithChat marks ctx as belonging to a Telegram chat.
func WithChat(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatKey{}, chatID)
}

func chatFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(chatKey{}).(int64)
	return id, ok
}

// ChatNotifier delivers service notifications to the chat found in the
// context and logs the rest.
type ChatNotifier struct {
	api      *tgbotapi.BotAPI
	fallback service.Notifier
}

func NewChatNotifier(api *tgbotapi.BotAPI) *ChatNotifier {
	return &ChatNotifier{api: api, fallback: service.LogNotifier{}}
}

func (n *ChatNotifier) Notify(ctx context.Context, note service.Notification) {
	n.fallback.Notify(ctx, note)
	chatID, ok := chatFrom(ctx)
	if !ok {
		return
	}
	msg := tgbotapi.NewMessage(chatID, notificationText(note))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("[warn] send notification to %d: %v", chatID, err)
	}
}

func notificationText(note service.Notification) string {
	if note.Level != service.LevelError {
		return "✅ " + escape(note.Message)
	}
	text := "⚠️ " + escape(note.Message)
	switch store.KindOf(note.Err) {
	case store.KindNotFound:
		text += ": not found"
	case store.KindValidation:
		text += fmt.Sprintf(": %s", escape(cause(note.Err)))
	}
	return text
}

// cause strips the operation prefix from a store error.
func cause(err error) string {
	var se *store.Error
	if errors.As(err, &se) && se.Err != nil {
		return se.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
