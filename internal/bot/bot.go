package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mailtriage/internal/model"
	"mailtriage/internal/repository"
	"mailtriage/internal/service"
)

const (
	cbCompletePrefix  = "complete:"
	cbDeletePrefix    = "delete:"
	cbConfirmPrefix   = "confirm:"
	cbCancelPrefix    = "cancel:"
	cbSummarizePrefix = "summarize:"
	cbSavePrefix      = "save:"
)

const (
	menuLabelInbox = "📥 Inbox"
	menuLabelTasks = "📋 Tasks"
	menuLabelToday = "⏳ Today"
	menuLabelHelp  = "ℹ️ Help"
)

// Bot is the Telegram surface over the mutation coordinator.
type Bot struct {
	api            *tgbotapi.BotAPI
	svc            *service.Service
	subscribers    *repository.SubscriberRepository
	reportInterval time.Duration

	// pending holds the last summary per chat until its tasks are saved.
	pending map[int64]model.EmailSummaryResult
	mu      sync.Mutex
}

// NewAPI authorizes the bot token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return api, nil
}

func New(api *tgbotapi.BotAPI, svc *service.Service, subscribers *repository.SubscriberRepository, reportInterval time.Duration) *Bot {
	return &Bot{
		api:            api,
		svc:            svc,
		subscribers:    subscribers,
		reportInterval: reportInterval,
		pending:        make(map[int64]model.EmailSummaryResult),
	}
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("[warn] handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("[warn] handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	ctx = WithChat(ctx, msg.Chat.ID)

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}
	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}
	return b.sendText(msg.Chat.ID, "I did not understand that. Try /inbox, /tasks or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "stop":
		return b.handleStop(ctx, msg)
	case "help":
		return b.sendText(chatID, helpText)
	case "inbox":
		return b.handleInbox(ctx, chatID)
	case "important":
		return b.handleImportant(ctx, chatID)
	case "email":
		return b.handleEmail(ctx, chatID, args)
	case "search":
		return b.handleSearch(ctx, chatID, args)
	case "summarize":
		return b.handleSummarize(ctx, chatID, args)
	case "tasks":
		return b.handleTasks(ctx, chatID)
	case "today":
		return b.handleToday(ctx, chatID)
	case "overdue":
		return b.handleOverdue(ctx, chatID)
	case "newtask":
		return b.handleNewTask(ctx, chatID, args)
	case "complete":
		return b.handleComplete(ctx, chatID, args)
	case "delete":
		return b.handleDelete(ctx, chatID, args)
	case "report":
		return b.handleReport(ctx, chatID)
	case "refresh":
		return b.handleRefresh(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelInbox:
		return true, b.handleInbox(ctx, msg.Chat.ID)
	case menuLabelTasks:
		return true, b.handleTasks(ctx, msg.Chat.ID)
	case menuLabelToday:
		return true, b.handleToday(ctx, msg.Chat.ID)
	case menuLabelHelp:
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("[warn] callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	ctx = WithChat(ctx, chatID)
	data := cb.Data
	log.Printf("[info] callback from %d: %s", cb.From.ID, data)

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		return b.completeTask(ctx, chatID, strings.TrimPrefix(data, cbCompletePrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, strings.TrimPrefix(data, cbDeletePrefix))
	case strings.HasPrefix(data, cbConfirmPrefix):
		return b.deleteTask(ctx, chatID, strings.TrimPrefix(data, cbConfirmPrefix))
	case strings.HasPrefix(data, cbCancelPrefix):
		return b.sendText(chatID, "↩️ Cancelled.")
	case strings.HasPrefix(data, cbSummarizePrefix):
		return b.handleSummarize(ctx, chatID, strings.TrimPrefix(data, cbSummarizePrefix))
	case strings.HasPrefix(data, cbSavePrefix):
		return b.saveSummaryTasks(ctx, chatID, strings.TrimPrefix(data, cbSavePrefix))
	default:
		return nil
	}
}

// SendDailyReports sends the digest to every subscribed chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	subs, err := b.subscribers.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	if err := b.svc.Refresh(ctx); err != nil {
		return err
	}
	text, err := b.svc.Digest(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(sub.ChatID, text); err != nil {
			log.Printf("[warn] send digest to %d: %v", sub.ChatID, err)
		}
	}
	log.Printf("[info] digest sent to %d chats", len(subs))
	return nil
}

func (b *Bot) setPending(chatID int64, result model.EmailSummaryResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[chatID] = result
}

// takePending removes and returns the pending summary of chatID for emailID.
func (b *Bot) takePending(chatID int64, emailID string) (model.EmailSummaryResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	result, ok := b.pending[chatID]
	if !ok || summaryEmailID(result) != emailID {
		return model.EmailSummaryResult{}, false
	}
	delete(b.pending, chatID)
	return result, true
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelInbox),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
