package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mailtriage/internal/derive"
	"mailtriage/internal/model"
	"mailtriage/internal/service"
	"mailtriage/internal/store"
)

const listLimit = 10

const helpText = `<b>mailtriage</b> keeps your inbox and the tasks it creates in one place.

<b>Mail</b>
/inbox - latest emails
/important - important emails
/email &lt;id&gt; - open an email (marks it read)
/search &lt;text&gt; - search subject, body and sender
/summarize &lt;id&gt; - summary, suggested tasks and meetings

<b>Tasks</b>
/tasks - open tasks with quick actions
/today - tasks due today
/overdue - overdue tasks
/newtask title | priority | YYYY-MM-DD | email id
/complete &lt;id&gt; - mark a task done
/delete &lt;id&gt; - remove a task

<b>Other</b>
/report - digest now
/refresh - reload data
/start - subscribe to digests
/stop - unsubscribe`

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.subscribers.Upsert(ctx, msg.Chat.ID, msg.From.FirstName, msg.From.UserName); err != nil {
		return b.replyError(msg.Chat.ID, "Could not subscribe", err)
	}
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\nYou will get a digest every %d hours. Send /stop to unsubscribe.\n\n%s",
		escape(name), int(b.reportInterval.Hours()), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.subscribers.Remove(ctx, msg.Chat.ID); err != nil {
		return b.replyError(msg.Chat.ID, "Could not unsubscribe", err)
	}
	return b.sendText(msg.Chat.ID, "🔕 Digest unsubscribed. Send /start to subscribe again.")
}

func (b *Bot) handleInbox(ctx context.Context, chatID int64) error {
	emails, err := b.svc.Emails(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not load emails", err)
	}
	header := fmt.Sprintf("📥 <b>Inbox</b> · %d unread", derive.UnreadCount(emails))
	return b.sendText(chatID, formatEmailList(header, emails, listLimit))
}

func (b *Bot) handleImportant(ctx context.Context, chatID int64) error {
	emails, err := b.svc.Emails(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not load emails", err)
	}
	return b.sendText(chatID, formatEmailList("⭐ <b>Important</b>", derive.ImportantEmails(emails), listLimit))
}

func (b *Bot) handleEmail(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.sendText(chatID, "Give an email id: /email email-1")
	}
	email, err := b.svc.OpenEmail(ctx, id)
	if err != nil {
		if email.ID == "" {
			return b.replyError(chatID, "Could not open email", err)
		}
		log.Printf("[warn] open email %s: %v", id, err)
	}
	tasks, err := b.svc.TasksByEmail(ctx, id)
	if err != nil {
		log.Printf("[warn] tasks for email %s: %v", id, err)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🧠 Summarize", cbSummarizePrefix+email.ID),
	))
	return b.sendWithReplyMarkup(chatID, formatEmailDetail(email, tasks, b.svc.Now()), markup)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) error {
	if query == "" {
		return b.sendText(chatID, "Give a search text: /search report")
	}
	emails, err := b.svc.SearchEmails(ctx, query)
	if err != nil {
		return b.replyError(chatID, "Search failed", err)
	}
	header := fmt.Sprintf("🔎 <b>%d</b> result(s) for “%s”", len(emails), escape(query))
	return b.sendText(chatID, formatEmailList(header, emails, listLimit))
}

func (b *Bot) handleSummarize(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.sendText(chatID, "Give an email id: /summarize email-1")
	}
	result, err := b.svc.Summarize(ctx, id)
	if err != nil {
		return b.writeFailed(chatID, err)
	}
	for i := range result.Tasks {
		if result.Tasks[i].EmailID == nil {
			emailID := id
			result.Tasks[i].EmailID = &emailID
		}
	}
	b.setPending(chatID, result)

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💾 Save %d task(s)", len(result.Tasks)), cbSavePrefix+id),
	))
	return b.sendWithReplyMarkup(chatID, formatSummary(result), markup)
}

func (b *Bot) saveSummaryTasks(ctx context.Context, chatID int64, emailID string) error {
	result, ok := b.takePending(chatID, emailID)
	if !ok {
		return b.sendText(chatID, "This summary has expired. Run /summarize again.")
	}
	saved, err := b.svc.SaveSummaryTasks(ctx, result)
	if err != nil {
		log.Printf("[warn] save summary tasks for %s: saved %d: %v", emailID, len(saved), err)
		return b.writeFailed(chatID, err)
	}
	return nil
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64) error {
	tasks, err := b.svc.Tasks(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not load tasks", err)
	}
	open := derive.OpenTasks(tasks)
	if len(open) == 0 {
		return b.sendText(chatID, "No open tasks. Add one with /newtask.")
	}

	now := b.svc.Now()
	text := formatTaskList(fmt.Sprintf("📋 <b>Open tasks</b> · %d done", derive.CompletedCount(tasks)), open, now)

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, t := range open {
		if i == listLimit {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+shortTitle(t.Title, 24), cbCompletePrefix+t.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeletePrefix+t.ID),
		))
	}
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	views, err := b.svc.Overview(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not load tasks", err)
	}
	if len(views.DueToday) == 0 {
		return b.sendText(chatID, "⏳ Nothing due today.")
	}
	return b.sendText(chatID, formatTaskList("⏳ <b>Due today</b>", views.DueToday, b.svc.Now()))
}

func (b *Bot) handleOverdue(ctx context.Context, chatID int64) error {
	views, err := b.svc.Overview(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not load tasks", err)
	}
	if len(views.Overdue) == 0 {
		return b.sendText(chatID, "🎉 No overdue tasks.")
	}
	return b.sendText(chatID, formatTaskList("⚠️ <b>Overdue</b>", views.Overdue, b.svc.Now()))
}

func (b *Bot) handleNewTask(ctx context.Context, chatID int64, args string) error {
	input, err := parseNewTask(args)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("%s\nFormat: /newtask title | priority | YYYY-MM-DD | email id", escape(err.Error())))
	}
	if input.EmailID != nil {
		if _, err := b.svc.Email(ctx, *input.EmailID); errors.Is(err, store.ErrNotFound) {
			return b.sendText(chatID, fmt.Sprintf("Email <code>%s</code> does not exist.", escape(*input.EmailID)))
		}
	}
	task, err := b.svc.CreateTask(ctx, input)
	if err != nil {
		return b.writeFailed(chatID, err)
	}
	return b.sendText(chatID, formatTaskList("➕ <b>New task</b>", []model.Task{task}, b.svc.Now()))
}

func (b *Bot) handleComplete(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.sendText(chatID, "Give a task id: /complete task-1")
	}
	return b.completeTask(ctx, chatID, id)
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, id string) error {
	task, err := b.svc.Task(ctx, id)
	if err != nil {
		return b.replyError(chatID, "Could not load task", err)
	}
	if task.Completed {
		return b.sendText(chatID, "This task is already done.")
	}
	if _, err := b.svc.CompleteTask(ctx, id, true); err != nil {
		return b.writeFailed(chatID, err)
	}
	return b.handleTasks(ctx, chatID)
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.sendText(chatID, "Give a task id: /delete task-1")
	}
	return b.deleteTask(ctx, chatID, id)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, id string) error {
	task, err := b.svc.Task(ctx, id)
	if err != nil {
		return b.replyError(chatID, "Could not load task", err)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Delete", cbConfirmPrefix+task.ID),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Keep", cbCancelPrefix+task.ID),
	))
	return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Delete “%s”?", escape(task.Title)), markup)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, id string) error {
	if err := b.svc.DeleteTask(ctx, id); err != nil {
		return b.writeFailed(chatID, err)
	}
	return nil
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) error {
	text, err := b.svc.Digest(ctx)
	if err != nil {
		return b.replyError(chatID, "Could not build the digest", err)
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleRefresh(ctx context.Context, chatID int64) error {
	if err := b.svc.Refresh(ctx); err != nil {
		return b.replyError(chatID, "Could not refresh", err)
	}
	return b.sendText(chatID, "🔄 Data reloaded.")
}

// writeFailed answers only for errors the service did not already report
// through its notifier.
func (b *Bot) writeFailed(chatID int64, err error) error {
	if errors.Is(err, service.ErrUnauthenticated) {
		return b.replyError(chatID, "Request refused", err)
	}
	return nil
}

func (b *Bot) replyError(chatID int64, what string, err error) error {
	log.Printf("[warn] %s: %v", what, err)
	var reason string
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		reason = "not signed in"
	case errors.Is(err, store.ErrNotFound):
		reason = "not found"
	case errors.Is(err, store.ErrValidation):
		reason = cause(err)
	default:
		reason = "the mail service is unavailable, try again later"
	}
	return b.sendText(chatID, fmt.Sprintf("⚠️ %s: %s", escape(what), escape(reason)))
}
