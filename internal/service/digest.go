package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"mailtriage/internal/derive"
	"mailtriage/internal/model"
)

const digestImportantLimit = 5

// Digest renders the periodic inbox and task report as Telegram HTML.
func (s *Service) Digest(ctx context.Context) (string, error) {
	emails, err := s.Emails(ctx)
	if err != nil {
		return "", err
	}
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return "", err
	}
	return RenderDigest(emails, tasks, s.clock()), nil
}

// RenderDigest formats the digest for now. It only reads its inputs.
func RenderDigest(emails []model.Email, tasks []model.Task, now time.Time) string {
	views := derive.Compute(emails, tasks, now)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString(fmt.Sprintf("📬 Unread emails: <b>%d</b>\n", views.UnreadCount))
	var importantUnread []model.Email
	for _, e := range views.Important {
		if !e.Read {
			importantUnread = append(importantUnread, e)
		}
	}
	for i, e := range importantUnread {
		if i == digestImportantLimit {
			builder.WriteString(fmt.Sprintf("   … and %d more\n", len(importantUnread)-i))
			break
		}
		builder.WriteString(FormatEmailLine(e))
	}

	builder.WriteString("\n⚠️ <b>Overdue</b>\n")
	writeTasks(&builder, views.Overdue, now, "no overdue tasks")

	builder.WriteString("\n⏳ <b>Due today</b>\n")
	writeTasks(&builder, views.DueToday, now, "nothing due today")

	var upcoming []model.Task
	for _, t := range views.Open {
		if derive.ClassOf(t, now) != derive.DueToday && derive.ClassOf(t, now) != derive.DueOverdue {
			upcoming = append(upcoming, t)
		}
	}
	sortByDue(upcoming)
	builder.WriteString("\n🟢 <b>Upcoming</b>\n")
	writeTasks(&builder, upcoming, now, "no open tasks")

	return strings.TrimSpace(builder.String())
}

func writeTasks(b *strings.Builder, tasks []model.Task, now time.Time, empty string) {
	if len(tasks) == 0 {
		b.WriteString("— " + empty + "\n")
		return
	}
	for _, t := range tasks {
		b.WriteString(FormatTaskLine(t, now))
	}
}

// sortByDue orders tasks by due date, undated ones last and newest first.
func sortByDue(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a == nil && b == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// FormatEmailLine renders one inbox line.
func FormatEmailLine(e model.Email) string {
	marker := "✉️"
	if !e.Read {
		marker = "🔵"
	}
	if e.Important {
		marker += "⭐"
	}
	from := strings.TrimSpace(e.From.Name)
	if from == "" {
		from = e.From.Email
	}
	return fmt.Sprintf("%s <b>%s</b>\n   %s · <code>%s</code>\n",
		marker, html.EscapeString(strings.TrimSpace(e.Subject)), html.EscapeString(from), html.EscapeString(e.ID))
}

// FormatTaskLine renders one task with its due state and priority.
func FormatTaskLine(t model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch derive.ClassOf(t, now) {
	case derive.DueOverdue:
		icon = "⚠️"
	case derive.DueToday:
		icon = "⏳"
	}
	if t.Completed {
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("%s %s <i>(%s)</i>", icon, html.EscapeString(strings.TrimSpace(t.Title)), t.Priority))

	if t.DueDate != nil && !t.DueDate.IsZero() {
		today := model.DateOf(now)
		switch {
		case t.Completed:
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", t.DueDate))
		case t.DueDate.Before(today):
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · <b>overdue</b>", t.DueDate))
		default:
			days := int(t.DueDate.In(time.UTC).Sub(today.In(time.UTC)).Hours() / 24)
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · in %d d.", t.DueDate, days))
		}
	}
	sb.WriteString(fmt.Sprintf("\n   🆔 <code>%s</code>", html.EscapeString(t.ID)))

	sb.WriteByte('\n')
	return sb.String()
}
