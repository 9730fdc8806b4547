package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"mailtriage/internal/model"
	"mailtriage/internal/service"
)

func escape(s string) string { return html.EscapeString(s) }

// parseNewTask reads "title | priority | YYYY-MM-DD | email id".
// Only the title is required; an empty field keeps the default.
func parseNewTask(args string) (model.TaskInput, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 4 {
		return model.TaskInput{}, errors.New("too many fields")
	}
	input := model.TaskInput{Title: parts[0], Priority: model.PriorityMedium}
	if input.Title == "" {
		return model.TaskInput{}, errors.New("title is required")
	}
	if len(parts) > 1 && parts[1] != "" {
		p, err := model.ParsePriority(parts[1])
		if err != nil {
			return model.TaskInput{}, err
		}
		input.Priority = p
	}
	if len(parts) > 2 && parts[2] != "" {
		d, err := model.ParseDate(parts[2])
		if err != nil {
			return model.TaskInput{}, err
		}
		input.DueDate = &d
	}
	if len(parts) > 3 && parts[3] != "" {
		id := parts[3]
		input.EmailID = &id
	}
	return input, nil
}

// shortTitle cuts s to max runes for button labels.
func shortTitle(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func formatEmailList(header string, emails []model.Email, limit int) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	if len(emails) == 0 {
		sb.WriteString("No emails.")
		return sb.String()
	}
	for i, e := range emails {
		if i == limit {
			sb.WriteString(fmt.Sprintf("… and %d more", len(emails)-limit))
			break
		}
		sb.WriteString(service.FormatEmailLine(e))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatEmailDetail(e model.Email, tasks []model.Task, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✉️ <b>%s</b>\n", escape(e.Subject)))
	sb.WriteString(fmt.Sprintf("From: %s\n", escape(formatAddress(e.From))))
	if len(e.To) > 0 {
		sb.WriteString(fmt.Sprintf("To: %s\n", escape(formatAddresses(e.To))))
	}
	if len(e.Cc) > 0 {
		sb.WriteString(fmt.Sprintf("Cc: %s\n", escape(formatAddresses(e.Cc))))
	}
	sb.WriteString(fmt.Sprintf("Date: %s\n", e.Date.In(now.Location()).Format("2006-01-02 15:04")))
	if e.Important {
		sb.WriteString("⭐ Important\n")
	}
	sb.WriteString("\n")
	sb.WriteString(escape(strings.TrimSpace(e.Body)))
	sb.WriteString("\n")

	if len(e.Attachments) > 0 {
		sb.WriteString("\n📎 <b>Attachments</b>\n")
		for _, a := range e.Attachments {
			sb.WriteString(fmt.Sprintf("• %s (%d KB)\n", escape(a.Name), (a.Size+1023)/1024))
		}
	}
	if len(tasks) > 0 {
		sb.WriteString("\n📋 <b>Tasks from this email</b>\n")
		for _, t := range tasks {
			sb.WriteString(service.FormatTaskLine(t, now))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSummary(result model.EmailSummaryResult) string {
	var sb strings.Builder
	sb.WriteString("🧠 <b>Summary</b>\n")
	sb.WriteString(escape(result.Summary))
	sb.WriteString("\n")

	if len(result.Tasks) > 0 {
		sb.WriteString("\n📋 <b>Suggested tasks</b>\n")
		for _, t := range result.Tasks {
			line := fmt.Sprintf("• %s <i>(%s)</i>", escape(t.Title), t.Priority)
			if t.DueDate != nil && !t.DueDate.IsZero() {
				line += fmt.Sprintf(" · due %s", t.DueDate)
			}
			sb.WriteString(line + "\n")
		}
	} else {
		sb.WriteString("\nNo tasks found.\n")
	}

	if len(result.Meetings) > 0 {
		sb.WriteString("\n📅 <b>Meetings</b>\n")
		for _, m := range result.Meetings {
			line := fmt.Sprintf("• %s · %s", escape(m.Title), m.StartTime.Format("2006-01-02 15:04"))
			if m.Location != "" {
				line += " · " + escape(m.Location)
			}
			sb.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTaskList(header string, tasks []model.Task, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	for _, t := range tasks {
		sb.WriteString(service.FormatTaskLine(t, now))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAddress(a model.Address) string {
	switch {
	case a.Name == "":
		return a.Email
	case a.Email == "":
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

func formatAddresses(list []model.Address) string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, formatAddress(a))
	}
	return strings.Join(out, ", ")
}

// summaryEmailID finds the email a summary was made for.
func summaryEmailID(result model.EmailSummaryResult) string {
	for _, t := range result.Tasks {
		if id := t.LinkedEmailID(); id != "" {
			return id
		}
	}
	for _, m := range result.Meetings {
		if m.EmailID != nil && *m.EmailID != "" {
			return *m.EmailID
		}
	}
	return ""
}
