package summary

import (
	"strings"
	"time"

	"mailtriage/internal/model"
)

var dueLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"02.01.2006",
}

var replyPrefixes = []string{"re:", "fw:", "fwd:"}

// extractTask builds the candidate task for an email. Explicit "Task:",
// "Due:" and "Priority:" lines win; otherwise it is a follow-up on the subject.
func (h *Heuristic) extractTask(email model.Email, emailID *string) model.Task {
	fields := labelledLines(email.Body)

	title := fields["task"]
	if title == "" {
		title = "Follow up: " + cleanSubject(email.Subject)
		if cleanSubject(email.Subject) == "" {
			title = "Follow up on email"
		}
	}

	priority := model.PriorityMedium
	if p, err := model.ParsePriority(fields["priority"]); err == nil {
		priority = p
	}

	task := model.Task{
		ID:        h.NewID("task"),
		Title:     title,
		Priority:  priority,
		EmailID:   emailID,
		CreatedAt: h.Clock(),
	}
	if due, ok := parseDue(fields["due"]); ok {
		task.DueDate = &due
	}
	return task
}

// labelledLines collects "Label: value" lines, first occurrence wins, labels lowercased.
func labelledLines(body string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		label, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" || strings.Contains(label, " ") {
			continue
		}
		if _, exists := out[label]; !exists {
			out[label] = value
		}
	}
	return out
}

func parseDue(raw string) (model.Date, bool) {
	raw = strings.TrimRight(strings.TrimSpace(raw), ".;")
	if raw == "" {
		return model.Date{}, false
	}
	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.DateOf(t), true
		}
	}
	return model.Date{}, false
}

func cleanSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for {
		lower := strings.ToLower(s)
		trimmed := false
		for _, p := range replyPrefixes {
			if strings.HasPrefix(lower, p) {
				s = strings.TrimSpace(s[len(p):])
				trimmed = true
				break
			}
		}
		if !trimmed {
			return s
		}
	}
}
