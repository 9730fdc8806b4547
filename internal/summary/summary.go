// Package summary turns an email into a summary, candidate tasks and meeting
// proposals. The heuristic implementation stands in for an external
// summarization service.
package summary

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mailtriage/internal/model"
)

const (
	maxSummaryRunes  = 240
	meetingStartHour = 14
	meetingDuration  = 30 * time.Minute
	noSummary        = "No summary available"
)

// Summarizer produces a summary result for one email.
type Summarizer interface {
	Summarize(ctx context.Context, email model.Email) (model.EmailSummaryResult, error)
}

// Heuristic extracts structure from plain text: "Task:", "Due:" and
// "Priority:" lines, and meeting mentions.
type Heuristic struct {
	Clock func() time.Time
	NewID func(prefix string) string
}

func NewHeuristic() *Heuristic {
	return &Heuristic{
		Clock: time.Now,
		NewID: func(prefix string) string { return prefix + "-" + uuid.NewString() },
	}
}

// Summarize always returns a non-empty summary and at least one task.
func (h *Heuristic) Summarize(ctx context.Context, email model.Email) (model.EmailSummaryResult, error) {
	if err := ctx.Err(); err != nil {
		return model.EmailSummaryResult{}, err
	}
	emailID := email.ID

	result := model.EmailSummaryResult{
		Summary: summaryText(email),
		Tasks:   []model.Task{h.extractTask(email, &emailID)},
	}
	if mentionsMeeting(email) {
		result.Meetings = []model.Meeting{h.proposeMeeting(email, result.Summary, &emailID)}
	}
	return result, nil
}

func summaryText(email model.Email) string {
	if s := strings.TrimSpace(email.Summary); s != "" {
		return s
	}
	if s := firstSentences(email.Body, 2); s != "" {
		return s
	}
	return noSummary
}

// firstSentences skips a greeting line and returns up to n sentences of the body.
func firstSentences(body string, n int) string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	var kept []string
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(kept) == 0 && i < 2 && isGreeting(line) {
			continue
		}
		kept = append(kept, line)
	}
	text := strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
	if text == "" {
		return ""
	}

	end := 0
	for count := 0; count < n; count++ {
		idx := strings.IndexAny(text[end:], ".!?")
		if idx < 0 {
			end = len(text)
			break
		}
		end += idx + 1
	}
	return truncate(strings.TrimSpace(text[:end]), maxSummaryRunes)
}

func isGreeting(line string) bool {
	lower := strings.ToLower(line)
	for _, g := range []string{"hi", "hello", "dear", "hey", "good morning"} {
		if strings.HasPrefix(lower, g) && strings.HasSuffix(lower, ",") {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

func mentionsMeeting(email model.Email) bool {
	text := strings.ToLower(email.Subject + "\n" + email.Body)
	return strings.Contains(text, "meeting")
}

func (h *Heuristic) proposeMeeting(email model.Email, description string, emailID *string) model.Meeting {
	day := model.DateOf(email.Date).AddDays(1)
	loc := email.Date.Location()
	start := day.In(loc).Add(meetingStartHour * time.Hour)
	return model.Meeting{
		ID:          h.NewID("meeting"),
		Title:       strings.TrimSpace(email.Subject),
		Description: description,
		StartTime:   start,
		EndTime:     start.Add(meetingDuration),
		Attendees:   attendees(email),
		EmailID:     emailID,
	}
}

// attendees lists recipients then the sender, without duplicate addresses.
func attendees(email model.Email) []model.Address {
	seen := map[string]bool{}
	var out []model.Address
	add := func(a model.Address) {
		key := strings.ToLower(strings.TrimSpace(a.Email))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, a)
	}
	for _, a := range email.To {
		add(a)
	}
	add(email.From)
	return out
}
