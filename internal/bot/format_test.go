package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/model"
	"mailtriage/internal/service"
	"mailtriage/internal/store"
)

func TestParseNewTask(t *testing.T) {
	input, err := parseNewTask("Send slides | high | 2025-04-25 | email-3")
	require.NoError(t, err)
	assert.Equal(t, "Send slides", input.Title)
	assert.Equal(t, model.PriorityHigh, input.Priority)
	require.NotNil(t, input.DueDate)
	assert.Equal(t, model.NewDate(2025, time.April, 25), *input.DueDate)
	require.NotNil(t, input.EmailID)
	assert.Equal(t, "email-3", *input.EmailID)
}

func TestParseNewTaskDefaults(t *testing.T) {
	input, err := parseNewTask("Call Bob")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, input.Priority)
	assert.Nil(t, input.DueDate)
	assert.Nil(t, input.EmailID)

	input, err = parseNewTask("Call Bob | | 2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, input.Priority)
	require.NotNil(t, input.DueDate)
}

func TestParseNewTaskErrors(t *testing.T) {
	for name, args := range map[string]string{
		"empty":    "",
		"no title": " | high",
		"priority": "Call | urgent",
		"date":     "Call | low | tomorrow",
		"fields":   "a | low | 2025-01-01 | e | extra",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseNewTask(args)
			assert.Error(t, err)
		})
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "short", shortTitle("  short ", 10))
	assert.Equal(t, "Прив…", shortTitle("Привет мир", 5))
	assert.Equal(t, "a…", shortTitle("abc", 2))
}

func TestSummaryEmailID(t *testing.T) {
	id := "email-7"
	assert.Equal(t, "email-7", summaryEmailID(model.EmailSummaryResult{
		Tasks: []model.Task{{Title: "x"}, {Title: "y", EmailID: &id}},
	}))
	assert.Equal(t, "email-7", summaryEmailID(model.EmailSummaryResult{
		Meetings: []model.Meeting{{Title: "sync", EmailID: &id}},
	}))
	assert.Empty(t, summaryEmailID(model.EmailSummaryResult{Summary: "nothing"}))
}

func TestNotificationText(t *testing.T) {
	assert.Equal(t, "✅ Task added", notificationText(service.Notification{Level: service.LevelSuccess, Message: "Task added"}))

	missing := store.NotFound("get task", "task %s", "task-9")
	assert.Equal(t, "⚠️ Could not delete task: not found",
		notificationText(service.Notification{Level: service.LevelError, Message: "Could not delete task", Err: missing}))

	invalid := store.Invalid("create task", "title is required")
	assert.Equal(t, "⚠️ Could not add task: title is required",
		notificationText(service.Notification{Level: service.LevelError, Message: "Could not add task", Err: invalid}))

	assert.Equal(t, "⚠️ a &lt;b&gt;",
		notificationText(service.Notification{Level: service.LevelError, Message: "a <b>", Err: errors.New("boom")}))
}

func TestFormatSummary(t *testing.T) {
	due := model.NewDate(2025, time.April, 22)
	text := formatSummary(model.EmailSummaryResult{
		Summary: "Quarterly report <draft>",
		Tasks:   []model.Task{{Title: "Review", Priority: model.PriorityHigh, DueDate: &due}},
	})
	assert.Contains(t, text, "Quarterly report &lt;draft&gt;")
	assert.Contains(t, text, "• Review <i>(high)</i> · due 2025-04-22")
	assert.NotContains(t, text, "Meetings")
}
