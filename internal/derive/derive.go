// Package derive computes read-only views over emails and tasks.
// Every function is pure and leaves its inputs untouched.
package derive

import (
	"time"

	"mailtriage/internal/model"
)

// Views bundles the derived values shown on the overview screens.
type Views struct {
	Today          model.Date
	UnreadCount    int
	Important      []model.Email
	DueToday       []model.Task
	Overdue        []model.Task
	Open           []model.Task
	CompletedCount int
}

// Compute derives every view with a single "today".
func Compute(emails []model.Email, tasks []model.Task, now time.Time) Views {
	today := model.DateOf(now)
	v := Views{
		Today:       today,
		UnreadCount: UnreadCount(emails),
		Important:   ImportantEmails(emails),
		Open:        OpenTasks(tasks),
	}
	for _, t := range tasks {
		if t.Completed {
			v.CompletedCount++
		}
		switch classify(t, today) {
		case DueToday:
			v.DueToday = append(v.DueToday, t)
		case DueOverdue:
			v.Overdue = append(v.Overdue, t)
		}
	}
	return v
}

func UnreadCount(emails []model.Email) int {
	n := 0
	for _, e := range emails {
		if !e.Read {
			n++
		}
	}
	return n
}

func ImportantEmails(emails []model.Email) []model.Email {
	var out []model.Email
	for _, e := range emails {
		if e.Important {
			out = append(out, e)
		}
	}
	return out
}

// TasksForEmail keeps the tasks linked to emailID, in input order.
func TasksForEmail(tasks []model.Task, emailID string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.EmailID != nil && *t.EmailID == emailID {
			out = append(out, t)
		}
	}
	return out
}

// TasksDueToday returns open tasks due on now's calendar date.
func TasksDueToday(tasks []model.Task, now time.Time) []model.Task {
	return filterClass(tasks, model.DateOf(now), DueToday)
}

// OverdueTasks returns open tasks due strictly before now's calendar date.
func OverdueTasks(tasks []model.Task, now time.Time) []model.Task {
	return filterClass(tasks, model.DateOf(now), DueOverdue)
}

func OpenTasks(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

func CompletedCount(tasks []model.Task) int {
	return len(tasks) - len(OpenTasks(tasks))
}

// EmailForTask resolves the task's email link. A missing or dangling link
// reports ok == false.
func EmailForTask(emails []model.Email, task model.Task) (model.Email, bool) {
	id := task.LinkedEmailID()
	if id == "" {
		return model.Email{}, false
	}
	for _, e := range emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

func filterClass(tasks []model.Task, today model.Date, class DueClass) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if classify(t, today) == class {
			out = append(out, t)
		}
	}
	return out
}
