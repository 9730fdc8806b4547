package derive

import (
	"time"

	"mailtriage/internal/model"
)

// DueClass places a task relative to today.
type DueClass int

const (
	// DueNone covers completed tasks and tasks without a due date.
	DueNone DueClass = iota
	DueUpcoming
	DueToday
	DueOverdue
)

func (c DueClass) String() string {
	switch c {
	case DueUpcoming:
		return "upcoming"
	case DueToday:
		return "today"
	case DueOverdue:
		return "overdue"
	default:
		return "none"
	}
}

// ClassOf classifies task against now's calendar date.
func ClassOf(task model.Task, now time.Time) DueClass {
	return classify(task, model.DateOf(now))
}

func classify(t model.Task, today model.Date) DueClass {
	if t.Completed || t.DueDate == nil || t.DueDate.IsZero() {
		return DueNone
	}
	switch c := t.DueDate.Compare(today); {
	case c < 0:
		return DueOverdue
	case c == 0:
		return DueToday
	default:
		return DueUpcoming
	}
}
