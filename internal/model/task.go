package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts the three priority names case-insensitively.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a to-do item, optionally linked to the email it came from.
// EmailID is a weak reference: the email may no longer exist.
type Task struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Completed bool      `gorm:"default:false" json:"completed"`
	Priority  Priority  `gorm:"default:medium" json:"priority"`
	DueDate   *Date     `json:"dueDate,omitempty"`
	EmailID   *string   `gorm:"index" json:"emailId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LinkedEmailID returns the referenced email id or "".
func (t Task) LinkedEmailID() string {
	if t.EmailID == nil {
		return ""
	}
	return *t.EmailID
}

// TaskInput holds the fields of a task to create. ID and CreatedAt are assigned by the store.
type TaskInput struct {
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
	DueDate   *Date    `json:"dueDate,omitempty"`
	EmailID   *string  `json:"emailId,omitempty"`
}

// InputFromTask strips store-assigned fields, e.g. to persist a summary task.
func InputFromTask(t Task) TaskInput {
	return TaskInput{
		Title:     t.Title,
		Completed: t.Completed,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
		EmailID:   t.EmailID,
	}
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// A DueDate pointing at the zero Date clears the due date and an EmailID
// pointing at "" clears the email link.
type TaskPatch struct {
	Title     *string   `json:"title,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	DueDate   *Date     `json:"dueDate,omitempty"`
	EmailID   *string   `json:"emailId,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil && p.Priority == nil && p.DueDate == nil && p.EmailID == nil
}

// Apply returns t with the patch applied. It does not validate.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			d := *p.DueDate
			t.DueDate = &d
		}
	}
	if p.EmailID != nil {
		if *p.EmailID == "" {
			t.EmailID = nil
		} else {
			id := *p.EmailID
			t.EmailID = &id
		}
	}
	return t
}
