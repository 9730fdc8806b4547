// Package store defines the record store contract shared by the local
// SQL-backed implementation and the HTTP client.
package store

import (
	"context"

	"mailtriage/internal/model"
)

// RecordStore is the data access boundary for emails, tasks and summaries.
type RecordStore interface {
	ListEmails(ctx context.Context) ([]model.Email, error)
	GetEmail(ctx context.Context, id string) (model.Email, error)
	// MarkEmailRead is a no-op for an email that is already read.
	MarkEmailRead(ctx context.Context, id string) error
	SummarizeEmail(ctx context.Context, id string) (model.EmailSummaryResult, error)
	SearchEmails(ctx context.Context, query string) ([]model.Email, error)

	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasksByEmail(ctx context.Context, emailID string) ([]model.Task, error)
	CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}
