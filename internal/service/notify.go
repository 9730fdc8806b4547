package service

import (
	"context"
	"log"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

// Notification is a user-visible outcome of a write.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) {
	if n.Level == LevelError {
		log.Printf("[warn] %s: %v", n.Message, n.Err)
		return
	}
	log.Printf("[info] %s", n.Message)
}

const (
	msgTaskAdded        = "Task added successfully"
	msgTaskAddFailed    = "Failed to add task"
	msgTaskUpdated      = "Task updated successfully"
	msgTaskUpdateFailed = "Failed to update task"
	msgTaskRemoved      = "Task removed successfully"
	msgTaskRemoveFailed = "Failed to remove task"
	msgSummarized       = "Email summarized successfully"
	msgSummarizeFailed  = "Failed to generate summary"
	msgMarkReadFailed   = "Failed to mark email as read"
)

func (s *Service) success(ctx context.Context, msg string) {
	s.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: msg})
}

func (s *Service) failure(ctx context.Context, msg string, err error) {
	s.notifier.Notify(ctx, Notification{Level: LevelError, Message: msg, Err: err})
}
