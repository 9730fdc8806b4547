package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mailtriage/internal/model"
	"mailtriage/internal/repository"
	"mailtriage/internal/summary"
)

// Local implements RecordStore on top of the SQL repositories.
type Local struct {
	emails     *repository.EmailRepository
	tasks      *repository.TaskRepository
	summarizer summary.Summarizer
	clock      func() time.Time
	newID      func() string
}

var _ RecordStore = (*Local)(nil)

func NewLocal(emails *repository.EmailRepository, tasks *repository.TaskRepository, summarizer summary.Summarizer) *Local {
	return &Local{
		emails:     emails,
		tasks:      tasks,
		summarizer: summarizer,
		clock:      time.Now,
		newID:      func() string { return "task-" + uuid.NewString() },
	}
}

// NewLocalFromDB wires the repositories and the heuristic summarizer around db.
func NewLocalFromDB(db *gorm.DB) *Local {
	return NewLocal(repository.NewEmailRepository(db), repository.NewTaskRepository(db), summary.NewHeuristic())
}

func (s *Local) ListEmails(ctx context.Context) ([]model.Email, error) {
	emails, err := s.emails.List(ctx)
	if err != nil {
		return nil, Transport("list emails", err)
	}
	return emails, nil
}

func (s *Local) GetEmail(ctx context.Context, id string) (model.Email, error) {
	email, err := s.emails.FindByID(ctx, id)
	if err != nil {
		return model.Email{}, classify("get email", "email", id, err)
	}
	return *email, nil
}

func (s *Local) MarkEmailRead(ctx context.Context, id string) error {
	if err := s.emails.MarkRead(ctx, id); err != nil {
		return classify("mark email read", "email", id, err)
	}
	return nil
}

func (s *Local) SummarizeEmail(ctx context.Context, id string) (model.EmailSummaryResult, error) {
	email, err := s.emails.FindByID(ctx, id)
	if err != nil {
		return model.EmailSummaryResult{}, classify("summarize email", "email", id, err)
	}
	result, err := s.summarizer.Summarize(ctx, *email)
	if err != nil {
		return model.EmailSummaryResult{}, Transport("summarize email", err)
	}
	return result, nil
}

func (s *Local) SearchEmails(ctx context.Context, query string) ([]model.Email, error) {
	emails, err := s.emails.Search(ctx, query)
	if err != nil {
		return nil, Transport("search emails", err)
	}
	return emails, nil
}

func (s *Local) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, Transport("list tasks", err)
	}
	return tasks, nil
}

func (s *Local) GetTask(ctx context.Context, id string) (model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, classify("get task", "task", id, err)
	}
	return *task, nil
}

func (s *Local) ListTasksByEmail(ctx context.Context, emailID string) ([]model.Task, error) {
	tasks, err := s.tasks.ListByEmail(ctx, emailID)
	if err != nil {
		return nil, Transport("list tasks by email", err)
	}
	return tasks, nil
}

func (s *Local) CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error) {
	const op = "create task"
	input, err := NormalizeInput(op, input)
	if err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		ID:        s.newID(),
		Title:     input.Title,
		Completed: input.Completed,
		Priority:  input.Priority,
		DueDate:   input.DueDate,
		EmailID:   input.EmailID,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return model.Task{}, Transport(op, err)
	}
	return task, nil
}

func (s *Local) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	const op = "update task"
	patch, err := NormalizePatch(op, patch)
	if err != nil {
		return model.Task{}, err
	}
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, classify(op, "task", id, err)
	}
	updated := patch.Apply(*current)
	if err := s.tasks.Save(ctx, &updated); err != nil {
		return model.Task{}, Transport(op, err)
	}
	return updated, nil
}

func (s *Local) DeleteTask(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return classify("delete task", "task", id, err)
	}
	return nil
}

func classify(op, entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(op, "%s %q not found", entity, id)
	}
	return Transport(op, err)
}
