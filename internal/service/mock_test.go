package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"mailtriage/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListEmails(ctx context.Context) ([]model.Email, error) {
	args := m.Called(ctx)
	emails, _ := args.Get(0).([]model.Email)
	return emails, args.Error(1)
}

func (m *mockStore) GetEmail(ctx context.Context, id string) (model.Email, error) {
	args := m.Called(ctx, id)
	email, _ := args.Get(0).(model.Email)
	return email, args.Error(1)
}

func (m *mockStore) MarkEmailRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) SummarizeEmail(ctx context.Context, id string) (model.EmailSummaryResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(model.EmailSummaryResult)
	return result, args.Error(1)
}

func (m *mockStore) SearchEmails(ctx context.Context, query string) ([]model.Email, error) {
	args := m.Called(ctx, query)
	emails, _ := args.Get(0).([]model.Email)
	return emails, args.Error(1)
}

func (m *mockStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *mockStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(model.Task)
	return task, args.Error(1)
}

func (m *mockStore) ListTasksByEmail(ctx context.Context, emailID string) ([]model.Task, error) {
	args := m.Called(ctx, emailID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *mockStore) CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error) {
	args := m.Called(ctx, input)
	task, _ := args.Get(0).(model.Task)
	return task, args.Error(1)
}

func (m *mockStore) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, id, patch)
	task, _ := args.Get(0).(model.Task)
	return task, args.Error(1)
}

func (m *mockStore) DeleteTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Message
	}
	return out
}
