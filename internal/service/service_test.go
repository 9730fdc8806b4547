package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/cache"
	"mailtriage/internal/model"
	"mailtriage/internal/store"
)

var ctxAny = mock.Anything

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *mockStore, *cache.Cache, *recordingNotifier) {
	t.Helper()
	ms := &mockStore{}
	c := cache.New()
	n := &recordingNotifier{}
	now := time.Date(2025, 4, 22, 9, 0, 0, 0, time.UTC)
	svc := New(ms, c, WithNotifier(n), WithClock(func() time.Time { return now }))
	t.Cleanup(func() { ms.AssertExpectations(t) })
	return svc, ms, c, n
}

func TestEmailsAreCached(t *testing.T) {
	svc, ms, _, _ := newTestService(t)
	ctx := context.Background()
	ms.On("ListEmails", ctxAny).Return([]model.Email{{ID: "email-1"}}, nil).Once()

	for i := 0; i < 3; i++ {
		emails, err := svc.Emails(ctx)
		require.NoError(t, err)
		assert.Len(t, emails, 1)
	}
}

func TestMarkReadPatchesEveryView(t *testing.T) {
	svc, ms, c, _ := newTestService(t)
	ctx := context.Background()
	inbox := []model.Email{{ID: "email-1"}, {ID: "email-2", Read: true}}
	ms.On("ListEmails", ctxAny).Return(inbox, nil).Once()
	ms.On("SearchEmails", ctxAny, "report").Return([]model.Email{{ID: "email-1"}}, nil).Once()
	ms.On("GetEmail", ctxAny, "email-1").Return(model.Email{ID: "email-1"}, nil).Once()
	ms.On("MarkEmailRead", ctxAny, "email-1").Return(nil).Twice()

	_, err := svc.Emails(ctx)
	require.NoError(t, err)
	_, err = svc.SearchEmails(ctx, "report")
	require.NoError(t, err)
	_, err = svc.Email(ctx, "email-1")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, "email-1"))
	require.NoError(t, svc.MarkRead(ctx, "email-1"))

	email, err := svc.Email(ctx, "email-1")
	require.NoError(t, err)
	assert.True(t, email.Read)

	emails, ok := cache.Peek[[]model.Email](c, cache.EmailsKey())
	require.True(t, ok)
	assert.True(t, emails[0].Read)
	assert.False(t, inbox[0].Read, "fetched slice is not mutated")

	found, ok := cache.Peek[[]model.Email](c, cache.SearchKey("report"))
	require.True(t, ok)
	assert.True(t, found[0].Read)
}

func TestMarkReadFailureLeavesCache(t *testing.T) {
	svc, ms, c, n := newTestService(t)
	ctx := context.Background()
	ms.On("ListEmails", ctxAny).Return([]model.Email{{ID: "email-1"}}, nil).Once()
	ms.On("MarkEmailRead", ctxAny, "email-1").Return(store.Transport("mark email read", assert.AnError)).Once()

	_, err := svc.Emails(ctx)
	require.NoError(t, err)

	err = svc.MarkRead(ctx, "email-1")
	assert.ErrorIs(t, err, store.ErrTransport)
	emails, _ := cache.Peek[[]model.Email](c, cache.EmailsKey())
	assert.False(t, emails[0].Read)
	assert.Equal(t, []string{msgMarkReadFailed}, n.messages())
}

func TestOpenEmailMarksUnreadOnce(t *testing.T) {
	svc, ms, _, _ := newTestService(t)
	ctx := context.Background()
	ms.On("GetEmail", ctxAny, "email-1").Return(model.Email{ID: "email-1"}, nil).Once()
	ms.On("MarkEmailRead", ctxAny, "email-1").Return(nil).Once()

	email, err := svc.OpenEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.True(t, email.Read)

	email, err = svc.OpenEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.True(t, email.Read)
}

func TestCreateTaskPatchesLists(t *testing.T) {
	svc, ms, c, n := newTestService(t)
	ctx := context.Background()
	existing := model.Task{ID: "task-1", Title: "old", EmailID: strPtr("email-1")}
	created := model.Task{ID: "task-9", Title: "new", Priority: model.PriorityMedium, EmailID: strPtr("email-1")}
	input := model.TaskInput{Title: "new", EmailID: strPtr("email-1")}

	ms.On("ListTasks", ctxAny).Return([]model.Task{existing}, nil).Once()
	ms.On("ListTasksByEmail", ctxAny, "email-1").Return([]model.Task{existing}, nil).Once()
	ms.On("CreateTask", ctxAny, input).Return(created, nil).Once()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)
	_, err = svc.TasksByEmail(ctx, "email-1")
	require.NoError(t, err)

	got, err := svc.CreateTask(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	tasks, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{existing, created}, tasks)

	byEmail, err := svc.TasksByEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	task, err := svc.Task(ctx, "task-9")
	require.NoError(t, err)
	assert.Equal(t, created, task)
	assert.Equal(t, cache.Ready, c.Status(cache.TaskKey("task-9")))
	assert.Equal(t, []string{msgTaskAdded}, n.messages())
}

func TestCreateTaskFailureLeavesCacheAndNotifies(t *testing.T) {
	svc, ms, _, n := newTestService(t)
	ctx := context.Background()
	ms.On("ListTasks", ctxAny).Return([]model.Task{}, nil).Once()
	ms.On("CreateTask", ctxAny, mock.Anything).Return(nil, store.Invalid("create task", "title is required")).Once()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)

	_, err = svc.CreateTask(ctx, model.TaskInput{})
	assert.ErrorIs(t, err, store.ErrValidation)

	tasks, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, []string{msgTaskAddFailed}, n.messages())
}

func TestUpdateTaskMovesBetweenEmails(t *testing.T) {
	svc, ms, c, _ := newTestService(t)
	ctx := context.Background()
	before := model.Task{ID: "task-1", Title: "t", EmailID: strPtr("email-1")}
	after := model.Task{ID: "task-1", Title: "t", EmailID: strPtr("email-2")}
	patch := model.TaskPatch{EmailID: strPtr("email-2")}

	ms.On("ListTasks", ctxAny).Return([]model.Task{before}, nil).Once()
	ms.On("ListTasksByEmail", ctxAny, "email-1").Return([]model.Task{before}, nil).Once()
	ms.On("ListTasksByEmail", ctxAny, "email-2").Return([]model.Task{}, nil).Once()
	ms.On("UpdateTask", ctxAny, "task-1", patch).Return(after, nil).Once()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)
	_, err = svc.TasksByEmail(ctx, "email-1")
	require.NoError(t, err)
	_, err = svc.TasksByEmail(ctx, "email-2")
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "task-1", patch)
	require.NoError(t, err)

	old, _ := cache.Peek[[]model.Task](c, cache.TasksByEmailKey("email-1"))
	assert.Empty(t, old)
	moved, _ := cache.Peek[[]model.Task](c, cache.TasksByEmailKey("email-2"))
	assert.Equal(t, []model.Task{after}, moved)
	all, _ := cache.Peek[[]model.Task](c, cache.TasksKey())
	assert.Equal(t, []model.Task{after}, all)
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	svc, ms, _, n := newTestService(t)
	ctx := context.Background()
	title := "x"
	ms.On("UpdateTask", ctxAny, "missing", model.TaskPatch{Title: &title}).
		Return(nil, store.NotFound("update task", "task %q not found", "missing")).Once()
	ms.On("DeleteTask", ctxAny, "missing").
		Return(store.NotFound("delete task", "task %q not found", "missing")).Once()

	_, err := svc.UpdateTask(ctx, "missing", model.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTask(ctx, "missing"), store.ErrNotFound)
	assert.Equal(t, []string{msgTaskUpdateFailed, msgTaskRemoveFailed}, n.messages())
}

func TestDeleteTaskDropsEverywhere(t *testing.T) {
	svc, ms, c, n := newTestService(t)
	ctx := context.Background()
	task := model.Task{ID: "task-1", EmailID: strPtr("email-1")}
	ms.On("ListTasks", ctxAny).Return([]model.Task{task}, nil).Once()
	ms.On("GetTask", ctxAny, "task-1").Return(task, nil).Once()
	ms.On("ListTasksByEmail", ctxAny, "email-1").Return([]model.Task{task}, nil).Once()
	ms.On("DeleteTask", ctxAny, "task-1").Return(nil).Once()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)
	_, err = svc.Task(ctx, "task-1")
	require.NoError(t, err)
	_, err = svc.TasksByEmail(ctx, "email-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, "task-1"))

	all, _ := cache.Peek[[]model.Task](c, cache.TasksKey())
	assert.Empty(t, all)
	byEmail, _ := cache.Peek[[]model.Task](c, cache.TasksByEmailKey("email-1"))
	assert.Empty(t, byEmail)
	assert.Equal(t, cache.Absent, c.Status(cache.TaskKey("task-1")))
	assert.Equal(t, []string{msgTaskRemoved}, n.messages())
}

func TestSummarizeLeavesCachesUnchanged(t *testing.T) {
	svc, ms, c, n := newTestService(t)
	ctx := context.Background()
	tasks := []model.Task{{ID: "task-1"}}
	result := model.EmailSummaryResult{
		Summary: "s",
		Tasks:   []model.Task{{ID: "proposed", Title: "Follow up", EmailID: strPtr("email-1")}},
	}
	ms.On("ListTasks", ctxAny).Return(tasks, nil).Once()
	ms.On("SummarizeEmail", ctxAny, "email-1").Return(result, nil).Once()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)

	got, err := svc.Summarize(ctx, "email-1")
	require.NoError(t, err)
	assert.Equal(t, result, got)

	cached, _ := cache.Peek[[]model.Task](c, cache.TasksKey())
	assert.Equal(t, tasks, cached)
	assert.Equal(t, cache.Absent, c.Status(cache.TaskKey("proposed")))
	assert.Equal(t, cache.Absent, c.Status(cache.TasksByEmailKey("email-1")))
	assert.Equal(t, []string{msgSummarized}, n.messages())
}

func TestSaveSummaryTasks(t *testing.T) {
	svc, ms, _, _ := newTestService(t)
	ctx := context.Background()
	proposed := model.Task{ID: "proposed", Title: "Follow up", Priority: model.PriorityHigh, EmailID: strPtr("email-1")}
	saved := proposed
	saved.ID = "task-9"
	ms.On("CreateTask", ctxAny, model.InputFromTask(proposed)).Return(saved, nil).Once()

	got, err := svc.SaveSummaryTasks(ctx, model.EmailSummaryResult{Tasks: []model.Task{proposed}})
	require.NoError(t, err)
	assert.Equal(t, []model.Task{saved}, got)
}

func TestUnauthenticated(t *testing.T) {
	ms := &mockStore{}
	svc := New(ms, cache.New(), WithSession(sessionFunc(func() bool { return false })))
	ctx := context.Background()

	_, err := svc.Emails(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.MarkRead(ctx, "email-1"), ErrUnauthenticated)
	_, err = svc.CreateTask(ctx, model.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Overview(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.Refresh(ctx), ErrUnauthenticated)
	ms.AssertNotCalled(t, "ListEmails", mock.Anything)
}

func TestOverviewAndLinkedEmail(t *testing.T) {
	svc, ms, _, _ := newTestService(t)
	ctx := context.Background()
	today := model.NewDate(2025, 4, 22)
	yesterday := today.AddDays(-1)
	ms.On("ListEmails", ctxAny).Return([]model.Email{{ID: "email-1", Important: true}}, nil).Once()
	ms.On("ListTasks", ctxAny).Return([]model.Task{
		{ID: "t1", DueDate: &today, EmailID: strPtr("email-1")},
		{ID: "t2", DueDate: &yesterday, EmailID: strPtr("gone")},
	}, nil).Once()

	views, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, views.UnreadCount)
	require.Len(t, views.DueToday, 1)
	assert.Equal(t, "t1", views.DueToday[0].ID)
	require.Len(t, views.Overdue, 1)

	email, ok, err := svc.LinkedEmail(ctx, views.DueToday[0])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "email-1", email.ID)

	_, ok, err = svc.LinkedEmail(ctx, views.Overdue[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshRefetches(t *testing.T) {
	svc, ms, _, _ := newTestService(t)
	ctx := context.Background()
	ms.On("ListTasks", ctxAny).Return([]model.Task{}, nil).Twice()

	_, err := svc.Tasks(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(ctx))
	_, err = svc.Tasks(ctx)
	require.NoError(t, err)
}
