package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mailtriage/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t, "a.db?_journal_mode=WAL&_busy_timeout=5000", withPragmas("a.db"))
	assert.Equal(t, "file:a.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000", withPragmas("file:a.db?cache=shared"))
	assert.Equal(t, "a.db?_journal_mode=DELETE&_busy_timeout=5000", withPragmas("a.db?_journal_mode=DELETE"))
	assert.True(t, isMemoryDSN("file::memory:?cache=shared"))
	assert.False(t, isMemoryDSN("data/mailtriage.db"))
}

func TestNewDBInMemory(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer Close(db)

	n, err := NewEmailRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedDemoDataOnce(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, SeedDemoData(ctx, db))
	require.NoError(t, SeedDemoData(ctx, db))

	emails, err := NewEmailRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, emails, 5)
	assert.Equal(t, "email-1", emails[0].ID, "newest first")
	assert.True(t, emails[0].HasAttachments)
	assert.Len(t, emails[0].Attachments, 1)
	assert.Equal(t, "Alice Johnson", emails[0].From.Name)

	tasks, err := NewTaskRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	assert.Equal(t, "task-5", tasks[0].ID, "oldest first")
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, model.NewDate(2025, time.April, 22), *tasks[0].DueDate)
}

func TestEmailMarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, SeedDemoData(ctx, db))
	repo := NewEmailRepository(db)

	require.NoError(t, repo.MarkRead(ctx, "email-1"))
	require.NoError(t, repo.MarkRead(ctx, "email-1"))
	email, err := repo.FindByID(ctx, "email-1")
	require.NoError(t, err)
	assert.True(t, email.Read)

	assert.ErrorIs(t, repo.MarkRead(ctx, "missing"), gorm.ErrRecordNotFound)
}

func TestEmailSearch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, SeedDemoData(ctx, db))
	repo := NewEmailRepository(db)

	found, err := repo.Search(ctx, "QUARTERLY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "email-1", found[0].ID)

	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestEmailInsertNewKeepsExisting(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEmailRepository(db)

	first := []model.Email{{ID: "m1", Subject: "one", Date: time.Now().UTC()}}
	n, err := repo.InsertNew(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, repo.MarkRead(ctx, "m1"))

	again := []model.Email{
		{ID: "m1", Subject: "one, refetched", Date: time.Now().UTC()},
		{ID: "m2", Subject: "two", Date: time.Now().UTC()},
	}
	n, err = repo.InsertNew(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	m1, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m1.Read)
	assert.Equal(t, "one", m1.Subject)
}

func TestTaskSaveClearsOptionalFields(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewTaskRepository(db)

	due := model.NewDate(2025, time.May, 1)
	emailID := "email-1"
	task := model.Task{ID: "t1", Title: "x", Priority: model.PriorityLow, DueDate: &due, EmailID: &emailID}
	require.NoError(t, repo.Create(ctx, &task))

	byEmail, err := repo.ListByEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	task.DueDate = nil
	task.EmailID = nil
	task.Completed = true
	require.NoError(t, repo.Save(ctx, &task))

	got, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.EmailID)
	assert.True(t, got.Completed)
	assert.Equal(t, model.PriorityLow, got.Priority)

	byEmail, err = repo.ListByEmail(ctx, "email-1")
	require.NoError(t, err)
	assert.Empty(t, byEmail)
}

func TestTaskDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), gorm.ErrRecordNotFound)
}

func TestSubscriberUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriberRepository(openTestDB(t))

	_, err := repo.Upsert(ctx, 42, "Ann", "ann")
	require.NoError(t, err)
	sub, err := repo.Upsert(ctx, 42, "Anna", "anna")
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub.ChatID)

	subs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Anna", subs[0].FirstName)

	require.NoError(t, repo.Remove(ctx, 42))
	require.NoError(t, repo.Remove(ctx, 42))
	subs, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
