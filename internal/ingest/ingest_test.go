package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/model"
	"mailtriage/internal/repository"
)

type fakeProvider struct {
	emails []model.Email
	err    error
	max    int64
}

func (f *fakeProvider) Fetch(_ context.Context, max int64) ([]model.Email, error) {
	f.max = max
	return f.emails, f.err
}

func TestSyncInsertsOnlyNew(t *testing.T) {
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	emails := repository.NewEmailRepository(db)

	now := time.Now().UTC()
	provider := &fakeProvider{emails: []model.Email{
		{ID: "g1", Subject: "first", Date: now},
		{ID: "g2", Subject: "second", Date: now},
	}}
	s := NewSyncer(provider, emails, 0)
	var hooked []int64
	s.OnSync(func(added int64) { hooked = append(hooked, added) })

	added, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)
	assert.Equal(t, int64(defaultBatch), provider.max)

	require.NoError(t, emails.MarkRead(ctx, "g1"))
	provider.emails = append(provider.emails, model.Email{ID: "g3", Subject: "third", Date: now})
	added, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)

	g1, err := emails.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, g1.Read)

	added, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, []int64{2, 1}, hooked)
}

func TestSyncProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := NewSyncer(&fakeProvider{err: boom}, nil, 10)
	_, err := s.Sync(context.Background())
	assert.ErrorIs(t, err, boom)
}
