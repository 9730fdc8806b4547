// Package ingest imports messages from an external mailbox into the email table.
package ingest

import (
	"context"
	"fmt"
	"log"

	"mailtriage/internal/model"
)

// Provider yields the newest messages of a mailbox.
type Provider interface {
	Fetch(ctx context.Context, max int64) ([]model.Email, error)
}

// Sink stores emails it has not seen and reports how many it added.
type Sink interface {
	InsertNew(ctx context.Context, emails []model.Email) (int64, error)
}

// Syncer copies new messages from a provider into a sink.
type Syncer struct {
	provider Provider
	sink     Sink
	batch    int64
	onSync   func(added int64)
}

const defaultBatch = 50

func NewSyncer(provider Provider, sink Sink, batch int64) *Syncer {
	if batch <= 0 {
		batch = defaultBatch
	}
	return &Syncer{provider: provider, sink: sink, batch: batch}
}

// OnSync registers a hook called after a sync that added at least one email.
func (s *Syncer) OnSync(fn func(added int64)) {
	s.onSync = fn
}

// Sync runs one import pass. Existing emails keep their local state.
func (s *Syncer) Sync(ctx context.Context) (int64, error) {
	emails, err := s.provider.Fetch(ctx, s.batch)
	if err != nil {
		return 0, fmt.Errorf("fetch messages: %w", err)
	}
	added, err := s.sink.InsertNew(ctx, emails)
	if err != nil {
		return 0, fmt.Errorf("store messages: %w", err)
	}
	log.Printf("[info] mail sync: fetched %d, added %d", len(emails), added)
	if added > 0 && s.onSync != nil {
		s.onSync(added)
	}
	return added, nil
}
