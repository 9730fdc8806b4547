package service

import (
	"context"
	"fmt"

	"mailtriage/internal/cache"
	"mailtriage/internal/model"
)

func (s *Service) Emails(ctx context.Context) ([]model.Email, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.EmailsKey(), s.store.ListEmails)
}

func (s *Service) Email(ctx context.Context, id string) (model.Email, error) {
	if err := s.authorize(); err != nil {
		return model.Email{}, err
	}
	return cache.Fetch(ctx, s.cache, cache.EmailKey(id), func(ctx context.Context) (model.Email, error) {
		return s.store.GetEmail(ctx, id)
	})
}

func (s *Service) SearchEmails(ctx context.Context, query string) ([]model.Email, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.SearchKey(query), func(ctx context.Context) ([]model.Email, error) {
		return s.store.SearchEmails(ctx, query)
	})
}

// MarkRead marks the email read and updates every cached view of it.
// Marking an already read email succeeds without changes.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.store.MarkEmailRead(ctx, id); err != nil {
		s.failure(ctx, msgMarkReadFailed, err)
		return fmt.Errorf("mark email %s read: %w", id, err)
	}

	cache.Update(s.cache, cache.EmailKey(id), func(e model.Email) model.Email {
		e.Read = true
		return e
	})
	cache.Update(s.cache, cache.EmailsKey(), func(list []model.Email) []model.Email {
		return markRead(list, id)
	})
	cache.UpdateScope(s.cache, cache.ScopeSearch, func(_ cache.Key, list []model.Email) []model.Email {
		return markRead(list, id)
	})
	return nil
}

// OpenEmail returns the email and marks it read the first time it is opened.
func (s *Service) OpenEmail(ctx context.Context, id string) (model.Email, error) {
	email, err := s.Email(ctx, id)
	if err != nil {
		return model.Email{}, err
	}
	if email.Read {
		return email, nil
	}
	if err := s.MarkRead(ctx, id); err != nil {
		return email, err
	}
	email.Read = true
	return email, nil
}

// Summarize asks the store for a summary. Nothing is persisted or cached.
func (s *Service) Summarize(ctx context.Context, id string) (model.EmailSummaryResult, error) {
	if err := s.authorize(); err != nil {
		return model.EmailSummaryResult{}, err
	}
	result, err := s.store.SummarizeEmail(ctx, id)
	if err != nil {
		s.failure(ctx, msgSummarizeFailed, err)
		return model.EmailSummaryResult{}, fmt.Errorf("summarize email %s: %w", id, err)
	}
	s.success(ctx, msgSummarized)
	return result, nil
}

// SaveSummaryTasks persists the tasks of a summary result, stopping at the
// first failure. It returns the tasks saved so far.
func (s *Service) SaveSummaryTasks(ctx context.Context, result model.EmailSummaryResult) ([]model.Task, error) {
	saved := make([]model.Task, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		task, err := s.CreateTask(ctx, model.InputFromTask(t))
		if err != nil {
			return saved, err
		}
		saved = append(saved, task)
	}
	return saved, nil
}

// markRead returns list with email id marked read, copying only when needed.
func markRead(list []model.Email, id string) []model.Email {
	idx := -1
	for i, e := range list {
		if e.ID == id && !e.Read {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list
	}
	out := make([]model.Email, len(list))
	copy(out, list)
	out[idx].Read = true
	return out
}
