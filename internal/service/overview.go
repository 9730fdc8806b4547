package service

import (
	"context"

	"mailtriage/internal/cache"
	"mailtriage/internal/derive"
	"mailtriage/internal/model"
)

// Overview derives the summary views from the cached inbox and task list.
func (s *Service) Overview(ctx context.Context) (derive.Views, error) {
	emails, err := s.Emails(ctx)
	if err != nil {
		return derive.Views{}, err
	}
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return derive.Views{}, err
	}
	return derive.Compute(emails, tasks, s.clock()), nil
}

// LinkedEmail resolves the email a task came from. ok is false when the task
// has no link or the email no longer exists.
func (s *Service) LinkedEmail(ctx context.Context, task model.Task) (model.Email, bool, error) {
	if task.LinkedEmailID() == "" {
		return model.Email{}, false, s.authorize()
	}
	emails, err := s.Emails(ctx)
	if err != nil {
		return model.Email{}, false, err
	}
	email, ok := derive.EmailForTask(emails, task)
	return email, ok, nil
}

// Refresh drops every cached result so the next reads hit the store.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.authorize(); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}

// InvalidateEmails drops cached inbox results, e.g. after new mail was imported.
func (s *Service) InvalidateEmails() {
	s.cache.InvalidateScope(cache.ScopeEmails)
	s.cache.InvalidateScope(cache.ScopeSearch)
}
