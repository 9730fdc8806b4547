package service

import (
	"context"
	"fmt"

	"mailtriage/internal/cache"
	"mailtriage/internal/model"
)

func (s *Service) Tasks(ctx context.Context) ([]model.Task, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.TasksKey(), s.store.ListTasks)
}

func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	if err := s.authorize(); err != nil {
		return model.Task{}, err
	}
	return cache.Fetch(ctx, s.cache, cache.TaskKey(id), func(ctx context.Context) (model.Task, error) {
		return s.store.GetTask(ctx, id)
	})
}

func (s *Service) TasksByEmail(ctx context.Context, emailID string) ([]model.Task, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.TasksByEmailKey(emailID), func(ctx context.Context) ([]model.Task, error) {
		return s.store.ListTasksByEmail(ctx, emailID)
	})
}

func (s *Service) CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error) {
	if err := s.authorize(); err != nil {
		return model.Task{}, err
	}
	task, err := s.store.CreateTask(ctx, input)
	if err != nil {
		s.failure(ctx, msgTaskAddFailed, err)
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}

	cache.Update(s.cache, cache.TasksKey(), func(list []model.Task) []model.Task {
		return upsertTask(list, task)
	})
	s.cache.Set(cache.TaskKey(task.ID), task)
	if emailID := task.LinkedEmailID(); emailID != "" {
		cache.Update(s.cache, cache.TasksByEmailKey(emailID), func(list []model.Task) []model.Task {
			return upsertTask(list, task)
		})
	}
	s.success(ctx, msgTaskAdded)
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := s.authorize(); err != nil {
		return model.Task{}, err
	}
	task, err := s.store.UpdateTask(ctx, id, patch)
	if err != nil {
		s.failure(ctx, msgTaskUpdateFailed, err)
		return model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	cache.Update(s.cache, cache.TasksKey(), func(list []model.Task) []model.Task {
		return upsertTask(list, task)
	})
	s.cache.Set(cache.TaskKey(task.ID), task)

	// The previous link is not known for certain, so every cached per-email
	// list drops the task and the current one gets it back.
	emailID := task.LinkedEmailID()
	cache.UpdateScope(s.cache, cache.ScopeTasksByEmail, func(key cache.Key, list []model.Task) []model.Task {
		if key.ID == emailID {
			return upsertTask(list, task)
		}
		return removeTask(list, task.ID)
	})
	s.success(ctx, msgTaskUpdated)
	return task, nil
}

// CompleteTask is UpdateTask setting only the completed flag.
func (s *Service) CompleteTask(ctx context.Context, id string, completed bool) (model.Task, error) {
	return s.UpdateTask(ctx, id, model.TaskPatch{Completed: &completed})
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		s.failure(ctx, msgTaskRemoveFailed, err)
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	cache.Update(s.cache, cache.TasksKey(), func(list []model.Task) []model.Task {
		return removeTask(list, id)
	})
	s.cache.Invalidate(cache.TaskKey(id))
	cache.UpdateScope(s.cache, cache.ScopeTasksByEmail, func(_ cache.Key, list []model.Task) []model.Task {
		return removeTask(list, id)
	})
	s.success(ctx, msgTaskRemoved)
	return nil
}

// upsertTask returns a copy of list with task replaced in place or appended.
func upsertTask(list []model.Task, task model.Task) []model.Task {
	out := make([]model.Task, 0, len(list)+1)
	replaced := false
	for _, t := range list {
		if t.ID == task.ID {
			out = append(out, task)
			replaced = true
			continue
		}
		out = append(out, t)
	}
	if !replaced {
		out = append(out, task)
	}
	return out
}

// removeTask returns list without task id, copying only when it is present.
func removeTask(list []model.Task, id string) []model.Task {
	for i, t := range list {
		if t.ID != id {
			continue
		}
		out := make([]model.Task, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}
	return list
}
