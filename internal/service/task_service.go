package service

import (
	"context"
	"errors"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
)

// CreateTaskInput is a decoded create payload. Nil means the field was absent.
type CreateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// UpdateTaskInput is a decoded partial update payload.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService applies the input rules and maps store failures onto
// ValidationError, domain.ErrTaskNotFound or *OpError.
type TaskService struct {
	store repository.TaskStore
}

func NewTaskService(store repository.TaskStore) *TaskService {
	return &TaskService{store: store}
}

func (s *TaskService) List(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, opListing, err)
	}
	observe(opListing, outcomeOK)
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			observe(opFetching, outcomeNotFound)
			return nil, domain.ErrTaskNotFound
		}
		return nil, s.fail(ctx, opFetching, err)
	}
	observe(opFetching, outcomeOK)
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if in.Title == nil || *in.Title == "" {
		observe(opCreating, outcomeInvalid)
		return nil, &ValidationError{Message: MsgTitleRequired}
	}

	t := &domain.Task{Title: *in.Title}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrTitleRequired) {
			observe(opCreating, outcomeInvalid)
			return nil, &ValidationError{Message: MsgTitleRequired}
		}
		return nil, s.fail(ctx, opCreating, err)
	}

	observe(opCreating, outcomeOK)
	logger.WithContext(ctx).Debug("task created", "task_id", t.ID)
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, in UpdateTaskInput) (*domain.Task, error) {
	if in.Title != nil && *in.Title == "" {
		observe(opUpdating, outcomeInvalid)
		return nil, &ValidationError{Message: MsgTitleEmpty}
	}

	t, err := s.store.Update(ctx, id, domain.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			observe(opUpdating, outcomeNotFound)
			return nil, domain.ErrTaskNotFound
		case errors.Is(err, domain.ErrTitleRequired):
			observe(opUpdating, outcomeInvalid)
			return nil, &ValidationError{Message: MsgTitleEmpty}
		}
		return nil, s.fail(ctx, opUpdating, err)
	}

	observe(opUpdating, outcomeOK)
	logger.WithContext(ctx).Debug("task updated", "task_id", t.ID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			observe(opDeleting, outcomeNotFound)
			return domain.ErrTaskNotFound
		}
		return s.fail(ctx, opDeleting, err)
	}

	observe(opDeleting, outcomeOK)
	logger.WithContext(ctx).Debug("task deleted", "task_id", id)
	return nil
}

// Ping reports store connectivity for health checks.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *TaskService) fail(ctx context.Context, op string, err error) error {
	observe(op, outcomeError)
	logger.WithContext(ctx).Error("task store failure", "op", op, "error", err)
	return &OpError{Op: op, Err: err}
}
