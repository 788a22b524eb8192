package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"collab-match-backend/internal/models"
	"collab-match-backend/internal/repository"
)

// TaskInput holds the fields of a new task
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskPatch is a partial update; nil fields are left unchanged
type TaskPatch struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	AssignedTo    *string            `json:"assigned_to"`
	Status        *models.TaskStatus `json:"status"`
	DueDate       *time.Time         `json:"due_date"`
	ClearAssignee bool               `json:"clear_assignee"`
	ClearDueDate  bool               `json:"clear_due_date"`
}

// TaskService manages the shared task board of a match
type TaskService struct {
	store  *repository.Store
	collab *CollaborationService
	limits Limits
}

// NewTaskService creates a new task service
func NewTaskService(store *repository.Store, collab *CollaborationService, limits Limits) *TaskService {
	return &TaskService{store: store, collab: collab, limits: limits.withDefaults()}
}

// CreateTask adds a pending task to an active match
func (s *TaskService) CreateTask(ctx context.Context, matchID string, in TaskInput) (*models.Task, error) {
	match, err := s.collab.ActiveMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	title, err := s.checkTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if err := s.checkDescription(in.Description); err != nil {
		return nil, err
	}
	if in.AssignedTo != nil {
		if err := s.checkAssignee(ctx, match, *in.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		MatchID:     matchID,
		Title:       title,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		Status:      models.TaskPending,
		DueDate:     in.DueDate,
	}
	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask returns a task of an active match
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task", taskID)
		}
		return nil, err
	}
	if _, err := s.collab.ActiveMatch(ctx, task.MatchID); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask merges patch into the task. Any status transition is allowed.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) (*models.Task, error) {
	current, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	match, err := s.collab.ActiveMatch(ctx, current.MatchID)
	if err != nil {
		return nil, err
	}

	var title string
	if patch.Title != nil {
		if title, err = s.checkTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if err := s.checkDescription(*patch.Description); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidf("unknown task status %q", *patch.Status)
	}
	if patch.AssignedTo != nil && !patch.ClearAssignee {
		if err := s.checkAssignee(ctx, match, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	task, err := s.store.Tasks.Update(ctx, taskID, func(t *models.Task) error {
		if patch.Title != nil {
			t.Title = title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		switch {
		case patch.ClearAssignee:
			t.AssignedTo = nil
		case patch.AssignedTo != nil:
			assignee := *patch.AssignedTo
			t.AssignedTo = &assignee
		}
		switch {
		case patch.ClearDueDate:
			t.DueDate = nil
		case patch.DueDate != nil:
			due := *patch.DueDate
			t.DueDate = &due
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task", taskID)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task and reports whether it existed
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return false, nil
	}
	if _, err := s.collab.ActiveMatch(ctx, task.MatchID); err != nil {
		return false, err
	}
	return s.store.Tasks.Delete(ctx, taskID), nil
}

// ListTasks returns the tasks of an active match, oldest first
func (s *TaskService) ListTasks(ctx context.Context, matchID string) ([]models.Task, error) {
	if _, err := s.collab.ActiveMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return s.store.Tasks.ListByMatch(ctx, matchID), nil
}

func (s *TaskService) checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalidf("task title is required")
	}
	if utf8.RuneCountInString(title) > s.limits.TitleMax {
		return "", invalidf("task title longer than %d characters", s.limits.TitleMax)
	}
	return title, nil
}

func (s *TaskService) checkDescription(description string) error {
	if utf8.RuneCountInString(description) > s.limits.DescriptionMax {
		return invalidf("task description longer than %d characters", s.limits.DescriptionMax)
	}
	return nil
}

func (s *TaskService) checkAssignee(ctx context.Context, match *models.Match, userID string) error {
	ok, err := s.collab.IsParticipant(ctx, match, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidAssignee
	}
	return nil
}
