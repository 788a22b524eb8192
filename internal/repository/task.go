package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"collab-match-backend/internal/models"
)

// TaskRepository handles storage operations for tasks
type TaskRepository struct {
	items *Collection[models.Task]
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(ids *IDGenerator, now func() time.Time) *TaskRepository {
	return &TaskRepository{items: newCollection(schema[models.Task]{
		prefix: "task",
		id:     func(t *models.Task) *string { return &t.ID },
		stamp: func(t *models.Task, at time.Time) {
			if t.CreatedAt.IsZero() {
				t.CreatedAt = at
			}
		},
		clone: func(t models.Task) models.Task {
			t.AssignedTo = cloneStringPtr(t.AssignedTo)
			t.DueDate = cloneTimePtr(t.DueDate)
			return t
		},
	}, ids, now)}
}

// Create stores a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	created, err := r.items.Create(*task)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	*task = created
	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task, ok := r.items.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return &task, nil
}

// Update applies mutate to the stored task
func (r *TaskRepository) Update(ctx context.Context, id string, mutate func(*models.Task) error) (*models.Task, error) {
	task, err := r.items.Update(id, mutate)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task and reports whether it existed
func (r *TaskRepository) Delete(ctx context.Context, id string) bool {
	return r.items.Delete(id)
}

// ListByMatch returns the tasks of a match ordered by creation time
func (r *TaskRepository) ListByMatch(ctx context.Context, matchID string) []models.Task {
	tasks := r.items.Query(func(t *models.Task) bool { return t.MatchID == matchID })
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks
}
