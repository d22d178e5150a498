package repository

import (
	"context"
	"time"

	"github.com/taskhive/backend/domain"
)

// TaskSortField enumerates the columns a task listing may be ordered by.
type TaskSortField string

const (
	SortByDueDate   TaskSortField = "due_date"
	SortByCreatedAt TaskSortField = "created_at"
	SortByUpdatedAt TaskSortField = "updated_at"
	SortByPriority  TaskSortField = "priority"
	SortByStatus    TaskSortField = "status"
)

// TaskFilter bounds a task listing query. Zero values mean "no constraint".
type TaskFilter struct {
	UserID     int64
	Statuses   []domain.Status
	Priority   domain.Priority
	CategoryID int64
	Search     string
	DueAfter   *time.Time
	DueBefore  *time.Time
	SortField  TaskSortField
	SortAsc    bool
	Limit      int
	Offset     int
}

// TaskPatch carries a partial update; nil fields are left untouched.
// Category uses a double pointer so "reassign to nil" and "not provided"
// stay distinguishable.
type TaskPatch struct {
	Title          *string
	Description    *string
	Priority       *domain.Priority
	DueDate        **time.Time
	EstimatedHours *float64
	CategoryID     **int64
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	GetOwned(ctx context.Context, id, userID int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, int, error)
	CountByStatus(ctx context.Context, userID int64) (map[domain.Status]int, error)
	// Create persists the task and, when it is categorized, bumps the
	// category's task count in the same transaction.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// ApplyPatch applies the patch and reconciles category counts when the
	// assignment changed, atomically.
	ApplyPatch(ctx context.Context, task *domain.Task, patch TaskPatch) (*domain.Task, error)
	UpdateStatus(ctx context.Context, task *domain.Task, status domain.Status, completedAt *time.Time) error
	UpdatePriority(ctx context.Context, id int64, priority domain.Priority) error
	// Delete removes the task and decrements its category's count, atomically.
	Delete(ctx context.Context, task *domain.Task) error
}
