package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

type ShareRepository interface {
	// Upsert creates the share or, when one already exists for the same
	// (task, recipient) pair, updates its can_edit flag.
	Upsert(ctx context.Context, share *domain.TaskShare) error
	GetForTask(ctx context.Context, taskID, sharedWithID int64) (*domain.TaskShare, error)
	ListSharedWith(ctx context.Context, userID int64) ([]domain.SharedTask, error)
}
