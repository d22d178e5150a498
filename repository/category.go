package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

type CategoryRepository interface {
	GetOwned(ctx context.Context, id, userID int64) (*domain.Category, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	// DeleteDetaching removes the category after nulling category_id on
	// every task that points at it, in one transaction.
	DeleteDetaching(ctx context.Context, id int64) error
}
