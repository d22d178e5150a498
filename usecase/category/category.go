package category

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type UseCase struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{categories: categories, logger: logger}
}

func (uc *UseCase) List(ctx context.Context, userID int64) ([]domain.Category, error) {
	return uc.categories.ListByUser(ctx, userID)
}

func (uc *UseCase) Create(ctx context.Context, userID int64, name, color string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "Category name is required")
	}
	return uc.categories.Create(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	})
}

// Delete removes the owner's category after detaching every task that
// points at it. The tasks survive uncategorized.
func (uc *UseCase) Delete(ctx context.Context, categoryID, userID int64) error {
	category, err := uc.categories.GetOwned(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if err := uc.categories.DeleteDetaching(ctx, category.ID); err != nil {
		return err
	}
	uc.logger.Info("category deleted", zap.Int64("category_id", categoryID), zap.Int64("user_id", userID))
	return nil
}
