package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation of CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, color, task_count, created_at, updated_at`

func (r *categoryRepository) GetOwned(ctx context.Context, id, userID int64) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	return scanCategory(row)
}

func (r *categoryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.Color == "" {
		category.Color = domain.DefaultCategoryColor
	}

	const query = `
	INSERT INTO categories (user_id, name, color)
	VALUES ($1, $2, $3)
	RETURNING id, task_count, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		category.UserID,
		category.Name,
		category.Color,
	).Scan(&category.ID, &category.TaskCount, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) DeleteDetaching(ctx context.Context, id int64) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE tasks SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Color,
		&category.TaskCount,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}
