package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type shareRepository struct {
	pool *pgxpool.Pool
}

// NewShareRepository returns a Postgres-backed implementation of ShareRepository.
func NewShareRepository(pool *pgxpool.Pool) repository.ShareRepository {
	return &shareRepository{pool: pool}
}

func (r *shareRepository) Upsert(ctx context.Context, share *domain.TaskShare) error {
	if share == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO task_shares (task_id, owner_id, shared_with_id, can_edit)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (task_id, shared_with_id) DO UPDATE
	SET can_edit = EXCLUDED.can_edit
	RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		share.TaskID,
		share.OwnerID,
		share.SharedWithID,
		share.CanEdit,
	).Scan(&share.ID, &share.CreatedAt)
}

func (r *shareRepository) GetForTask(ctx context.Context, taskID, sharedWithID int64) (*domain.TaskShare, error) {
	const query = `
	SELECT id, task_id, owner_id, shared_with_id, can_edit, created_at
	FROM task_shares
	WHERE task_id = $1 AND shared_with_id = $2
	`
	var share domain.TaskShare
	if err := r.pool.QueryRow(ctx, query, taskID, sharedWithID).Scan(
		&share.ID,
		&share.TaskID,
		&share.OwnerID,
		&share.SharedWithID,
		&share.CanEdit,
		&share.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskForbidden
		}
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) ListSharedWith(ctx context.Context, userID int64) ([]domain.SharedTask, error) {
	const query = `
	SELECT t.id, t.title, t.status, t.priority, t.due_date,
	       c.id, c.name, c.color,
	       s.can_edit,
	       u.id, u.username, u.email
	FROM task_shares s
	JOIN tasks t ON t.id = s.task_id
	JOIN users u ON u.id = s.owner_id
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE s.shared_with_id = $1
	ORDER BY s.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shared []domain.SharedTask
	for rows.Next() {
		var item domain.SharedTask
		var (
			catID    *int64
			catName  *string
			catColor *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Status,
			&item.Priority,
			&item.DueDate,
			&catID,
			&catName,
			&catColor,
			&item.CanEdit,
			&item.Owner.ID,
			&item.Owner.Username,
			&item.Owner.Email,
		); err != nil {
			return nil, err
		}
		if catID != nil && catName != nil && catColor != nil {
			item.Category = &domain.CategorySummary{ID: *catID, Name: *catName, Color: *catColor}
		}
		shared = append(shared, item)
	}
	return shared, rows.Err()
}
