package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskSelect = `
	SELECT t.id, t.user_id, t.title, COALESCE(t.description, ''), t.status, t.priority,
	       t.due_date, t.completed_at, t.estimated_hours, t.category_id,
	       c.id, c.name, c.color,
	       t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
`

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) GetOwned(ctx context.Context, id, userID int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	where, args := buildTaskWhere(filter)

	countQuery := `SELECT COUNT(*) FROM tasks t ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("%s %s ORDER BY t.%s %s LIMIT $%d OFFSET $%d",
		taskSelect, where, sortColumn(filter.SortField), sortDirection(filter.SortAsc),
		len(args)+1, len(args)+2)
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, total, rows.Err()
}

func (r *taskRepository) CountByStatus(ctx context.Context, userID int64) (map[domain.Status]int, error) {
	const query = `
	SELECT status, COUNT(*)
	FROM tasks
	WHERE user_id = $1
	GROUP BY status
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
		INSERT INTO tasks (user_id, title, description, status, priority, due_date, estimated_hours, category_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRow(ctx, query,
			task.UserID,
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.DueDate,
			task.EstimatedHours,
			task.CategoryID,
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return err
		}

		if task.CategoryID != nil {
			return adjustTaskCount(ctx, tx, *task.CategoryID, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) ApplyPatch(ctx context.Context, task *domain.Task, patch repository.TaskPatch) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	set := []string{"updated_at = NOW()"}
	args := []interface{}{task.ID}
	next := 2

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.EstimatedHours != nil {
		add("estimated_hours", *patch.EstimatedHours)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}

	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $1 RETURNING updated_at", strings.Join(set, ", "))
		if err := tx.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		if patch.CategoryID != nil {
			oldID := task.CategoryID
			newID := *patch.CategoryID
			if !sameCategory(oldID, newID) {
				if oldID != nil {
					if err := adjustTaskCount(ctx, tx, *oldID, -1); err != nil {
						return err
					}
				}
				if newID != nil {
					if err := adjustTaskCount(ctx, tx, *newID, 1); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, task.ID)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, task *domain.Task, status domain.Status, completedAt *time.Time) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET status = $2,
	    completed_at = COALESCE(completed_at, $3),
	    updated_at = NOW()
	WHERE id = $1
	RETURNING completed_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query, task.ID, status, completedAt).
		Scan(&task.CompletedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	task.Status = status
	return nil
}

func (r *taskRepository) UpdatePriority(ctx context.Context, id int64, priority domain.Priority) error {
	const query = `UPDATE tasks SET priority = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, priority)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		if task.CategoryID != nil {
			return adjustTaskCount(ctx, tx, *task.CategoryID, -1)
		}
		return nil
	})
}

func adjustTaskCount(ctx context.Context, tx pgx.Tx, categoryID int64, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE categories SET task_count = task_count + $2, updated_at = NOW() WHERE id = $1`,
		categoryID, delta)
	return err
}

func buildTaskWhere(filter repository.TaskFilter) (string, []interface{}) {
	clauses := []string{"t.user_id = $1"}
	args := []interface{}{filter.UserID}
	next := 2

	add := func(clause string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf(clause, next))
		args = append(args, value)
		next++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("t.status = ANY($%d)", statuses)
	}
	if filter.Priority != "" {
		add("t.priority = $%d", string(filter.Priority))
	}
	if filter.CategoryID != 0 {
		add("t.category_id = $%d", filter.CategoryID)
	}
	if filter.Search != "" {
		add("t.title ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.DueAfter != nil {
		add("t.due_date >= $%d", *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		add("t.due_date <= $%d", *filter.DueBefore)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func sortColumn(field repository.TaskSortField) string {
	switch field {
	case repository.SortByDueDate, repository.SortByCreatedAt,
		repository.SortByUpdatedAt, repository.SortByPriority, repository.SortByStatus:
		return string(field)
	default:
		return string(repository.SortByCreatedAt)
	}
}

func sortDirection(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}

func sameCategory(a *int64, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		catID    *int64
		catName  *string
		catColor *string
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CompletedAt,
		&task.EstimatedHours,
		&task.CategoryID,
		&catID,
		&catName,
		&catColor,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if catID != nil && catName != nil && catColor != nil {
		task.Category = &domain.CategorySummary{ID: *catID, Name: *catName, Color: *catColor}
	}
	return &task, nil
}

// limitOrDefault guards against an unset filter; range policy lives in
// the caller so the query and its pagination metadata agree.
func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
