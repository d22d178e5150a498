package task

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

// Config controls how sharing interacts with write access.
type Config struct {
	// EditGrantsWrite lets a share with can_edit mutate the shared task
	// (update, status, priority). Delete and share management always
	// remain owner-only.
	EditGrantsWrite bool
}

type UseCase struct {
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
	shares     repository.ShareRepository
	users      repository.UserRepository
	cfg        Config
	logger     *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	shares repository.ShareRepository,
	users repository.UserRepository,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:      tasks,
		categories: categories,
		shares:     shares,
		users:      users,
		cfg:        cfg,
		logger:     logger,
	}
}

type operation int

const (
	opEdit operation = iota
	opOwnerOnly
)

// authorize resolves the task and checks the requester against ownership
// and, for edit operations, shared edit rights. Every task-scoped
// mutation goes through here.
func (uc *UseCase) authorize(ctx context.Context, taskID, userID int64, op operation) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID == userID {
		return task, nil
	}
	if op == opEdit && uc.cfg.EditGrantsWrite {
		share, err := uc.shares.GetForTask(ctx, taskID, userID)
		if err == nil && share.CanEdit {
			return task, nil
		}
		if err != nil && !domain.IsDomainError(err, domain.ErrCodeForbidden) {
			return nil, err
		}
	}
	return nil, domain.ErrTaskForbidden
}

// OptionalString is a field that may be absent, explicitly null, or set.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// OptionalID is like OptionalString for numeric references.
type OptionalID struct {
	Set   bool
	Null  bool
	Value int64
}

// CreateInput carries the fields accepted on task creation. DueDate is
// the raw RFC3339 string; empty means no due date.
type CreateInput struct {
	Title          string
	Description    string
	Priority       domain.Priority
	DueDate        string
	EstimatedHours *float64
	CategoryID     *int64
}

func (uc *UseCase) Create(ctx context.Context, userID int64, in CreateInput) (*domain.Task, error) {
	var details []domain.FieldError
	if !domain.ValidateTaskTitle(in.Title) {
		details = append(details, domain.FieldError{Field: "title", Message: "Title is required and max 200 characters"})
	}
	if in.Priority != "" && !domain.IsValidPriority(in.Priority) {
		details = append(details, domain.FieldError{Field: "priority", Message: "Invalid priority"})
	}
	dueDate, ok := parseDueDate(in.DueDate)
	if !ok {
		details = append(details, domain.FieldError{Field: "dueDate", Message: "Due date must be in the future"})
	}
	if len(details) > 0 {
		return nil, domain.NewValidationError(details)
	}

	var categoryID *int64
	if in.CategoryID != nil {
		category, err := uc.categories.GetOwned(ctx, *in.CategoryID, userID)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	task := &domain.Task{
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Status:         domain.StatusTodo,
		Priority:       priority,
		DueDate:        dueDate,
		EstimatedHours: in.EstimatedHours,
		CategoryID:     categoryID,
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task created", zap.Int64("task_id", created.ID), zap.Int64("user_id", userID))
	return created, nil
}

// Get fetches a single task scoped to its owner. The lookup is by
// (id, owner), so a foreign task reads as not found here.
func (uc *UseCase) Get(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	return uc.tasks.GetOwned(ctx, taskID, userID)
}

// UpdateInput is a partial update; nil/unset means "field not provided".
// DueDate and Category distinguish "not provided" from "set to null".
type UpdateInput struct {
	Title          *string
	Description    *string
	Priority       *domain.Priority
	DueDate        OptionalString
	EstimatedHours *float64
	Category       OptionalID
}

func (uc *UseCase) Update(ctx context.Context, taskID, userID int64, in UpdateInput) (*domain.Task, error) {
	task, err := uc.authorize(ctx, taskID, userID, opEdit)
	if err != nil {
		return nil, err
	}

	patch := repository.TaskPatch{
		Description:    in.Description,
		EstimatedHours: in.EstimatedHours,
	}
	var details []domain.FieldError

	if in.Title != nil {
		if !domain.ValidateTaskTitle(*in.Title) {
			details = append(details, domain.FieldError{Field: "title", Message: "Invalid title"})
		} else {
			patch.Title = in.Title
		}
	}
	if in.Priority != nil {
		if !domain.IsValidPriority(*in.Priority) {
			details = append(details, domain.FieldError{Field: "priority", Message: "Invalid priority"})
		} else {
			patch.Priority = in.Priority
		}
	}
	if in.DueDate.Set {
		if in.DueDate.Null {
			var cleared *time.Time
			patch.DueDate = &cleared
		} else if due, ok := parseDueDate(in.DueDate.Value); !ok {
			details = append(details, domain.FieldError{Field: "dueDate", Message: "Due date must be in the future"})
		} else {
			patch.DueDate = &due
		}
	}
	if in.Category.Set {
		if in.Category.Null {
			var cleared *int64
			patch.CategoryID = &cleared
		} else {
			// The category must belong to the task's owner, not the
			// requester; a shared editor cannot attach their own.
			category, err := uc.categories.GetOwned(ctx, in.Category.Value, task.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrCategoryNotFound) {
					details = append(details, domain.FieldError{Field: "category", Message: "Category not found"})
				} else {
					return nil, err
				}
			} else {
				id := category.ID
				ptr := &id
				patch.CategoryID = &ptr
			}
		}
	}

	// All field failures are reported together; nothing is applied.
	if len(details) > 0 {
		return nil, domain.NewValidationError(details)
	}

	return uc.tasks.ApplyPatch(ctx, task, patch)
}

func (uc *UseCase) UpdateStatus(ctx context.Context, taskID, userID int64, status domain.Status) (*domain.Task, error) {
	if !domain.IsValidStatus(status) {
		return nil, domain.NewError(domain.ErrCodeValidation, "Invalid status")
	}

	task, err := uc.authorize(ctx, taskID, userID, opEdit)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(task.Status, status) {
		return nil, domain.NewError(domain.ErrCodeBadRequest, "Invalid status transition")
	}

	var completedAt *time.Time
	if status == domain.StatusCompleted && task.CompletedAt == nil {
		now := time.Now()
		completedAt = &now
	}

	if err := uc.tasks.UpdateStatus(ctx, task, status, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) UpdatePriority(ctx context.Context, taskID, userID int64, priority domain.Priority) (*domain.Task, error) {
	if !domain.IsValidPriority(priority) {
		return nil, domain.NewError(domain.ErrCodeValidation, "Invalid priority")
	}

	task, err := uc.authorize(ctx, taskID, userID, opEdit)
	if err != nil {
		return nil, err
	}

	if err := uc.tasks.UpdatePriority(ctx, task.ID, priority); err != nil {
		return nil, err
	}
	task.Priority = priority
	return task, nil
}

func (uc *UseCase) Delete(ctx context.Context, taskID, userID int64) error {
	task, err := uc.authorize(ctx, taskID, userID, opOwnerOnly)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, task); err != nil {
		return err
	}
	uc.logger.Info("task deleted", zap.Int64("task_id", taskID), zap.Int64("user_id", userID))
	return nil
}

func (uc *UseCase) Share(ctx context.Context, taskID, userID, targetUserID int64, canEdit bool) error {
	task, err := uc.authorize(ctx, taskID, userID, opOwnerOnly)
	if err != nil {
		return err
	}

	if _, err := uc.users.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.NewError(domain.ErrCodeNotFound, "Target user not found")
		}
		return err
	}

	return uc.shares.Upsert(ctx, &domain.TaskShare{
		TaskID:       task.ID,
		OwnerID:      userID,
		SharedWithID: targetUserID,
		CanEdit:      canEdit,
	})
}

func (uc *UseCase) SharedWithMe(ctx context.Context, userID int64) ([]domain.SharedTask, error) {
	return uc.shares.ListSharedWith(ctx, userID)
}

// ListParams are the raw query parameters of a listing request. Paging
// values are strings on purpose: non-numeric input falls back to the
// defaults instead of failing.
type ListParams struct {
	Status   string
	Priority string
	Category string
	Search   string
	DueGte   string
	DueLte   string
	Page     string
	Limit    string
	SortBy   string
}

// ListItem is the row projection returned by listings.
type ListItem struct {
	ID       int64                   `json:"id"`
	Title    string                  `json:"title"`
	Status   domain.Status           `json:"status"`
	Priority domain.Priority         `json:"priority"`
	DueDate  *time.Time              `json:"dueDate,omitempty"`
	Category *domain.CategorySummary `json:"category"`
}

// Pagination describes the page of a listing result.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListResult bundles the page, its metadata and the status histogram over
// all of the user's tasks, independent of the active filters.
type ListResult struct {
	Tasks      []ListItem     `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
	Stats      map[string]int `json:"stats"`
}

func (uc *UseCase) List(ctx context.Context, userID int64, params ListParams) (*ListResult, error) {
	filter := buildFilter(userID, params)

	tasks, total, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := uc.tasks.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, ListItem{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Priority: t.Priority,
			DueDate:  t.DueDate,
			Category: t.Category,
		})
	}

	limit := filter.Limit
	page := filter.Offset/limit + 1

	return &ListResult{
		Tasks: items,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: (total + limit - 1) / limit,
		},
		Stats: renameStats(counts),
	}, nil
}

func buildFilter(userID int64, params ListParams) repository.TaskFilter {
	filter := repository.TaskFilter{UserID: userID}

	if params.Status != "" {
		for _, s := range strings.Split(params.Status, ",") {
			status := domain.Status(s)
			if domain.IsValidStatus(status) {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if params.Priority != "" {
		filter.Priority = domain.Priority(params.Priority)
	}
	if id, err := strconv.ParseInt(params.Category, 10, 64); err == nil {
		filter.CategoryID = id
	}
	filter.Search = params.Search
	if t, ok := parseTime(params.DueGte); ok {
		filter.DueAfter = &t
	}
	if t, ok := parseTime(params.DueLte); ok {
		filter.DueBefore = &t
	}

	page := parsePositive(params.Page, 1)
	limit := parsePositive(params.Limit, 10)
	if limit > maxPageSize {
		limit = 10
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	filter.SortField, filter.SortAsc = parseSort(params.SortBy)
	return filter
}

// maxPageSize bounds a single listing page; out-of-range requests fall
// back to the default size, like any other unusable paging input.
const maxPageSize = 100

func parsePositive(value string, fallback int) int {
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return n
	}
	return fallback
}

var sortFields = map[string]repository.TaskSortField{
	"dueDate":   repository.SortByDueDate,
	"createdAt": repository.SortByCreatedAt,
	"updatedAt": repository.SortByUpdatedAt,
	"priority":  repository.SortByPriority,
	"status":    repository.SortByStatus,
}

func parseSort(sortBy string) (repository.TaskSortField, bool) {
	field, direction, _ := strings.Cut(sortBy, ":")
	sortField, ok := sortFields[field]
	if !ok {
		sortField = repository.SortByCreatedAt
	}
	return sortField, direction == "asc"
}

// timeLayouts are the accepted timestamp inputs: full RFC3339 or a
// bare calendar date.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDueDate accepts an absent due date; a present one must parse and
// lie strictly in the future.
func parseDueDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, ok := parseTime(raw)
	if !ok {
		return nil, false
	}
	if !domain.ValidateDueDate(&t) {
		return nil, false
	}
	return &t, true
}

func renameStats(counts map[domain.Status]int) map[string]int {
	stats := make(map[string]int, len(counts))
	for status, count := range counts {
		key := string(status)
		if status == domain.StatusInProgress {
			key = "inProgress"
		}
		stats[key] = count
	}
	return stats
}
