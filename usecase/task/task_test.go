package task

import (
	"context"
	"testing"
	"time"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type fakeTaskRepo struct {
	tasks      map[int64]*domain.Task
	nextID     int64
	lastFilter repository.TaskFilter
	counts     map[domain.Status]int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*domain.Task), nextID: 1}
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) GetOwned(ctx context.Context, id, userID int64) (*domain.Task, error) {
	t, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	f.lastFilter = filter
	var out []domain.Task
	for _, t := range f.tasks {
		if t.UserID == filter.UserID {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (f *fakeTaskRepo) CountByStatus(_ context.Context, _ int64) (map[domain.Status]int, error) {
	if f.counts != nil {
		return f.counts, nil
	}
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		counts[s] = 0
	}
	for _, t := range f.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	task.ID = f.nextID
	f.nextID++
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	copied := *task
	f.tasks[task.ID] = &copied
	return task, nil
}

func (f *fakeTaskRepo) ApplyPatch(_ context.Context, task *domain.Task, patch repository.TaskPatch) (*domain.Task, error) {
	stored := f.tasks[task.ID]
	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Priority != nil {
		stored.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		stored.DueDate = *patch.DueDate
	}
	if patch.EstimatedHours != nil {
		stored.EstimatedHours = patch.EstimatedHours
	}
	if patch.CategoryID != nil {
		stored.CategoryID = *patch.CategoryID
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTaskRepo) UpdateStatus(_ context.Context, task *domain.Task, status domain.Status, completedAt *time.Time) error {
	stored := f.tasks[task.ID]
	stored.Status = status
	if completedAt != nil && stored.CompletedAt == nil {
		stored.CompletedAt = completedAt
	}
	task.Status = status
	task.CompletedAt = stored.CompletedAt
	return nil
}

func (f *fakeTaskRepo) UpdatePriority(_ context.Context, id int64, priority domain.Priority) error {
	f.tasks[id].Priority = priority
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, task *domain.Task) error {
	delete(f.tasks, task.ID)
	return nil
}

type fakeCategoryRepo struct {
	categories map[int64]*domain.Category
}

func (f *fakeCategoryRepo) GetOwned(_ context.Context, id, userID int64) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) ListByUser(_ context.Context, userID int64) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	return category, nil
}

func (f *fakeCategoryRepo) DeleteDetaching(_ context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

type fakeShareRepo struct {
	shares []domain.TaskShare
}

func (f *fakeShareRepo) Upsert(_ context.Context, share *domain.TaskShare) error {
	for i, s := range f.shares {
		if s.TaskID == share.TaskID && s.SharedWithID == share.SharedWithID {
			f.shares[i].CanEdit = share.CanEdit
			return nil
		}
	}
	f.shares = append(f.shares, *share)
	return nil
}

func (f *fakeShareRepo) GetForTask(_ context.Context, taskID, sharedWithID int64) (*domain.TaskShare, error) {
	for _, s := range f.shares {
		if s.TaskID == taskID && s.SharedWithID == sharedWithID {
			copied := s
			return &copied, nil
		}
	}
	return nil, domain.ErrTaskForbidden
}

func (f *fakeShareRepo) ListSharedWith(_ context.Context, userID int64) ([]domain.SharedTask, error) {
	var out []domain.SharedTask
	for _, s := range f.shares {
		if s.SharedWithID == userID {
			out = append(out, domain.SharedTask{ID: s.TaskID, CanEdit: s.CanEdit})
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	return user, nil
}

func newTestUseCase(cfg Config) (*UseCase, *fakeTaskRepo, *fakeCategoryRepo, *fakeShareRepo, *fakeUserRepo) {
	tasks := newFakeTaskRepo()
	categories := &fakeCategoryRepo{categories: make(map[int64]*domain.Category)}
	shares := &fakeShareRepo{}
	users := &fakeUserRepo{users: make(map[int64]*domain.User)}
	uc := New(tasks, categories, shares, users, cfg, nil)
	return uc, tasks, categories, shares, users
}

func seedTask(tasks *fakeTaskRepo, userID int64, status domain.Status) *domain.Task {
	t := &domain.Task{UserID: userID, Title: "seeded", Status: status, Priority: domain.PriorityMedium}
	created, _ := tasks.Create(context.Background(), t)
	return created
}

func TestCreateAppliesDefaults(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase(Config{})

	created, err := uc.Create(context.Background(), 1, CreateInput{Title: "Write report"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.StatusTodo {
		t.Errorf("status = %s, want todo", created.Status)
	}
	if created.Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want medium", created.Priority)
	}
}

func TestCreateAggregatesValidationErrors(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase(Config{})

	_, err := uc.Create(context.Background(), 1, CreateInput{
		Title:    "",
		Priority: domain.Priority("extreme"),
		DueDate:  "2020-01-01T00:00:00Z",
	})
	dErr, ok := domain.AsDomainError(err)
	if !ok || dErr.Code != domain.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(dErr.Details) != 3 {
		t.Errorf("details = %d, want 3 (title, priority, dueDate)", len(dErr.Details))
	}
}

func TestCreateAcceptsDateOnlyDueDate(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase(Config{})

	created, err := uc.Create(context.Background(), 1, CreateInput{
		Title:   "Plan ahead",
		DueDate: "2100-06-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DueDate == nil || created.DueDate.Year() != 2100 {
		t.Errorf("dueDate = %v, want the date-only value parsed", created.DueDate)
	}
}

func TestCreateRejectsForeignCategory(t *testing.T) {
	uc, _, categories, _, _ := newTestUseCase(Config{})
	categories.categories[5] = &domain.Category{ID: 5, UserID: 99, Name: "theirs"}

	categoryID := int64(5)
	_, err := uc.Create(context.Background(), 1, CreateInput{Title: "x", CategoryID: &categoryID})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for foreign category, got %v", err)
	}
}

func TestUpdateForeignTaskForbidden(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 2, domain.StatusTodo)

	title := "hijacked"
	_, err := uc.Update(context.Background(), task.ID, 1, UpdateInput{Title: &title})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUpdateMissingTaskNotFound(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase(Config{})

	title := "anything"
	_, err := uc.Update(context.Background(), 123, 1, UpdateInput{Title: &title})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateReportsCategoryAsFieldError(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)

	_, err := uc.Update(context.Background(), task.ID, 1, UpdateInput{
		Category: OptionalID{Set: true, Value: 42},
	})
	dErr, ok := domain.AsDomainError(err)
	if !ok || dErr.Code != domain.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(dErr.Details) != 1 || dErr.Details[0].Field != "category" {
		t.Fatalf("expected single category field error, got %+v", dErr.Details)
	}
}

func TestUpdateClearsDueDate(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)
	due := time.Now().Add(time.Hour)
	tasks.tasks[task.ID].DueDate = &due

	updated, err := uc.Update(context.Background(), task.ID, 1, UpdateInput{
		DueDate: OptionalString{Set: true, Null: true},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DueDate != nil {
		t.Error("expected due date to be cleared")
	}
}

func TestSharedEditGrantsWrite(t *testing.T) {
	uc, tasks, _, shares, _ := newTestUseCase(Config{EditGrantsWrite: true})
	task := seedTask(tasks, 2, domain.StatusTodo)
	shares.shares = append(shares.shares, domain.TaskShare{TaskID: task.ID, OwnerID: 2, SharedWithID: 1, CanEdit: true})

	title := "edited by recipient"
	if _, err := uc.Update(context.Background(), task.ID, 1, UpdateInput{Title: &title}); err != nil {
		t.Fatalf("expected shared editor to update, got %v", err)
	}

	// Delete stays owner-only regardless of the share.
	if err := uc.Delete(context.Background(), task.ID, 1); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected FORBIDDEN on delete, got %v", err)
	}
}

func TestSharedEditorCannotAttachOwnCategory(t *testing.T) {
	uc, tasks, categories, shares, _ := newTestUseCase(Config{EditGrantsWrite: true})
	task := seedTask(tasks, 1, domain.StatusTodo)
	shares.shares = append(shares.shares, domain.TaskShare{TaskID: task.ID, OwnerID: 1, SharedWithID: 2, CanEdit: true})
	categories.categories[77] = &domain.Category{ID: 77, UserID: 2, Name: "editor's own"}

	// Categories are checked against the task's owner, so the editor's
	// category reads as missing.
	_, err := uc.Update(context.Background(), task.ID, 2, UpdateInput{
		Category: OptionalID{Set: true, Value: 77},
	})
	dErr, ok := domain.AsDomainError(err)
	if !ok || dErr.Code != domain.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(dErr.Details) != 1 || dErr.Details[0].Field != "category" {
		t.Fatalf("expected category field error, got %+v", dErr.Details)
	}
	if tasks.tasks[task.ID].CategoryID != nil {
		t.Error("task must not reference a category owned by another user")
	}

	// The owner's category is fine even when set by the shared editor.
	categories.categories[5] = &domain.Category{ID: 5, UserID: 1, Name: "owner's"}
	updated, err := uc.Update(context.Background(), task.ID, 2, UpdateInput{
		Category: OptionalID{Set: true, Value: 5},
	})
	if err != nil {
		t.Fatalf("Update with owner's category: %v", err)
	}
	if updated.CategoryID == nil || *updated.CategoryID != 5 {
		t.Errorf("categoryID = %v, want 5", updated.CategoryID)
	}
}

func TestSharedEditIgnoredByDefault(t *testing.T) {
	uc, tasks, _, shares, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 2, domain.StatusTodo)
	shares.shares = append(shares.shares, domain.TaskShare{TaskID: task.ID, OwnerID: 2, SharedWithID: 1, CanEdit: true})

	title := "nope"
	_, err := uc.Update(context.Background(), task.ID, 1, UpdateInput{Title: &title})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected FORBIDDEN with sharing writes disabled, got %v", err)
	}
}

func TestUpdateStatusArchivedIsTerminal(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusArchived)

	_, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.StatusTodo)
	if !domain.IsDomainError(err, domain.ErrCodeBadRequest) {
		t.Fatalf("expected BAD_REQUEST for archived transition, got %v", err)
	}

	// Archived to archived is a no-op, not an error.
	if _, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.StatusArchived); err != nil {
		t.Fatalf("expected archived no-op to succeed, got %v", err)
	}
}

func TestUpdateStatusStampsCompletedAtOnce(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)

	updated, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("expected completedAt to be stamped")
	}
	first := *updated.CompletedAt

	// Cycle away and back; the original stamp survives.
	if _, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.StatusTodo); err != nil {
		t.Fatalf("UpdateStatus back to todo: %v", err)
	}
	again, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus completed again: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(first) {
		t.Errorf("completedAt changed on re-completion: %v vs %v", again.CompletedAt, first)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)

	_, err := uc.UpdateStatus(context.Background(), task.ID, 1, domain.Status("finished"))
	if !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestShareTargetUserNotFound(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)

	err := uc.Share(context.Background(), task.ID, 1, 77, false)
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for missing target, got %v", err)
	}
}

func TestShareUpsertsDuplicate(t *testing.T) {
	uc, tasks, _, shares, users := newTestUseCase(Config{})
	task := seedTask(tasks, 1, domain.StatusTodo)
	users.users[2] = &domain.User{ID: 2, Username: "peer"}

	if err := uc.Share(context.Background(), task.ID, 1, 2, false); err != nil {
		t.Fatalf("first share: %v", err)
	}
	if err := uc.Share(context.Background(), task.ID, 1, 2, true); err != nil {
		t.Fatalf("second share: %v", err)
	}
	if len(shares.shares) != 1 {
		t.Fatalf("expected one share row, got %d", len(shares.shares))
	}
	if !shares.shares[0].CanEdit {
		t.Error("expected can_edit to be raised by the second share")
	}
}

func TestListParamParsing(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	seedTask(tasks, 1, domain.StatusTodo)

	_, err := uc.List(context.Background(), 1, ListParams{
		Status: "todo,bogus,completed",
		Page:   "abc",
		Limit:  "-5",
		SortBy: "dueDate:asc",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	filter := tasks.lastFilter
	if len(filter.Statuses) != 2 {
		t.Errorf("statuses = %v, want the two valid entries", filter.Statuses)
	}
	if filter.Limit != 10 || filter.Offset != 0 {
		t.Errorf("limit/offset = %d/%d, want defaults 10/0", filter.Limit, filter.Offset)
	}
	if filter.SortField != repository.SortByDueDate || !filter.SortAsc {
		t.Errorf("sort = %s asc=%v, want due_date ascending", filter.SortField, filter.SortAsc)
	}
}

func TestListLimitOverMaxFallsBack(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	seedTask(tasks, 1, domain.StatusTodo)

	result, err := uc.List(context.Background(), 1, ListParams{Limit: "200"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// The query and the reported metadata must agree on one limit.
	if tasks.lastFilter.Limit != 10 {
		t.Errorf("filter limit = %d, want 10", tasks.lastFilter.Limit)
	}
	if result.Pagination.Limit != 10 {
		t.Errorf("pagination limit = %d, want 10", result.Pagination.Limit)
	}
}

func TestListDateOnlyDueBounds(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})

	_, err := uc.List(context.Background(), 1, ListParams{
		DueGte: "2100-01-01",
		DueLte: "2100-12-31T23:59:59Z",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	filter := tasks.lastFilter
	if filter.DueAfter == nil || filter.DueAfter.Year() != 2100 {
		t.Errorf("DueAfter = %v, want the date-only bound applied", filter.DueAfter)
	}
	if filter.DueBefore == nil {
		t.Error("DueBefore dropped for RFC3339 input")
	}
}

func TestListDefaultsSortToCreatedAtDesc(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})

	if _, err := uc.List(context.Background(), 1, ListParams{SortBy: "color:asc"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	filter := tasks.lastFilter
	if filter.SortField != repository.SortByCreatedAt || filter.SortAsc {
		t.Errorf("sort = %s asc=%v, want created_at descending", filter.SortField, filter.SortAsc)
	}
}

func TestListStatsRenamesInProgress(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	seedTask(tasks, 1, domain.StatusInProgress)
	seedTask(tasks, 1, domain.StatusTodo)

	result, err := uc.List(context.Background(), 1, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, leaked := result.Stats["in-progress"]; leaked {
		t.Error("stats still expose the raw in-progress key")
	}
	if result.Stats["inProgress"] != 1 {
		t.Errorf("stats[inProgress] = %d, want 1", result.Stats["inProgress"])
	}
	if result.Stats["todo"] != 1 || result.Stats["completed"] != 0 || result.Stats["archived"] != 0 {
		t.Errorf("unexpected histogram: %v", result.Stats)
	}
}

func TestListPaginationPages(t *testing.T) {
	uc, tasks, _, _, _ := newTestUseCase(Config{})
	for i := 0; i < 7; i++ {
		seedTask(tasks, 1, domain.StatusTodo)
	}

	result, err := uc.List(context.Background(), 1, ListParams{Limit: "3", Page: "2"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	p := result.Pagination
	if p.Total != 7 || p.Page != 2 || p.Limit != 3 || p.Pages != 3 {
		t.Errorf("pagination = %+v, want total 7, page 2, limit 3, pages 3", p)
	}
}
