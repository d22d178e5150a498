package category

import (
	"context"
	"testing"

	"github.com/taskhive/backend/domain"
)

type fakeCategoryRepo struct {
	categories map[int64]*domain.Category
	nextID     int64
	detached   []int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*domain.Category), nextID: 1}
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
	category.ID = f.nextID
	f.nextID++
	f.categories[category.ID] = category
	return category, nil
}

func (f *fakeCategoryRepo) DeleteDetaching(_ context.Context, id int64) error {
	f.detached = append(f.detached, id)
	delete(f.categories, id)
	return nil
}

func TestCreateRequiresName(t *testing.T) {
	uc := New(newFakeCategoryRepo(), nil)

	for _, name := range []string{"", "   "} {
		_, err := uc.Create(context.Background(), 1, name, "")
		if !domain.IsDomainError(err, domain.ErrCodeValidation) {
			t.Errorf("Create(%q): expected VALIDATION_ERROR, got %v", name, err)
		}
	}
}

func TestCreateKeepsOwner(t *testing.T) {
	uc := New(newFakeCategoryRepo(), nil)

	created, err := uc.Create(context.Background(), 7, "Work", "#FF0000")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UserID != 7 {
		t.Errorf("userID = %d, want 7", created.UserID)
	}
	if created.Color != "#FF0000" {
		t.Errorf("color = %q, want passthrough", created.Color)
	}
}

func TestDeleteForeignCategoryNotFound(t *testing.T) {
	repo := newFakeCategoryRepo()
	repo.categories[1] = &domain.Category{ID: 1, UserID: 9, Name: "theirs"}
	uc := New(repo, nil)

	err := uc.Delete(context.Background(), 1, 2)
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if len(repo.detached) != 0 {
		t.Error("foreign category must not be deleted")
	}
}

func TestDeleteDetaches(t *testing.T) {
	repo := newFakeCategoryRepo()
	repo.categories[1] = &domain.Category{ID: 1, UserID: 2, Name: "mine"}
	uc := New(repo, nil)

	if err := uc.Delete(context.Background(), 1, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.detached) != 1 || repo.detached[0] != 1 {
		t.Errorf("detach calls = %v, want [1]", repo.detached)
	}
}
