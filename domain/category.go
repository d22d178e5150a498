package domain

import "time"

// DefaultCategoryColor is applied when a category is created without one.
const DefaultCategoryColor = "#3B82F6"

// Category is a user-owned label with a denormalized count of the tasks
// currently assigned to it.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TaskCount int       `json:"taskCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Category) Summary() *CategorySummary {
	if c == nil {
		return nil
	}
	return &CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color}
}
