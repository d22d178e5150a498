package domain

import "time"

// Task represents a user-owned activity item.
type Task struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"userId"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Status         Status           `json:"status"`
	Priority       Priority         `json:"priority"`
	DueDate        *time.Time       `json:"dueDate,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	EstimatedHours *float64         `json:"estimatedHours,omitempty"`
	CategoryID     *int64           `json:"categoryId,omitempty"`
	Category       *CategorySummary `json:"category,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// CategorySummary is the projection of a category embedded in task rows.
type CategorySummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
