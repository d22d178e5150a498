package domain

import "time"

// TaskShare grants another user visibility into a task they do not own.
// CanEdit optionally extends the grant to mutations, subject to the
// sharing configuration.
type TaskShare struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"taskId"`
	OwnerID      int64     `json:"ownerId"`
	SharedWithID int64     `json:"sharedWithId"`
	CanEdit      bool      `json:"canEdit"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SharedTask is a task visible through a share, annotated with the
// owner's public identity.
type SharedTask struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Status   Status           `json:"status"`
	Priority Priority         `json:"priority"`
	DueDate  *time.Time       `json:"dueDate,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
	CanEdit  bool             `json:"canEdit"`
	Owner    PublicIdentity   `json:"owner"`
}
