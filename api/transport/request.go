package transport

import "encoding/json"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TaskCreateRequest carries the fields accepted on creation. DueDate is
// an RFC3339 string; an empty value means "no due date".
type TaskCreateRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       string   `json:"priority"`
	DueDate        string   `json:"dueDate"`
	EstimatedHours *float64 `json:"estimatedHours"`
	Category       *int64   `json:"category"`
}

// TaskUpdateRequest is a partial update; absent fields stay untouched.
// DueDate and Category are raw so an explicit null (clear the field) is
// distinguishable from the key being absent.
type TaskUpdateRequest struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	Priority       *string         `json:"priority"`
	DueDate        json.RawMessage `json:"dueDate"`
	EstimatedHours *float64        `json:"estimatedHours"`
	Category       json.RawMessage `json:"category"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type PriorityUpdateRequest struct {
	Priority string `json:"priority"`
}

type ShareRequest struct {
	TargetUserID int64 `json:"targetUserId"`
	CanEdit      bool  `json:"canEdit"`
}

type CategoryCreateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
