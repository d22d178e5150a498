package domain

import "time"

// User represents an authenticated identity in the platform.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PublicIdentity is the subset of a user safe to expose to other users.
type PublicIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicIdentity {
	return PublicIdentity{ID: u.ID, Username: u.Username, Email: u.Email}
}
