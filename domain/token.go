package domain

import "time"

// RefreshToken is an opaque, server-side persisted credential. Revocation
// is logical: the row is flagged, never deleted.
type RefreshToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t *RefreshToken) IsActive(reference time.Time) bool {
	if t == nil || t.Revoked {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return t.ExpiresAt.After(reference)
}

// TokenPair is the credential bundle issued on registration and login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}
