package repository

import (
	"context"

	"github.com/taskhive/backend/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	// Revoke flags the token. Rows are never hard-deleted.
	Revoke(ctx context.Context, token string) error
}
