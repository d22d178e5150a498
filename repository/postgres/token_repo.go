package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation of TokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) repository.TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	if token == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO refresh_tokens (user_id, token, expires_at, revoked)
	VALUES ($1, $2, $3, FALSE)
	RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	const query = `
	SELECT id, user_id, token, expires_at, revoked, created_at
	FROM refresh_tokens
	WHERE token = $1
	`
	var rt domain.RefreshToken
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.Revoked,
		&rt.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
