package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/repository"
)

// Config carries the token-issuance settings the use case needs.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

type UseCase struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	cfg    Config
	logger *zap.Logger
}

func New(users repository.UserRepository, tokens repository.TokenRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterResult bundles the created identity with its first token pair.
type RegisterResult struct {
	User   domain.PublicIdentity `json:"user"`
	Tokens domain.TokenPair      `json:"tokens"`
}

func (uc *UseCase) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	var details []domain.FieldError
	if !domain.ValidateUsername(username) {
		details = append(details, domain.FieldError{Field: "username", Message: "Username must be at least 3 characters"})
	}
	if !domain.ValidateEmail(email) {
		details = append(details, domain.FieldError{Field: "email", Message: "Invalid email format"})
	}
	if !domain.ValidatePassword(password) {
		details = append(details, domain.FieldError{Field: "password", Message: "Password must be at least 6 chars and contain a number"})
	}
	if len(details) > 0 {
		return nil, domain.NewValidationError(details)
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "Email already exists")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.NewError(domain.ErrCodeConflict, "Username already exists")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := uc.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return &RegisterResult{User: user.Public(), Tokens: *tokens}, nil
}

func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	if !domain.ValidateEmail(email) || password == "" {
		return nil, domain.NewValidationError([]domain.FieldError{
			{Field: "email", Message: "Email is required"},
			{Field: "password", Message: "Password is required"},
		})
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "Invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "Invalid email or password")
	}

	tokens, err := uc.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return tokens, nil
}

func (uc *UseCase) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// Logout revokes the refresh token. A token that was never issued or is
// already dead is not an error; the session ends either way.
func (uc *UseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	token, err := uc.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil
		}
		return err
	}
	if !token.IsActive(time.Now()) {
		return nil
	}
	return uc.tokens.Revoke(ctx, refreshToken)
}

func (uc *UseCase) issueTokens(ctx context.Context, userID int64) (*domain.TokenPair, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    uc.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(uc.cfg.AccessTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return nil, err
	}

	refresh := &domain.RefreshToken{
		UserID:    userID,
		Token:     fmt.Sprintf("%s.%s", uuid.NewString(), uuid.NewString()),
		ExpiresAt: now.Add(uc.cfg.RefreshTTL),
	}
	if err := uc.tokens.Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int(uc.cfg.AccessTTL.Seconds()),
	}, nil
}
