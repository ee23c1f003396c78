package auth

import (
	"context"
	"time"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/jwt"
)

// UserRepositoryInterface lists only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User, confirmationHash string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ConfirmByTokenHash(ctx context.Context, hash string) (*domain.User, error)
	SetConfirmationToken(ctx context.Context, userID, hash string, sentAt time.Time) error
}

// RefreshTokenRepositoryInterface is the storage for refresh tokens
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedByID *string) (bool, error)
	RevokeBySession(ctx context.Context, sessionID string) error
}

type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type jwtService interface {
	GenerateToken(userID, email, sessionID string) (string, time.Time, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

// Mailer delivers the email confirmation link.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, token string) error
}
