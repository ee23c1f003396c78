package repository

import (
	"context"
	"time"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

// RefreshTokenRepository provides DB access for refresh tokens.
type RefreshTokenRepository struct {
	db *DB
}

func NewRefreshTokenRepository(db *DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return apperr.Remote("refresh_tokens.create", r.db.conn(ctx).Create(t).Error)
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.conn(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, apperr.Remote("refresh_tokens.get", err)
	}
	return &t, nil
}

// Revoke revokes an active token. It reports false when the token was
// already revoked, which means it lost a race with another refresh.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string, replacedByID *string) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{"revoked_at": now}
	if replacedByID != nil {
		updates["replaced_by_id"] = *replacedByID
	}
	res := r.db.conn(ctx).Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, apperr.Remote("refresh_tokens.revoke", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *RefreshTokenRepository) RevokeBySession(ctx context.Context, sessionID string) error {
	now := time.Now().UTC()
	err := r.db.conn(ctx).Model(&domain.RefreshToken{}).
		Where("session_id = ? AND revoked_at IS NULL", sessionID).
		Update("revoked_at", now).Error
	return apperr.Remote("refresh_tokens.revoke_session", err)
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res := r.db.conn(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, apperr.Remote("refresh_tokens.delete_expired", res.Error)
}
