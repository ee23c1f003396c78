package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"salescrm/internal/domain"
	"salescrm/internal/pkg/apperr"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID                    string     `gorm:"column:id;primaryKey;size:36"`
	Email                 string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash          string     `gorm:"column:password_hash;not null"`
	EmailConfirmed        bool       `gorm:"column:email_confirmed;not null;default:false"`
	ConfirmationTokenHash *string    `gorm:"column:confirmation_token_hash;size:64;index"`
	ConfirmationSentAt    *time.Time `gorm:"column:confirmation_sent_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:             m.ID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		EmailConfirmed: m.EmailConfirmed,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,

		ConfirmationSentAt: m.ConfirmationSentAt,
	}
}

func toUserModel(u *domain.User) userModel {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	return userModel{
		ID:             id,
		Email:          normalizeEmail(u.Email),
		PasswordHash:   u.PasswordHash,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u. confirmationHash is stored when the account still has
// to be confirmed.
func (r *UserRepository) Create(ctx context.Context, u *domain.User, confirmationHash string) error {
	m := toUserModel(u)
	if confirmationHash != "" {
		now := time.Now()
		m.ConfirmationTokenHash = &confirmationHash
		m.ConfirmationSentAt = &now
	}
	if err := r.db.conn(ctx).Create(&m).Error; err != nil {
		return apperr.Remote("users.create", err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := r.db.conn(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&m).Error
	if err != nil {
		return nil, apperr.Remote("users.get_by_email", err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	if err := r.db.conn(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, apperr.Remote("users.get", err)
	}
	return toDomainUser(m), nil
}

// ConfirmByTokenHash marks the matching user confirmed and clears the token.
func (r *UserRepository) ConfirmByTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	var m userModel
	err := r.db.conn(ctx).
		Where("confirmation_token_hash = ?", hash).
		First(&m).Error
	if err != nil {
		return nil, apperr.Remote("users.confirm", err)
	}

	err = r.db.conn(ctx).Model(&userModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"email_confirmed":         true,
			"confirmation_token_hash": nil,
		}).Error
	if err != nil {
		return nil, apperr.Remote("users.confirm", err)
	}
	m.EmailConfirmed = true
	m.ConfirmationTokenHash = nil
	return toDomainUser(m), nil
}

// SetConfirmationToken replaces the confirmation token of an unconfirmed
// user. It reports ErrNotFound once the user is confirmed.
func (r *UserRepository) SetConfirmationToken(ctx context.Context, userID, hash string, sentAt time.Time) error {
	res := r.db.conn(ctx).Model(&userModel{}).
		Where("id = ? AND email_confirmed = ?", userID, false).
		Updates(map[string]any{
			"confirmation_token_hash": hash,
			"confirmation_sent_at":    sentAt,
		})
	if res.Error != nil {
		return apperr.Remote("users.set_confirmation_token", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
