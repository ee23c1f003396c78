package domain

import "time"

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email" validate:"required,email"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// ConfirmationSentAt is when the last confirmation link went out.
	ConfirmationSentAt *time.Time `json:"-"`
}
