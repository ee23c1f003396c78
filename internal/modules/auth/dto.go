package auth

import "salescrm/internal/modules/session"

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

// SignUpResult carries either a session or a pending confirmation.
type SignUpResult struct {
	Session             *session.Session `json:"session,omitempty"`
	PendingConfirmation bool             `json:"pending_confirmation"`
	Message             string           `json:"message"`
}

const (
	msgSignedIn        = "Successfully signed in!"
	msgSignedUp        = "Account created and signed in successfully!"
	msgPendingConfirm  = "Account created! Please check your email to confirm your account."
	msgSignedOut       = "Successfully signed out!"
	msgEmailConfirmed  = "Email confirmed! Welcome to your CRM."
	msgResendAccepted  = "If that account is waiting for confirmation, a new link is on its way."
	msgNoActiveSession = "No active session"
)
