package auth

import (
	"errors"
	"fmt"

	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
)

var (
	ErrInvalidCredentials       = fmt.Errorf("%w: invalid login credentials", apperr.ErrAuthentication)
	ErrEmailNotConfirmed        = fmt.Errorf("%w: email not confirmed", apperr.ErrAuthentication)
	ErrInvalidRefreshToken      = fmt.Errorf("%w: invalid refresh token", apperr.ErrAuthentication)
	ErrSessionExpired           = fmt.Errorf("%w: %w", apperr.ErrAuthentication, session.ErrNoSession)
	ErrEmailAlreadyExists       = fmt.Errorf("%w: user already registered", apperr.ErrConflict)
	ErrInvalidConfirmationToken = errors.New("invalid or expired confirmation token")
)
