package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"salescrm/internal/domain"
	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/pkg/validator"
)

type Options struct {
	RefreshTTL               time.Duration
	RequireEmailConfirmation bool
	// ConfirmationResendCooldown is the minimum gap between two
	// confirmation emails to the same user.
	ConfirmationResendCooldown time.Duration
}

// Service is the identity provider: it issues, refreshes and ends sessions
// and publishes every transition on the broker.
type Service struct {
	users    UserRepositoryInterface
	tokens   RefreshTokenRepositoryInterface
	tx       Transactor
	sessions session.Store
	broker   *session.Broker
	jwt      jwtService
	mailer   Mailer
	opts     Options
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	users UserRepositoryInterface,
	tokens RefreshTokenRepositoryInterface,
	tx Transactor,
	sessions session.Store,
	broker *session.Broker,
	jwt jwtService,
	mailer Mailer,
	opts Options,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		tx:       tx,
		sessions: sessions,
		broker:   broker,
		jwt:      jwt,
		mailer:   mailer,
		opts:     opts,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

// SignUp registers a user. With email confirmation required the user gets
// a confirmation link and no session until ConfirmEmail.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:          req.Email,
		PasswordHash:   hash,
		EmailConfirmed: !s.opts.RequireEmailConfirmation,
	}

	if s.opts.RequireEmailConfirmation {
		raw, tokenHash, err := generateOpaqueToken()
		if err != nil {
			return nil, err
		}
		// The user only exists once the link is out, so a mail failure
		// leaves the address free to sign up again.
		err = s.tx.Transaction(ctx, func(ctx context.Context) error {
			if err := s.users.Create(ctx, user, tokenHash); err != nil {
				return err
			}
			return s.mailer.SendConfirmation(ctx, user.Email, raw)
		})
		if err != nil {
			return nil, err
		}
		return &SignUpResult{PendingConfirmation: true, Message: msgPendingConfirm}, nil
	}

	if err := s.users.Create(ctx, user, ""); err != nil {
		return nil, err
	}
	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: sess, Message: msgSignedUp}, nil
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, apperr.Invalid("token", "required")
	}
	user, err := s.users.ConfirmByTokenHash(ctx, hashToken(token))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidConfirmationToken
	}
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

// ResendConfirmation mails a fresh confirmation link and invalidates the
// previous one. The reply never reveals whether the address is registered.
func (s *Service) ResendConfirmation(ctx context.Context, req ResendConfirmationRequest) (string, error) {
	if err := validator.Check(req); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Debug("confirmation resend for unknown email")
		return msgResendAccepted, nil
	}
	if err != nil {
		return "", err
	}
	if user.EmailConfirmed {
		return msgResendAccepted, nil
	}

	now := s.now()
	if user.ConfirmationSentAt != nil && now.Sub(*user.ConfirmationSentAt) < s.opts.ConfirmationResendCooldown {
		s.log.Debug("confirmation resend throttled", zap.String("user_id", user.ID))
		return msgResendAccepted, nil
	}

	raw, tokenHash, err := generateOpaqueToken()
	if err != nil {
		return "", err
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.users.SetConfirmationToken(ctx, user.ID, tokenHash, now); err != nil {
			return err
		}
		return s.mailer.SendConfirmation(ctx, user.Email, raw)
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return msgResendAccepted, nil
	}
	if err != nil {
		return "", err
	}
	return msgResendAccepted, nil
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*session.Session, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	return s.openSession(ctx, user)
}

// SignOut ends the principal's session and revokes its refresh tokens.
func (s *Service) SignOut(ctx context.Context, p session.Principal) error {
	if !p.Authenticated() {
		return apperr.ErrAuthentication
	}
	if err := s.sessions.Delete(ctx, p.UserID, p.SessionID); err != nil {
		return err
	}
	if err := s.tokens.RevokeBySession(ctx, p.SessionID); err != nil {
		return err
	}
	s.broker.Publish(session.Event{Type: session.SignedOut, Principal: p})
	return nil
}

// Authenticate resolves an access token to the principal of a live session.
// A valid token whose session was signed out is rejected.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (session.Principal, error) {
	d, err := s.CurrentSession(ctx, accessToken)
	if err != nil {
		return session.Principal{}, err
	}
	return d.Principal(), nil
}

func (s *Service) CurrentSession(ctx context.Context, accessToken string) (*session.Data, error) {
	claims, err := s.jwt.ValidateToken(accessToken)
	if err != nil {
		return nil, ErrSessionExpired
	}
	d, err := s.sessions.Get(ctx, claims.UserID, claims.SessionID())
	if errors.Is(err, session.ErrNoSession) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Refresh rotates a refresh token and issues a new access token for the
// same session.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*session.Session, error) {
	if refreshRaw == "" {
		return nil, apperr.Invalid("refresh_token", "required")
	}
	now := s.now()
	var result *session.Session

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		current, err := s.tokens.GetByHash(ctx, hashToken(refreshRaw))
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}
		if current.IsRevoked() || current.IsExpired(now) {
			return ErrInvalidRefreshToken
		}

		data, err := s.sessions.Get(ctx, current.UserID, current.SessionID)
		if errors.Is(err, session.ErrNoSession) {
			return ErrInvalidRefreshToken
		}
		if err != nil {
			return err
		}

		newRaw, newHash, err := generateOpaqueToken()
		if err != nil {
			return err
		}
		next := &domain.RefreshToken{
			UserID:    current.UserID,
			SessionID: current.SessionID,
			TokenHash: newHash,
			ExpiresAt: now.Add(s.opts.RefreshTTL),
		}
		if err := s.tokens.Create(ctx, next); err != nil {
			return err
		}
		ok, err := s.tokens.Revoke(ctx, current.ID, &next.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidRefreshToken
		}

		access, accessExp, err := s.jwt.GenerateToken(data.UserID, data.Email, data.ID)
		if err != nil {
			return err
		}

		data.LastActivityAt = now
		data.ExpiresAt = next.ExpiresAt
		if err := s.sessions.Save(ctx, data); err != nil {
			return err
		}

		result = &session.Session{
			ID:                   data.ID,
			User:                 data.Principal(),
			AccessToken:          access,
			AccessTokenExpiresAt: accessExp,
			RefreshToken:         newRaw,
			ExpiresAt:            data.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broker.Publish(session.Event{Type: session.TokenRefreshed, Principal: result.User})
	return result, nil
}

func (s *Service) openSession(ctx context.Context, user *domain.User) (*session.Session, error) {
	now := s.now()
	data := &session.Data{
		ID:             ulid.Make().String(),
		UserID:         user.ID,
		Email:          user.Email,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.opts.RefreshTTL),
	}

	access, accessExp, err := s.jwt.GenerateToken(user.ID, user.Email, data.ID)
	if err != nil {
		return nil, err
	}
	refreshRaw, refreshHash, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		SessionID: data.ID,
		TokenHash: refreshHash,
		ExpiresAt: data.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, data); err != nil {
		return nil, err
	}

	p := data.Principal()
	s.broker.Publish(session.Event{Type: session.SignedIn, Principal: p})
	s.log.Debug("session opened", zap.String("user_id", user.ID), zap.String("session_id", data.ID))

	return &session.Session{
		ID:                   data.ID,
		User:                 p,
		AccessToken:          access,
		AccessTokenExpiresAt: accessExp,
		RefreshToken:         refreshRaw,
		ExpiresAt:            data.ExpiresAt,
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
