// Package session holds the identity of the acting user and the state of
// signed-in sessions. Nothing here is global: the Principal is resolved per
// request and passed explicitly to every service that writes.
package session

import (
	"errors"
	"time"
)

var ErrNoSession = errors.New("no active session")

// Principal is the acting user of a request.
type Principal struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
}

func (p Principal) Authenticated() bool {
	return p.UserID != "" && p.SessionID != ""
}

// Data is the server-side record of a session.
type Data struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func (d *Data) Principal() Principal {
	return Principal{UserID: d.UserID, Email: d.Email, SessionID: d.ID}
}

// Session is what a client holds after signing in.
type Session struct {
	ID                   string    `json:"id"`
	User                 Principal `json:"user"`
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
	RefreshToken         string    `json:"refresh_token,omitempty"`
	ExpiresAt            time.Time `json:"expires_at"`
}
