package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := New("secret", time.Minute)

	tok, exp, err := svc.GenerateToken("user-1", "ana@x.com", "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID())
}

func TestService_Rejects(t *testing.T) {
	svc := New("secret", time.Minute)
	tok, _, err := svc.GenerateToken("user-1", "ana@x.com", "sess-1")
	require.NoError(t, err)

	_, err = New("other", time.Minute).ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := New("secret", -time.Minute).GenerateToken("user-1", "ana@x.com", "sess-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
