package services

import (
	"testing"
	"time"

	"macrolog/apperror"
	"macrolog/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-0123456789")

func newSessions(t *testing.T, issuer string) *SessionManager {
	sm, err := NewSessionManager(SessionOptions{Secret: testSecret, Issuer: issuer, RedirectURL: "https://id.example.com/login", RedirectAfter: 3 * time.Second})
	require.NoError(t, err)
	return sm
}

func TestSessionManager_RoundTrip(t *testing.T) {
	sm := newSessions(t, "macrolog")
	tok, err := sm.Mint("user-42", time.Hour)
	require.NoError(t, err)

	s, err := sm.Authenticate(" " + tok + " ")
	require.NoError(t, err)
	assert.Equal(t, "user-42", s.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)
}

func TestSessionManager_Rejects(t *testing.T) {
	sm := newSessions(t, "macrolog")

	expired, err := utils.GenerateJWT("u1", "macrolog", testSecret, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := utils.GenerateJWT("u1", "macrolog", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := utils.GenerateJWT("u1", "someone-else", testSecret, time.Hour)
	require.NoError(t, err)
	noSubject, err := utils.GenerateJWT("", "macrolog", testSecret, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "iss": "macrolog"}).SignedString(testSecret)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u1", "iss": "macrolog", "exp": time.Now().Add(time.Hour).Unix()}).SignedString(testSecret)
	require.NoError(t, err)

	tests := map[string]struct {
		token string
		msg   string
	}{
		"empty":        {"", "authentication required"},
		"garbage":      {"not-a-jwt", "invalid session token"},
		"expired":      {expired, "session expired"},
		"wrong key":    {wrongKey, "invalid session token"},
		"wrong issuer": {wrongIssuer, "invalid session token"},
		"no subject":   {noSubject, "session token has no subject"},
		"no expiry":    {noExpiry, "invalid session token"},
		"wrong alg":    {hs512, "invalid session token"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := sm.Authenticate(tt.token)
			require.ErrorIs(t, err, apperror.ErrUnauthorized)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestSessionManager_CloseAndRedirect(t *testing.T) {
	sm := newSessions(t, "")
	tok, err := sm.Mint("u1", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, SessionRedirect{URL: "https://id.example.com/login", RetryAfterSeconds: 3}, sm.Redirect())

	sm.Close()
	_, err = sm.Authenticate(tok)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = NewSessionManager(SessionOptions{})
	assert.Error(t, err)
}
