package services

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"macrolog/apperror"
	"macrolog/utils"

	"github.com/golang-jwt/jwt/v5"
)

type Session struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRedirect tells a client where to re-authenticate and after how long.
type SessionRedirect struct {
	URL               string `json:"redirect"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

type SessionOptions struct {
	Secret        []byte
	Issuer        string
	RedirectURL   string
	RedirectAfter time.Duration
}

// SessionManager validates bearer tokens issued by the identity provider.
type SessionManager struct {
	opts   SessionOptions
	parser *jwt.Parser
	closed atomic.Bool
}

var errSessionClosed = errors.New("session manager closed")

func NewSessionManager(opts SessionOptions) (*SessionManager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = "/auth"
	}
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(opts.Issuer))
	}
	return &SessionManager{opts: opts, parser: jwt.NewParser(popts...)}, nil
}

// Authenticate returns the session for a raw token. Every failure is ErrUnauthorized.
func (m *SessionManager) Authenticate(token string) (*Session, error) {
	if m.closed.Load() {
		return nil, apperror.Unauthorized(errSessionClosed.Error())
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	var claims jwt.RegisteredClaims
	_, err := m.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.opts.Secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperror.Unauthorized("session expired")
	case err != nil:
		return nil, apperror.Unauthorized("invalid session token")
	case claims.Subject == "":
		return nil, apperror.Unauthorized("session token has no subject")
	}
	return &Session{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Mint issues a token this manager accepts.
func (m *SessionManager) Mint(userID string, ttl time.Duration) (string, error) {
	return utils.GenerateJWT(userID, m.opts.Issuer, m.opts.Secret, ttl)
}

func (m *SessionManager) Redirect() SessionRedirect {
	return SessionRedirect{
		URL:               m.opts.RedirectURL,
		RetryAfterSeconds: int(m.opts.RedirectAfter / time.Second),
	}
}

// Close makes every later Authenticate fail.
func (m *SessionManager) Close() { m.closed.Store(true) }
