// internal/app/system/auth/sessionmanager.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// minKeyLen is the minimum signing key length accepted in any environment.
const minKeyLen = 32

// defaultTokenTTL is used when no TTL is configured.
const defaultTokenTTL = 24 * time.Hour

// UserFetcher loads fresh user data for a verified token subject. Returning
// nil means the user no longer exists or is disabled, and the request is
// treated as signed-out.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager issues and verifies bearer tokens and fans out sign-in and
// sign-out transitions to registered listeners (the per-user caches depend
// on sign-out notifications to clear immediately, before the response is
// written).
type SessionManager struct {
	key      []byte
	issuer   string
	tokenTTL time.Duration
	fetcher  UserFetcher
	notifier *Notifier
	log      *zap.Logger
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionManager builds a SessionManager with the given HS256 signing key.
func NewSessionManager(key string, tokenTTL time.Duration, logger *zap.Logger) (*SessionManager, error) {
	if len(key) < minKeyLen {
		return nil, fmt.Errorf("session signing key must be at least %d bytes", minKeyLen)
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &SessionManager{
		key:      []byte(key),
		issuer:   "campushub",
		tokenTTL: tokenTTL,
		notifier: NewNotifier(),
		log:      logger,
	}, nil
}

// SetUserFetcher installs the fetcher used to load fresh user data on each
// request. Without a fetcher, tokens are trusted as issued.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// Notifier exposes the sign-in/sign-out event fanout for listener
// registration.
func (m *SessionManager) Notifier() *Notifier {
	return m.notifier
}

// IssueToken creates a signed bearer token for the user and emits a sign-in
// transition.
func (m *SessionManager) IssueToken(u *SessionUser) (string, time.Time, error) {
	now := time.Now().UTC()
	expiry := now.Add(m.tokenTTL)
	claims := sessionClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}

	m.notifier.SignIn(u)
	return signed, expiry, nil
}

// VerifyToken parses and validates a bearer token and resolves the current
// user. Invalid or expired tokens, and subjects the fetcher no longer
// recognizes, yield (nil, error).
func (m *SessionManager) VerifyToken(ctx context.Context, token string) (*SessionUser, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return m.key, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}

	if m.fetcher != nil {
		u := m.fetcher.FetchUser(ctx, claims.Subject)
		if u == nil {
			return nil, errors.New("unknown or disabled user")
		}
		return u, nil
	}

	return &SessionUser{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// SignOut emits a sign-out transition for the user. Listeners run
// synchronously so dependent caches are cleared before the caller responds.
func (m *SessionManager) SignOut(userID string) {
	m.notifier.SignOut(userID)
}
