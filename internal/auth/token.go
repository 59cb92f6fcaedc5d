package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long issued tokens remain valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

const tokenPrefixLen = 10

var (
	// ErrSigning is returned when a token cannot be signed, e.g. the secret is missing.
	ErrSigning = errors.New("token signing failed")
	// ErrTokenInvalid covers bad signatures, malformed payloads and expired tokens.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration, logger *zap.Logger, opts ...TokenOption) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tm := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes the session token payload.
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TTL returns the token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for the user, valid from now until now+TTL.
func (tm *TokenManager) Issue(userID, name string) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: secret not configured", ErrSigning)
	}
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return tokenString, expiresAt, nil
}

// Verify validates signature and expiry and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if len(tm.secret) == 0 {
		return nil, fmt.Errorf("%w: secret not configured", ErrTokenInvalid)
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		tm.logger.Debug("token verification failed",
			zap.String("token_prefix", tokenPrefix(tokenStr)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrTokenInvalid)
	}
	return claims, nil
}

func tokenPrefix(token string) string {
	if len(token) <= tokenPrefixLen {
		return token
	}
	return token[:tokenPrefixLen]
}
