package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultCookieName is the wire name of the session cookie.
const DefaultCookieName = "auth-token"

// ErrNoResponseContext is returned when a cookie operation runs outside a request.
var ErrNoResponseContext = errors.New("no response context")

// SessionCookie binds session tokens to the HTTP cookie that carries them.
type SessionCookie struct {
	name   string
	maxAge time.Duration
	secure bool
	logger *zap.Logger
}

// NewSessionCookie builds the adapter. secure should be true in production.
func NewSessionCookie(name string, maxAge time.Duration, secure bool, logger *zap.Logger) *SessionCookie {
	if name == "" {
		name = DefaultCookieName
	}
	if maxAge <= 0 {
		maxAge = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionCookie{name: name, maxAge: maxAge, secure: secure, logger: logger}
}

// Name returns the cookie name.
func (s *SessionCookie) Name() string {
	return s.name
}

// Set stores the token in the session cookie. A missing request is logged, not
// returned, since the caller's operation has already succeeded.
func (s *SessionCookie) Set(c *fiber.Ctx, token string) {
	if c == nil {
		s.logger.Warn("failed to set session cookie", zap.Error(ErrNoResponseContext))
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		Expires:  time.Now().Add(s.maxAge),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Read returns the token carried by the request, if any.
func (s *SessionCookie) Read(c *fiber.Ctx) (string, bool) {
	if c == nil {
		return "", false
	}
	token := c.Cookies(s.name)
	return token, token != ""
}

// Clear expires the session cookie. Clearing an absent cookie is not an error.
func (s *SessionCookie) Clear(c *fiber.Ctx) error {
	if c == nil {
		s.logger.Warn("failed removing session cookie", zap.Error(ErrNoResponseContext))
		return ErrNoResponseContext
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
