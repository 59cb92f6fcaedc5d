package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// UserLookup fetches the public projection of a user (no password hash).
type UserLookup interface {
	GetProfileByID(ctx context.Context, id string) (*domain.User, error)
}

// Resolver turns the session cookie of a request into an Identity.
// Every failure resolves to Anonymous; it never returns an error.
type Resolver struct {
	cookies *SessionCookie
	tokens  *TokenManager
	users   UserLookup
	logger  *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(cookies *SessionCookie, tokens *TokenManager, users UserLookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cookies: cookies, tokens: tokens, users: users, logger: logger}
}

// Resolve reads the session cookie from c and resolves its owner.
func (r *Resolver) Resolve(c *fiber.Ctx) domain.Identity {
	token, ok := r.cookies.Read(c)
	if !ok {
		return domain.Anonymous()
	}
	return r.ResolveToken(c.UserContext(), token)
}

// ResolveToken verifies token and loads the user it names.
func (r *Resolver) ResolveToken(ctx context.Context, token string) domain.Identity {
	if token == "" {
		return domain.Anonymous()
	}
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return domain.Anonymous()
	}
	if claims.UserID == "" {
		return domain.Anonymous()
	}

	user, err := r.users.GetProfileByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Error("error getting current user", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		return domain.Anonymous()
	}
	if user == nil {
		return domain.Anonymous()
	}
	user.PasswordHash = ""
	return domain.Authenticated(user)
}
