package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const identityKey = "auth_identity"

// CurrentUser resolves the caller once per request and stores it in Locals.
// Anonymous callers are let through; handlers decide what they may do.
func CurrentUser(resolver *Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityKey, resolver.Resolve(c))
		return c.Next()
	}
}

// IdentityFromContext returns the identity stored by CurrentUser, or Anonymous.
func IdentityFromContext(c *fiber.Ctx) domain.Identity {
	val := c.Locals(identityKey)
	if val == nil {
		return domain.Anonymous()
	}
	identity, ok := val.(domain.Identity)
	if !ok {
		return domain.Anonymous()
	}
	return identity
}
