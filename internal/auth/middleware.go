package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caseworks/servicedesk/internal/domain"
	"github.com/caseworks/servicedesk/pkg/apperrors"
)

const identityKey = "auth_identity"

// IdentityResolver turns a presented bearer token into a known user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
}

// Middleware validates bearer tokens and resolves the caller's identity.
// This is the gate every protected operation passes through.
type Middleware struct {
	resolver IdentityResolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(resolver IdentityResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	user, err := m.resolver.ResolveIdentity(c.Context(), parts[1])
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(identityKey, user)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated user.
func IdentityFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
