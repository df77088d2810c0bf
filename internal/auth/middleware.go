package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal is the authenticated operator attached to a request.
type Principal struct {
	User *domain.User
}

// AuthMiddleware authenticates requests via Bearer session tokens.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs the middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle parses the Authorization header and loads the operator.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return errorutil.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return errorutil.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		return errorutil.NewUnauthorized("unknown operator")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// PrincipalFromContext returns the request's authenticated operator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}

// RequireRole ensures the operator has one of the allowed roles. With no
// roles given, any authenticated operator passes.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("operator required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
