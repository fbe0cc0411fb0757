package middleware

import (
	"errors"
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/pkg/jwt"
	"github.com/raflytch/interview-assistant/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const UserContextKey = "user"

type AuthMiddleware struct {
	authService domain.AuthService
}

func NewAuthMiddleware(authService domain.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "missing authorization header")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return response.Unauthorized(c, "invalid authorization header format")
		}

		token := parts[1]
		user, err := m.authService.ValidateToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				return response.Unauthorized(c, "token has expired")
			}
			return response.Unauthorized(c, "invalid or revoked token")
		}

		c.Locals(UserContextKey, user)
		return c.Next()
	}
}

func GetUserFromContext(c *fiber.Ctx) *domain.User {
	user, ok := c.Locals(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
