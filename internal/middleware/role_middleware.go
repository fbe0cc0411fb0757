package middleware

import (
	"strings"

	"github.com/raflytch/interview-assistant/internal/domain"
	"github.com/raflytch/interview-assistant/pkg/response"

	"github.com/gofiber/fiber/v2"
)

func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUserFromContext(c)
		if user == nil {
			return response.Unauthorized(c, "user not authenticated")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "this endpoint requires the "+joinRoles(roles)+" role")
	}
}

func RequireInterviewer() fiber.Handler {
	return RequireRole(domain.RoleInterviewer)
}

func joinRoles(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return strings.Join(names, " or ")
}
