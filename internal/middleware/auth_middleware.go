package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"vuttr/internal/apperrors"
	"vuttr/internal/models"
	"vuttr/internal/services"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "vuttr_jwt"

// userKey is the Locals key holding the resolved user for one request.
const userKey = "currentUser"

// Protect is the authorization gate. It extracts the session token from
// the Authorization header or the session cookie, validates it,
// resolves the user it belongs to and stores the user in the request
// context. Errors are forwarded to the boundary translator, never
// written here.
func Protect(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return apperrors.Unauthenticated("You are not logged in. Please log in to get access")
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			return err
		}

		user, err := authService.CurrentUser(c.UserContext(), claims)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RestrictTo limits a route to users whose role is in the allowed set.
// Must run after Protect.
func RestrictTo(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.Unauthenticated("You are not logged in. Please log in to get access")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return apperrors.Forbidden("You do not have permission to perform this action")
	}
}

// CurrentUser returns the user Protect resolved for this request, or
// nil on unprotected routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// extractToken reads the session token from "Authorization: Bearer" or
// falls back to the session cookie.
func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Cookies(SessionCookie)
}
