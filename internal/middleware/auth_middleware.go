package middleware

import (
	"strings"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	PrincipalKey        = "principal" // Key for storing the domain.Principal in fiber.Ctx locals
)

// Protected requires a valid bearer access token and stores the resulting
// domain.Principal in the request locals.
func Protected(tokens service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}

		principal, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			logger.Get().Debug("Rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by Protected.
func PrincipalFrom(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(domain.Principal)
	return p, ok && p.ID != ""
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}
