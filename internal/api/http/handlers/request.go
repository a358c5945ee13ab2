package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-raci/internal/api/dto"
	"github.com/spec-kit/process-raci/internal/auth"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// parseBody decodes the JSON body into req and checks its validation tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

// actorID returns the id of the authenticated member.
func actorID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.User.ID, nil
}
