package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/pkg/utils"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func parseInt64(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

// respondError maps domain error kinds to their fixed status and message;
// anything else becomes a generic 500 so internals never leak.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return utils.Error(c, domainErr.Status, domainErr.Message)
	}
	return utils.Error(c, fiber.StatusInternalServerError, fallback)
}
