package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/scheduler"
	"github.com/riyagarg17/CS520-Team5/internal/services"
)

type Handler struct {
	scheduler *scheduler.Service
	auth      *services.AuthService
	profiles  *services.ProfileService
	logger    *zap.SugaredLogger
}

func NewHandler(sched *scheduler.Service, auth *services.AuthService, profiles *services.ProfileService, logger *zap.SugaredLogger) *Handler {
	return &Handler{scheduler: sched, auth: auth, profiles: profiles, logger: logger}
}

// respondError maps the stable error kinds onto HTTP statuses. Anything
// outside the taxonomy is a 500 with the detail kept out of the response.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": apperrors.ErrAlreadyRegistered.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": apperrors.ErrInvalidCredentials.Error()})
	case errors.Is(err, apperrors.ErrExpiredOrInvalidCode):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": apperrors.ErrExpiredOrInvalidCode.Error()})
	case errors.Is(err, apperrors.ErrSessionExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": apperrors.ErrSessionExpired.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSlotTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": apperrors.ErrSlotTaken.Error()})
	case errors.Is(err, apperrors.ErrDeliveryFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": apperrors.ErrDeliveryFailed.Error()})
	case errors.Is(err, apperrors.ErrPartialWrite):
		h.logger.Errorw("partial write surfaced to caller", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperrors.ErrPartialWrite.Error()})
	default:
		h.logger.Errorw("internal error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
