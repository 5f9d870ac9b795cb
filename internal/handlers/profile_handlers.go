package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

type updateHealthReq struct {
	Email         string               `json:"email" validate:"required,email"`
	HealthDetails models.HealthDetails `json:"health_details"`
}

func (h *Handler) UpdateHealthDetails(c *fiber.Ctx) error {
	var req updateHealthReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	hd, err := h.profiles.UpdateHealthDetails(c.Context(), req.Email, req.HealthDetails)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Health details updated", "health_details": hd})
}

func (h *Handler) GetHealthDetails(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return h.respondError(c, fmt.Errorf("%w: email is required", apperrors.ErrValidation))
	}
	hd, err := h.profiles.HealthDetails(c.Context(), email)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"health_details": hd})
}

func (h *Handler) ListDoctors(c *fiber.Ctx) error {
	docs, err := h.profiles.Doctors(c.Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"body": docs})
}

type alertPatientReq struct {
	Email string `json:"email" validate:"required,email"`
}

// AlertPatient lets a doctor push a check-in email to one of their patients.
func (h *Handler) AlertPatient(c *fiber.Ctx) error {
	var req alertPatientReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}
	if err := h.profiles.AlertPatient(c.Context(), req.Email); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alert sent successfully"})
}

func (h *Handler) GetDoctorPatients(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return h.respondError(c, fmt.Errorf("%w: email is required", apperrors.ErrValidation))
	}
	patients, err := h.profiles.DoctorPatients(c.Context(), email)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"body": patients})
}
