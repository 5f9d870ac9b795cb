package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

type scheduleReq struct {
	PatientEmail string `json:"patient_email" validate:"required,email"`
	DoctorEmail  string `json:"doctor_email" validate:"required,email"`
	Date         string `json:"appointment_date" validate:"required"`
	Time         string `json:"appointment_time" validate:"required"`
}

func (h *Handler) ScheduleAppointment(c *fiber.Ctx) error {
	var req scheduleReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	id, err := h.scheduler.Schedule(c.Context(), req.PatientEmail, req.DoctorEmail, req.Date, req.Time)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment_id": id})
}

type updateStatusReq struct {
	NewStatus    string `json:"newStatus" validate:"required,oneof=Confirmed Cancelled"`
	DoctorEmail  string `json:"doctorEmail" validate:"required,email"`
	PatientEmail string `json:"patientEmail" validate:"required,email"`
}

func (h *Handler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	appointmentID := c.Params("appointment_id")
	var req updateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	err := h.scheduler.UpdateStatus(c.Context(), appointmentID, models.AppointmentStatus(req.NewStatus), req.DoctorEmail, req.PatientEmail)
	if err != nil {
		return h.respondError(c, err)
	}
	if req.NewStatus == string(models.StatusCancelled) {
		return c.JSON(fiber.Map{"message": "Appointment cancelled and removed"})
	}
	return c.JSON(fiber.Map{"message": "Appointment status updated in both doctor and patient records"})
}

type rescheduleReq struct {
	Date string `json:"appointment_date" validate:"required"`
	Time string `json:"appointment_time" validate:"required"`
}

func (h *Handler) RescheduleAppointment(c *fiber.Ctx) error {
	appointmentID := c.Params("appointment_id")
	var req rescheduleReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	if err := h.scheduler.Reschedule(c.Context(), appointmentID, req.Date, req.Time); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Appointment rescheduled"})
}

type bookedTimesReq struct {
	DoctorEmail string `json:"doctorEmail" validate:"required,email"`
	Date        string `json:"appointment_date" validate:"required"`
}

func (h *Handler) GetBookedTimes(c *fiber.Ctx) error {
	var req bookedTimesReq
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: invalid body", apperrors.ErrValidation))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
	}

	times, err := h.scheduler.BookedTimes(c.Context(), req.DoctorEmail, req.Date)
	if err != nil {
		return h.respondError(c, err)
	}
	if times == nil {
		times = []string{}
	}
	return c.JSON(fiber.Map{"body": times})
}

func (h *Handler) GetAppointments(c *fiber.Ctx) error {
	email := c.Query("email")
	role, ok := models.ParseRole(c.Query("role"))
	if email == "" || !ok {
		return h.respondError(c, fmt.Errorf("%w: email and role query parameters are required", apperrors.ErrValidation))
	}

	appts, err := h.scheduler.Appointments(c.Context(), email, role)
	if err != nil {
		return h.respondError(c, err)
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return c.JSON(appts)
}
