package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/riyagarg17/CS520-Team5/internal/handlers"
	"github.com/riyagarg17/CS520-Team5/internal/metrics"
	"github.com/riyagarg17/CS520-Team5/internal/middleware"
)

func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string, loginLimiter *middleware.RateLimiter) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(loginLimiter), h.Login)
	auth.Post("/verify-mfa", h.VerifyMFA)
	auth.Post("/resend-code", h.ResendCode)

	api.Post("/patients/register", h.RegisterPatient)
	api.Post("/doctors/register", h.RegisterDoctor)

	protected := api.Group("", middleware.JWTAuth(jwtSecret))

	protected.Post("/appointments", h.ScheduleAppointment)
	protected.Put("/appointments/:appointment_id/status", h.UpdateAppointmentStatus)
	protected.Put("/appointments/:appointment_id/slot", h.RescheduleAppointment)
	protected.Post("/appointments/booked-times", h.GetBookedTimes)
	protected.Get("/appointments", h.GetAppointments)

	protected.Get("/patients/health-details", h.GetHealthDetails)
	protected.Put("/patients/health-details", h.UpdateHealthDetails)
	protected.Get("/doctors", h.ListDoctors)
	protected.Get("/doctors/patients", h.GetDoctorPatients)
	protected.Post("/doctors/alert", h.AlertPatient)
}
