package repository

import (
	"context"

	"github.com/riyagarg17/CS520-Team5/internal/models"
)

// Every operation on these interfaces is atomic over a single record only.
// The store offers no multi-document transaction; callers that touch both a
// patient and a doctor record own the cross-record invariant themselves.

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	FindByEmail(ctx context.Context, email string) (*models.Patient, error)
	FindByEmails(ctx context.Context, emails []string) ([]models.Patient, error)
	UpdateHealthDetails(ctx context.Context, email string, hd models.HealthDetails) error

	AppendAppointment(ctx context.Context, email string, appt models.Appointment) error
	SetAppointmentStatus(ctx context.Context, email, appointmentID string, status models.AppointmentStatus) error
	SetAppointmentSlot(ctx context.Context, email, appointmentID, date, timeSlot string) error
	PullAppointment(ctx context.Context, email, appointmentID string) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	FindByEmail(ctx context.Context, email string) (*models.Doctor, error)
	FindByAppointmentID(ctx context.Context, appointmentID string) (*models.Doctor, error)
	List(ctx context.Context) ([]models.Doctor, error)

	// AppendAppointmentIfFree appends the appointment only if no
	// non-Cancelled appointment already occupies the same (date, time) on
	// this doctor. The guard and the append are one single-document update,
	// which is what closes the check-then-write race between concurrent
	// schedulers. Returns apperrors.ErrSlotTaken when the guard rejects.
	AppendAppointmentIfFree(ctx context.Context, email string, appt models.Appointment) error
	SetAppointmentStatus(ctx context.Context, email, appointmentID string, status models.AppointmentStatus) error

	// SetAppointmentSlotIfFree moves the appointment to the new (date, time)
	// and resets it to Pending, under the same slot guard as
	// AppendAppointmentIfFree; the appointment being moved does not block its
	// own target. Returns apperrors.ErrSlotTaken when another non-Cancelled
	// appointment holds the slot.
	SetAppointmentSlotIfFree(ctx context.Context, email, appointmentID, date, timeSlot string) error
	PullAppointment(ctx context.Context, email, appointmentID string) error

	// AddPatientLink is idempotent on the link's email.
	AddPatientLink(ctx context.Context, email string, link models.PatientLink) error
}
