package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/events"
	"github.com/riyagarg17/CS520-Team5/internal/metrics"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/notifier"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
)

// Service owns every mutation of appointment data. An appointment lives as
// two denormalized copies, one under each owner record, and the store offers
// no transaction across them; this service maintains the copy invariant with
// a fixed write order (patient first, then doctor) and surfaces a partial
// write instead of pretending atomicity exists.
type Service struct {
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	notifier notifier.Notifier
	events   events.Publisher
	logger   *zap.SugaredLogger
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	n notifier.Notifier,
	pub events.Publisher,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		patients: patients,
		doctors:  doctors,
		notifier: n,
		events:   pub,
		logger:   logger,
	}
}

// Schedule books a new appointment with status Pending and returns its id.
// The identical appointment value is appended under the patient and then the
// doctor; the doctor-side append carries the slot-uniqueness guard, so a
// concurrent scheduler that slips past the read check still loses at the
// store. The loser's patient copy is compensated back out.
func (s *Service) Schedule(ctx context.Context, patientEmail, doctorEmail, date, timeSlot string) (string, error) {
	if patientEmail == "" || doctorEmail == "" || date == "" || timeSlot == "" {
		return "", fmt.Errorf("%w: patient_email, doctor_email, date and time are required", apperrors.ErrValidation)
	}
	patientEmail = models.NormalizeEmail(patientEmail)
	doctorEmail = models.NormalizeEmail(doctorEmail)

	patient, err := s.patients.FindByEmail(ctx, patientEmail)
	if err != nil {
		return "", fmt.Errorf("patient %s: %w", patientEmail, err)
	}
	doctor, err := s.doctors.FindByEmail(ctx, doctorEmail)
	if err != nil {
		return "", fmt.Errorf("doctor %s: %w", doctorEmail, err)
	}

	for i := range doctor.Appointments {
		a := &doctor.Appointments[i]
		if a.Date == date && a.Time == timeSlot && a.Status != models.StatusCancelled {
			metrics.SlotConflicts.Inc()
			return "", apperrors.ErrSlotTaken
		}
	}

	appt := models.Appointment{
		AppointmentID: uuid.New().String(),
		PatientEmail:  patient.Email,
		PatientName:   patient.Name,
		DoctorEmail:   doctor.Email,
		DoctorName:    doctor.Name,
		Date:          date,
		Time:          timeSlot,
		Status:        models.StatusPending,
	}

	if err := s.patients.AppendAppointment(ctx, patient.Email, appt); err != nil {
		return "", fmt.Errorf("persist patient copy: %w", err)
	}

	if err := s.doctors.AppendAppointmentIfFree(ctx, doctor.Email, appt); err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			// Lost the race after the patient copy landed; take it back.
			metrics.SlotConflicts.Inc()
			if pullErr := s.patients.PullAppointment(ctx, patient.Email, appt.AppointmentID); pullErr != nil {
				metrics.PartialWriteFailures.Inc()
				s.logger.Errorw("orphaned patient copy after slot conflict",
					"appointment_id", appt.AppointmentID, "patient", patient.Email, "error", pullErr)
				return "", fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, pullErr)
			}
			return "", apperrors.ErrSlotTaken
		}
		metrics.PartialWriteFailures.Inc()
		s.logger.Errorw("doctor copy write failed after patient copy",
			"appointment_id", appt.AppointmentID, "doctor", doctor.Email, "error", err)
		return "", fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, err)
	}

	if err := s.doctors.AddPatientLink(ctx, doctor.Email, models.PatientLink{
		Email: patient.Email,
		Name:  patient.Name,
	}); err != nil {
		metrics.PartialWriteFailures.Inc()
		return "", fmt.Errorf("%w: record patient link: %v", apperrors.ErrPartialWrite, err)
	}

	metrics.AppointmentsScheduled.Inc()
	s.events.Publish(ctx, events.NewAppointmentEvent("scheduled", appt))
	return appt.AppointmentID, nil
}

// UpdateStatus confirms or cancels an appointment on both owner records.
// Cancellation deletes the copies outright. The appointment must be present
// on both sides before anything is written: a copy present on exactly one
// side is a prior consistency violation and gets surfaced, not patched over.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID string, newStatus models.AppointmentStatus, doctorEmail, patientEmail string) error {
	if appointmentID == "" || doctorEmail == "" || patientEmail == "" {
		return fmt.Errorf("%w: appointment_id, doctor_email and patient_email are required", apperrors.ErrValidation)
	}
	if newStatus != models.StatusConfirmed && newStatus != models.StatusCancelled {
		return fmt.Errorf("%w: status must be Confirmed or Cancelled", apperrors.ErrValidation)
	}
	doctorEmail = models.NormalizeEmail(doctorEmail)
	patientEmail = models.NormalizeEmail(patientEmail)

	appt, err := s.requireBothCopies(ctx, appointmentID, patientEmail, doctorEmail)
	if err != nil {
		return err
	}

	if newStatus == models.StatusCancelled {
		if err := s.patients.PullAppointment(ctx, patientEmail, appointmentID); err != nil {
			return fmt.Errorf("remove patient copy: %w", err)
		}
		if err := s.doctors.PullAppointment(ctx, doctorEmail, appointmentID); err != nil {
			metrics.PartialWriteFailures.Inc()
			s.logger.Errorw("doctor copy removal failed after patient copy removed",
				"appointment_id", appointmentID, "doctor", doctorEmail, "error", err)
			return fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, err)
		}
	} else {
		if err := s.patients.SetAppointmentStatus(ctx, patientEmail, appointmentID, newStatus); err != nil {
			return fmt.Errorf("update patient copy: %w", err)
		}
		if err := s.doctors.SetAppointmentStatus(ctx, doctorEmail, appointmentID, newStatus); err != nil {
			metrics.PartialWriteFailures.Inc()
			s.logger.Errorw("doctor copy update failed after patient copy updated",
				"appointment_id", appointmentID, "doctor", doctorEmail, "error", err)
			return fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, err)
		}
	}

	s.notifyStatusChange(patientEmail, newStatus)

	appt.Status = newStatus
	eventType := "confirmed"
	if newStatus == models.StatusCancelled {
		eventType = "cancelled"
	}
	s.events.Publish(ctx, events.NewAppointmentEvent(eventType, *appt))
	return nil
}

// Reschedule moves an appointment to a new slot and resets it to Pending on
// both copies. The owners are located through the doctor copy's embedded
// patient email.
func (s *Service) Reschedule(ctx context.Context, appointmentID, newDate, newTime string) error {
	if appointmentID == "" || newDate == "" || newTime == "" {
		return fmt.Errorf("%w: appointment_id, date and time are required", apperrors.ErrValidation)
	}

	doctor, err := s.doctors.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("appointment %s: %w", appointmentID, err)
	}
	var patientEmail string
	for i := range doctor.Appointments {
		a := &doctor.Appointments[i]
		if a.AppointmentID == appointmentID {
			patientEmail = a.PatientEmail
			continue
		}
		// The target slot is subject to the same uniqueness rule as a fresh
		// booking; only the appointment being moved is exempt.
		if a.Date == newDate && a.Time == newTime && a.Status != models.StatusCancelled {
			metrics.SlotConflicts.Inc()
			return apperrors.ErrSlotTaken
		}
	}

	appt, err := s.requireBothCopies(ctx, appointmentID, patientEmail, doctor.Email)
	if err != nil {
		return err
	}

	if err := s.patients.SetAppointmentSlot(ctx, patientEmail, appointmentID, newDate, newTime); err != nil {
		return fmt.Errorf("update patient copy: %w", err)
	}
	if err := s.doctors.SetAppointmentSlotIfFree(ctx, doctor.Email, appointmentID, newDate, newTime); err != nil {
		if errors.Is(err, apperrors.ErrSlotTaken) {
			// A concurrent booking claimed the slot between the read check
			// and this write; move the patient copy back.
			metrics.SlotConflicts.Inc()
			if restoreErr := s.restorePatientCopy(ctx, patientEmail, appt); restoreErr != nil {
				metrics.PartialWriteFailures.Inc()
				s.logger.Errorw("patient copy left on new slot after conflict",
					"appointment_id", appointmentID, "patient", patientEmail, "error", restoreErr)
				return fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, restoreErr)
			}
			return apperrors.ErrSlotTaken
		}
		metrics.PartialWriteFailures.Inc()
		s.logger.Errorw("doctor copy update failed after patient copy updated",
			"appointment_id", appointmentID, "doctor", doctor.Email, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrPartialWrite, err)
	}

	appt.Date = newDate
	appt.Time = newTime
	appt.Status = models.StatusPending
	s.events.Publish(ctx, events.NewAppointmentEvent("rescheduled", *appt))
	return nil
}

// BookedTimes returns the set of times already held for the doctor on the
// given date, cancelled appointments excluded. The result is exactly the set
// a concurrent Schedule call would be rejected for.
func (s *Service) BookedTimes(ctx context.Context, doctorEmail, date string) ([]string, error) {
	if doctorEmail == "" || date == "" {
		return nil, fmt.Errorf("%w: doctor_email and date are required", apperrors.ErrValidation)
	}
	doctor, err := s.doctors.FindByEmail(ctx, models.NormalizeEmail(doctorEmail))
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorEmail, err)
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range doctor.Appointments {
		a := &doctor.Appointments[i]
		if a.Date != date || a.Status == models.StatusCancelled {
			continue
		}
		if _, dup := seen[a.Time]; dup {
			continue
		}
		seen[a.Time] = struct{}{}
		out = append(out, a.Time)
	}
	sort.Slice(out, func(i, j int) bool { return lessClock(out[i], out[j]) })
	return out, nil
}

// Appointments returns one owner's appointment list ordered by (date, time)
// ascending, ties broken by insertion order.
func (s *Service) Appointments(ctx context.Context, ownerEmail string, role models.Role) ([]models.Appointment, error) {
	ownerEmail = models.NormalizeEmail(ownerEmail)
	var appts []models.Appointment
	switch role {
	case models.RolePatient:
		p, err := s.patients.FindByEmail(ctx, ownerEmail)
		if err != nil {
			return nil, err
		}
		appts = p.Appointments
	case models.RoleDoctor:
		d, err := s.doctors.FindByEmail(ctx, ownerEmail)
		if err != nil {
			return nil, err
		}
		appts = d.Appointments
	default:
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return lessClock(appts[i].Time, appts[j].Time)
	})
	return appts, nil
}

// requireBothCopies reads both owner records and verifies the appointment is
// present on each, returning the doctor-side copy.
func (s *Service) requireBothCopies(ctx context.Context, appointmentID, patientEmail, doctorEmail string) (*models.Appointment, error) {
	patient, err := s.patients.FindByEmail(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", patientEmail, err)
	}
	doctor, err := s.doctors.FindByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", doctorEmail, err)
	}

	inPatient := containsAppointment(patient.Appointments, appointmentID)
	var doctorCopy *models.Appointment
	for i := range doctor.Appointments {
		if doctor.Appointments[i].AppointmentID == appointmentID {
			doctorCopy = &doctor.Appointments[i]
			break
		}
	}

	if !inPatient || doctorCopy == nil {
		if inPatient != (doctorCopy != nil) {
			s.logger.Errorw("appointment copies diverged",
				"appointment_id", appointmentID,
				"on_patient", inPatient, "on_doctor", doctorCopy != nil)
		}
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, apperrors.ErrNotFound)
	}
	cp := *doctorCopy
	return &cp, nil
}

// restorePatientCopy puts a patient-side appointment back to the slot and
// status it held before a failed move.
func (s *Service) restorePatientCopy(ctx context.Context, patientEmail string, prev *models.Appointment) error {
	if err := s.patients.SetAppointmentSlot(ctx, patientEmail, prev.AppointmentID, prev.Date, prev.Time); err != nil {
		return err
	}
	if prev.Status == models.StatusPending {
		return nil
	}
	return s.patients.SetAppointmentStatus(ctx, patientEmail, prev.AppointmentID, prev.Status)
}

// notifyStatusChange emails the patient after persistence. Best-effort: the
// caller never waits and a delivery failure never rolls anything back.
func (s *Service) notifyStatusChange(patientEmail string, status models.AppointmentStatus) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		body := fmt.Sprintf("Your appointment has been %s", status)
		if err := s.notifier.Send(ctx, patientEmail, "Appointment Status changed", body); err != nil {
			s.logger.Warnw("status notification failed", "to", patientEmail, "error", err)
		}
	}()
}

func containsAppointment(appts []models.Appointment, id string) bool {
	for i := range appts {
		if appts[i].AppointmentID == id {
			return true
		}
	}
	return false
}

// lessClock orders clock strings like "9:00 AM" / "2:30 PM"; values that do
// not parse fall back to lexical order.
func lessClock(a, b string) bool {
	ta, errA := time.Parse("3:04 PM", a)
	tb, errB := time.Parse("3:04 PM", b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}
