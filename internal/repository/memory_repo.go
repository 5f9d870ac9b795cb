package repository

import (
	"context"
	"sync"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
)

// In-memory implementations backing tests and local development. Each method
// holds the store mutex for its whole duration, which gives the same
// single-record atomicity the Mongo implementations get per document.

type MemoryPatientRepo struct {
	mu       sync.Mutex
	patients map[string]*models.Patient
}

func NewMemoryPatientRepo() *MemoryPatientRepo {
	return &MemoryPatientRepo{patients: make(map[string]*models.Patient)}
}

func (r *MemoryPatientRepo) Create(_ context.Context, p *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.Email]; ok {
		return apperrors.ErrAlreadyRegistered
	}
	cp := *p
	cp.Appointments = append([]models.Appointment(nil), p.Appointments...)
	r.patients[p.Email] = &cp
	return nil
}

func (r *MemoryPatientRepo) FindByEmail(_ context.Context, email string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	cp.Appointments = append([]models.Appointment(nil), p.Appointments...)
	return &cp, nil
}

func (r *MemoryPatientRepo) FindByEmails(_ context.Context, emails []string) ([]models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Patient
	for _, e := range emails {
		if p, ok := r.patients[e]; ok {
			cp := *p
			cp.Appointments = append([]models.Appointment(nil), p.Appointments...)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *MemoryPatientRepo) UpdateHealthDetails(_ context.Context, email string, hd models.HealthDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.HealthDetails = hd
	return nil
}

func (r *MemoryPatientRepo) AppendAppointment(_ context.Context, email string, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.Appointments = append(p.Appointments, appt)
	return nil
}

func (r *MemoryPatientRepo) SetAppointmentStatus(_ context.Context, email, appointmentID string, status models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range p.Appointments {
		if p.Appointments[i].AppointmentID == appointmentID {
			p.Appointments[i].Status = status
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryPatientRepo) SetAppointmentSlot(_ context.Context, email, appointmentID, date, timeSlot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range p.Appointments {
		if p.Appointments[i].AppointmentID == appointmentID {
			p.Appointments[i].Date = date
			p.Appointments[i].Time = timeSlot
			p.Appointments[i].Status = models.StatusPending
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryPatientRepo) PullAppointment(_ context.Context, email, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range p.Appointments {
		if p.Appointments[i].AppointmentID == appointmentID {
			p.Appointments = append(p.Appointments[:i], p.Appointments[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type MemoryDoctorRepo struct {
	mu      sync.Mutex
	doctors map[string]*models.Doctor
}

func NewMemoryDoctorRepo() *MemoryDoctorRepo {
	return &MemoryDoctorRepo{doctors: make(map[string]*models.Doctor)}
}

func copyDoctor(d *models.Doctor) *models.Doctor {
	cp := *d
	cp.Appointments = append([]models.Appointment(nil), d.Appointments...)
	cp.Patients = append([]models.PatientLink(nil), d.Patients...)
	return &cp
}

func (r *MemoryDoctorRepo) Create(_ context.Context, d *models.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[d.Email]; ok {
		return apperrors.ErrAlreadyRegistered
	}
	r.doctors[d.Email] = copyDoctor(d)
	return nil
}

func (r *MemoryDoctorRepo) FindByEmail(_ context.Context, email string) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyDoctor(d), nil
}

func (r *MemoryDoctorRepo) FindByAppointmentID(_ context.Context, appointmentID string) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		for i := range d.Appointments {
			if d.Appointments[i].AppointmentID == appointmentID {
				return copyDoctor(d), nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryDoctorRepo) List(_ context.Context) ([]models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, *copyDoctor(d))
	}
	return out, nil
}

func (r *MemoryDoctorRepo) AppendAppointmentIfFree(_ context.Context, email string, appt models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range d.Appointments {
		a := &d.Appointments[i]
		if a.Date == appt.Date && a.Time == appt.Time && a.Status != models.StatusCancelled {
			return apperrors.ErrSlotTaken
		}
	}
	d.Appointments = append(d.Appointments, appt)
	return nil
}

func (r *MemoryDoctorRepo) SetAppointmentStatus(_ context.Context, email, appointmentID string, status models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range d.Appointments {
		if d.Appointments[i].AppointmentID == appointmentID {
			d.Appointments[i].Status = status
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryDoctorRepo) SetAppointmentSlotIfFree(_ context.Context, email, appointmentID, date, timeSlot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range d.Appointments {
		a := &d.Appointments[i]
		if a.AppointmentID != appointmentID && a.Date == date && a.Time == timeSlot && a.Status != models.StatusCancelled {
			return apperrors.ErrSlotTaken
		}
	}
	for i := range d.Appointments {
		if d.Appointments[i].AppointmentID == appointmentID {
			d.Appointments[i].Date = date
			d.Appointments[i].Time = timeSlot
			d.Appointments[i].Status = models.StatusPending
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryDoctorRepo) PullAppointment(_ context.Context, email, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for i := range d.Appointments {
		if d.Appointments[i].AppointmentID == appointmentID {
			d.Appointments = append(d.Appointments[:i], d.Appointments[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *MemoryDoctorRepo) AddPatientLink(_ context.Context, email string, link models.PatientLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[email]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, l := range d.Patients {
		if l.Email == link.Email {
			return nil
		}
	}
	d.Patients = append(d.Patients, link)
	return nil
}
