package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/notifier"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
	"github.com/riyagarg17/CS520-Team5/internal/risk"
	"github.com/riyagarg17/CS520-Team5/internal/storage"
)

// ProfileService covers registration and profile reads/updates around the
// two core components.
type ProfileService struct {
	patients   repository.PatientRepository
	doctors    repository.DoctorRepository
	licenses   storage.LicenseStore
	classifier risk.Classifier
	notifier   notifier.Notifier
	logger     *zap.SugaredLogger
}

func NewProfileService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	licenses storage.LicenseStore,
	classifier risk.Classifier,
	n notifier.Notifier,
	logger *zap.SugaredLogger,
) *ProfileService {
	return &ProfileService{
		patients:   patients,
		doctors:    doctors,
		licenses:   licenses,
		classifier: classifier,
		notifier:   n,
		logger:     logger,
	}
}

type RegisterPatientInput struct {
	Email    string
	Name     string
	DOB      string
	Gender   string
	Password string
	Pincode  int
}

func (s *ProfileService) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*models.Patient, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := &models.Patient{
		Email:         models.NormalizeEmail(in.Email),
		Name:          in.Name,
		DOB:           in.DOB,
		Gender:        in.Gender,
		PasswordHash:  string(hash),
		Pincode:       in.Pincode,
		Appointments:  []models.Appointment{},
		HealthDetails: models.HealthDetails{},
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	out := p.PublicProfile()
	return &out, nil
}

type RegisterDoctorInput struct {
	Email      string
	Name       string
	DOB        string
	Gender     string
	Password   string
	Pincode    int
	Experience int
	License    []byte
	LicenseCT  string
}

func (s *ProfileService) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*models.Doctor, error) {
	if len(in.License) == 0 {
		return nil, fmt.Errorf("%w: medical license is required", apperrors.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email := models.NormalizeEmail(in.Email)
	key := fmt.Sprintf("licenses/%s/%s", email, uuid.New().String())
	if err := s.licenses.Upload(ctx, key, in.LicenseCT, in.License); err != nil {
		return nil, fmt.Errorf("store medical license: %w", err)
	}

	d := &models.Doctor{
		Email:        email,
		Name:         in.Name,
		DOB:          in.DOB,
		Gender:       in.Gender,
		PasswordHash: string(hash),
		Pincode:      in.Pincode,
		Experience:   in.Experience,
		LicenseKey:   key,
		Patients:     []models.PatientLink{},
		Appointments: []models.Appointment{},
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	out := d.PublicProfile()
	return &out, nil
}

// UpdateHealthDetails stores a new health-metric snapshot and asks the
// external classifier for the derived zone. A classifier failure keeps the
// previous zone rather than blocking the update.
func (s *ProfileService) UpdateHealthDetails(ctx context.Context, email string, hd models.HealthDetails) (*models.HealthDetails, error) {
	email = models.NormalizeEmail(email)
	p, err := s.patients.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	zone, err := s.classifier.Zone(ctx, hd)
	if err != nil {
		s.logger.Warnw("zone classification failed, keeping previous zone",
			"email", email, "error", err)
		zone = p.HealthDetails.Zone
	}
	hd.Zone = zone

	if err := s.patients.UpdateHealthDetails(ctx, email, hd); err != nil {
		return nil, err
	}
	return &hd, nil
}

func (s *ProfileService) HealthDetails(ctx context.Context, email string) (*models.HealthDetails, error) {
	p, err := s.patients.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return &p.HealthDetails, nil
}

// Doctors lists every doctor with sensitive fields stripped.
func (s *ProfileService) Doctors(ctx context.Context) ([]models.Doctor, error) {
	docs, err := s.doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Doctor, len(docs))
	for i := range docs {
		out[i] = docs[i].PublicProfile()
	}
	return out, nil
}

// AlertPatient sends a health-check alert email to one of the doctor's
// patients. Unlike the best-effort notifications elsewhere, the email is the
// whole point here, so a delivery failure is surfaced as DeliveryFailed.
func (s *ProfileService) AlertPatient(ctx context.Context, patientEmail string) error {
	p, err := s.patients.FindByEmail(ctx, models.NormalizeEmail(patientEmail))
	if err != nil {
		return err
	}

	greeting := "Hello"
	if p.Name != "" {
		greeting = "Hello " + p.Name
	}
	zoneLine := ""
	if p.HealthDetails.Zone != "" {
		zoneLine = fmt.Sprintf("<p>Your current health zone is <b>%s</b>.</p>", p.HealthDetails.Zone)
	}
	body := fmt.Sprintf(
		"<p>%s,</p><p>Your doctor has reviewed your recent health metrics and would like you to check in.</p>%s<p>Please log in to CareCompass and schedule an appointment at your earliest convenience.</p>",
		greeting, zoneLine,
	)
	if err := s.notifier.Send(ctx, p.Email, "Health Alert from your CareCompass doctor", body); err != nil {
		s.logger.Errorw("patient alert delivery failed", "email", p.Email, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrDeliveryFailed, err)
	}
	return nil
}

// DoctorPatients resolves a doctor's roster through their patient links.
func (s *ProfileService) DoctorPatients(ctx context.Context, doctorEmail string) ([]models.Patient, error) {
	d, err := s.doctors.FindByEmail(ctx, models.NormalizeEmail(doctorEmail))
	if err != nil {
		return nil, err
	}
	if len(d.Patients) == 0 {
		return []models.Patient{}, nil
	}
	emails := make([]string, len(d.Patients))
	for i, l := range d.Patients {
		emails[i] = l.Email
	}
	patients, err := s.patients.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	out := make([]models.Patient, len(patients))
	for i := range patients {
		out[i] = patients[i].PublicProfile()
	}
	return out, nil
}
