package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
	"github.com/riyagarg17/CS520-Team5/internal/risk"
	"github.com/riyagarg17/CS520-Team5/internal/storage"
)

type failingClassifier struct{}

func (failingClassifier) Zone(context.Context, models.HealthDetails) (string, error) {
	return "", assert.AnError
}

type profileFixture struct {
	svc      *ProfileService
	patients *repository.MemoryPatientRepo
	doctors  *repository.MemoryDoctorRepo
	mail     *captureNotifier
}

func newProfileFixture(t *testing.T, classifier risk.Classifier) *profileFixture {
	t.Helper()
	patients := repository.NewMemoryPatientRepo()
	doctors := repository.NewMemoryDoctorRepo()
	mail := &captureNotifier{}
	svc := NewProfileService(patients, doctors, storage.NewMemoryLicenseStore(), classifier, mail, zap.NewNop().Sugar())
	return &profileFixture{svc: svc, patients: patients, doctors: doctors, mail: mail}
}

func TestRegisterPatient(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{Result: "green"})
	ctx := context.Background()

	p, err := f.svc.RegisterPatient(ctx, RegisterPatientInput{
		Email: "Alice@Example.com", Name: "Alice", DOB: "1990-01-01",
		Gender: "female", Password: "s3cret-pw", Pincode: 1002,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Empty(t, p.PasswordHash)
	assert.NotNil(t, p.Appointments)

	stored, err := f.patients.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "s3cret-pw", stored.PasswordHash, "password must never be stored in clear")

	_, err = f.svc.RegisterPatient(ctx, RegisterPatientInput{Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
}

func TestRegisterDoctorRequiresLicense(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{})
	ctx := context.Background()

	_, err := f.svc.RegisterDoctor(ctx, RegisterDoctorInput{
		Email: "drbob@example.com", Name: "Dr. Bob", Password: "pw",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	d, err := f.svc.RegisterDoctor(ctx, RegisterDoctorInput{
		Email: "drbob@example.com", Name: "Dr. Bob", Password: "pw",
		Experience: 7, License: []byte("%PDF-1.4 ..."), LicenseCT: "application/pdf",
	})
	require.NoError(t, err)
	assert.Empty(t, d.LicenseKey, "license reference must not leave the service")

	stored, err := f.doctors.FindByEmail(ctx, "drbob@example.com")
	require.NoError(t, err)
	assert.Contains(t, stored.LicenseKey, "licenses/drbob@example.com/")
}

func TestUpdateHealthDetailsClassifiesZone(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{Result: "red"})
	ctx := context.Background()

	_, err := f.svc.RegisterPatient(ctx, RegisterPatientInput{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)

	hd, err := f.svc.UpdateHealthDetails(ctx, "alice@example.com", models.HealthDetails{
		BloodGlucoseLevels: 182, BMI: 31.2, BloodPressure: "150/95", InsulinDosage: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "red", hd.Zone)

	got, err := f.svc.HealthDetails(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, *hd, *got)
}

func TestUpdateHealthDetailsKeepsZoneOnClassifierFailure(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{Result: "yellow"})
	ctx := context.Background()

	_, err := f.svc.RegisterPatient(ctx, RegisterPatientInput{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = f.svc.UpdateHealthDetails(ctx, "alice@example.com", models.HealthDetails{BMI: 24})
	require.NoError(t, err)

	f.svc.classifier = failingClassifier{}
	hd, err := f.svc.UpdateHealthDetails(ctx, "alice@example.com", models.HealthDetails{BMI: 27})
	require.NoError(t, err, "a classifier outage must not block the metrics update")
	assert.Equal(t, "yellow", hd.Zone)
	assert.Equal(t, 27.0, hd.BMI)
}

func TestDoctorsListStripped(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{})
	ctx := context.Background()

	_, err := f.svc.RegisterDoctor(ctx, RegisterDoctorInput{
		Email: "drbob@example.com", Name: "Dr. Bob", Password: "pw", License: []byte("x"),
	})
	require.NoError(t, err)

	docs, err := f.svc.Doctors(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].PasswordHash)
	assert.Empty(t, docs[0].LicenseKey)
}

func TestAlertPatient(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{Result: "red"})
	ctx := context.Background()

	err := f.svc.AlertPatient(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.RegisterPatient(ctx, RegisterPatientInput{Email: "alice@example.com", Name: "Alice", Password: "pw"})
	require.NoError(t, err)
	_, err = f.svc.UpdateHealthDetails(ctx, "alice@example.com", models.HealthDetails{BMI: 31})
	require.NoError(t, err)

	require.NoError(t, f.svc.AlertPatient(ctx, "Alice@Example.com"))
	require.Equal(t, 1, f.mail.sent())
	f.mail.mu.Lock()
	body := f.mail.bodies[0]
	f.mail.mu.Unlock()
	assert.Contains(t, body, "Hello Alice")
	assert.Contains(t, body, "red", "the alert references the patient's current zone")

	f.mail.fail = true
	err = f.svc.AlertPatient(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)
}

func TestDoctorPatientsRoster(t *testing.T) {
	f := newProfileFixture(t, risk.StaticClassifier{})
	ctx := context.Background()

	_, err := f.svc.RegisterDoctor(ctx, RegisterDoctorInput{
		Email: "drbob@example.com", Name: "Dr. Bob", Password: "pw", License: []byte("x"),
	})
	require.NoError(t, err)
	_, err = f.svc.RegisterPatient(ctx, RegisterPatientInput{Email: "alice@example.com", Name: "Alice", Password: "pw"})
	require.NoError(t, err)

	roster, err := f.svc.DoctorPatients(ctx, "drbob@example.com")
	require.NoError(t, err)
	assert.Empty(t, roster)

	require.NoError(t, f.doctors.AddPatientLink(ctx, "drbob@example.com", models.PatientLink{
		Email: "alice@example.com", Name: "Alice",
	}))
	roster, err = f.svc.DoctorPatients(ctx, "drbob@example.com")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Empty(t, roster[0].PasswordHash)
}
