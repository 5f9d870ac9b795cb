package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
	"github.com/riyagarg17/CS520-Team5/internal/tokenstore"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

type captureNotifier struct {
	mu     sync.Mutex
	bodies []string
	fail   bool
}

func (n *captureNotifier) Send(_ context.Context, _, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp relay unreachable")
	}
	n.bodies = append(n.bodies, body)
	return nil
}

var codeRe = regexp.MustCompile(`<h1>(\d{6})</h1>`)

// lastCode pulls the one-time code out of the most recent email, the same
// way the recipient would.
func (n *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.bodies)
	m := codeRe.FindStringSubmatch(n.bodies[len(n.bodies)-1])
	require.Len(t, m, 2)
	return m[1]
}

func (n *captureNotifier) sent() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bodies)
}

const testSecret = "test-secret"

type authFixture struct {
	svc   *AuthService
	store *tokenstore.MemoryStore
	mail  *captureNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	patients := repository.NewMemoryPatientRepo()
	doctors := repository.NewMemoryDoctorRepo()
	store := tokenstore.NewMemoryStore(5*time.Minute, 5*time.Minute)
	mail := &captureNotifier{}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pw"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, patients.Create(context.Background(), &models.Patient{
		Email: "alice@example.com", Name: "Alice", PasswordHash: string(hash),
	}))
	require.NoError(t, doctors.Create(context.Background(), &models.Doctor{
		Email: "drbob@example.com", Name: "Dr. Bob", PasswordHash: string(hash),
		LicenseKey: "licenses/drbob/cert.pdf",
	}))

	svc := NewAuthService(patients, doctors, store, mail, testSecret, 24*time.Hour, zap.NewNop().Sugar())
	return &authFixture{svc: svc, store: store, mail: mail}
}

func TestLoginIssuesCodeAndPendingToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "Alice@Example.com ", "s3cret-pw", models.RolePatient)
	require.NoError(t, err)
	assert.True(t, res.RequiresSecondFactor)
	assert.NotEmpty(t, res.PendingToken)
	assert.Equal(t, 1, f.mail.sent())

	tok, err := f.store.GetPendingToken(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.PendingToken, tok.Token)
	assert.Equal(t, models.RolePatient, tok.Role)
}

func TestLoginConstantErrorShape(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, unknownErr := f.svc.Login(ctx, "nobody@example.com", "whatever", models.RolePatient)
	_, wrongPwErr := f.svc.Login(ctx, "alice@example.com", "wrong", models.RolePatient)
	_, wrongRoleErr := f.svc.Login(ctx, "alice@example.com", "s3cret-pw", models.RoleDoctor)

	// Unknown account, wrong password and wrong role are indistinguishable.
	assert.ErrorIs(t, unknownErr, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPwErr, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongRoleErr, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongPwErr.Error())
	assert.Equal(t, 0, f.mail.sent())
}

func TestLoginDeliveryFailureIssuesNothing(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.mail.fail = true

	_, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw", models.RolePatient)
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)

	_, err = f.store.GetPendingToken(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired,
		"no pending token may exist when the code never went out")
}

func TestFullLoginFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "drbob@example.com", "s3cret-pw", models.RoleDoctor)
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	session, err := f.svc.VerifySecondFactor(ctx, "drbob@example.com", code, res.PendingToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, session.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)

	claims, err := utils.ParseSessionToken(session.SessionToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "drbob@example.com", claims.Email)
	assert.Equal(t, string(models.RoleDoctor), claims.Role)

	profile, ok := session.Profile.(models.Doctor)
	require.True(t, ok)
	assert.Equal(t, "Dr. Bob", profile.Name)
	assert.Empty(t, profile.PasswordHash, "credential material must not leave the service")
	assert.Empty(t, profile.LicenseKey)

	// The code and token are spent.
	_, err = f.svc.VerifySecondFactor(ctx, "drbob@example.com", code, res.PendingToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)
}

func TestVerifyWrongCodeDoesNotBurnEntries(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw", models.RolePatient)
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	_, err = f.svc.VerifySecondFactor(ctx, "alice@example.com", "000000", res.PendingToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)

	_, err = f.svc.VerifySecondFactor(ctx, "alice@example.com", code, res.PendingToken)
	assert.NoError(t, err, "a wrong guess must not invalidate the real code")
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	base := time.Now()

	res, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw", models.RolePatient)
	require.NoError(t, err)
	code := f.mail.lastCode(t)

	f.store.SetClock(func() time.Time { return base.Add(6 * time.Minute) })
	_, err = f.svc.VerifySecondFactor(ctx, "alice@example.com", code, res.PendingToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)
}

func TestResendCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Without a live first factor there is nothing to resend.
	err := f.svc.ResendCode(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	res, err := f.svc.Login(ctx, "alice@example.com", "s3cret-pw", models.RolePatient)
	require.NoError(t, err)
	firstCode := f.mail.lastCode(t)

	require.NoError(t, f.svc.ResendCode(ctx, "alice@example.com"))
	require.Equal(t, 2, f.mail.sent())
	secondCode := f.mail.lastCode(t)

	// The superseded code is dead; the fresh one plus the original pending
	// token completes the login.
	if firstCode != secondCode {
		_, err = f.svc.VerifySecondFactor(ctx, "alice@example.com", firstCode, res.PendingToken)
		assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)
	}
	_, err = f.svc.VerifySecondFactor(ctx, "alice@example.com", secondCode, res.PendingToken)
	assert.NoError(t, err)
}
