package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/metrics"
	"github.com/riyagarg17/CS520-Team5/internal/models"
	"github.com/riyagarg17/CS520-Team5/internal/notifier"
	"github.com/riyagarg17/CS520-Team5/internal/repository"
	"github.com/riyagarg17/CS520-Team5/internal/tokenstore"
	"github.com/riyagarg17/CS520-Team5/internal/utils"
)

// bcryptDummyHash keeps the work factor of a failed lookup identical to a
// failed compare, so response timing does not reveal whether the account
// exists.
var bcryptDummyHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)
	return string(h)
}()

// LoginResult is the first-factor success payload. The one-time code itself
// never appears here; it travels out-of-band only.
type LoginResult struct {
	RequiresSecondFactor bool   `json:"requiresSecondFactor"`
	PendingToken         string `json:"pendingToken"`
}

// SessionResult is the second-factor success payload.
type SessionResult struct {
	SessionToken string      `json:"sessionToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	Role         models.Role `json:"role"`
	Profile      interface{} `json:"profile"`
}

// AuthService implements the two-step login protocol:
// Anonymous -> CredentialsVerified (pending token + code issued) ->
// Authenticated (session token). CredentialsVerified decays back to
// Anonymous when either ephemeral entry expires.
type AuthService struct {
	patients   repository.PatientRepository
	doctors    repository.DoctorRepository
	tokens     tokenstore.Store
	notifier   notifier.Notifier
	jwtSecret  string
	sessionTTL time.Duration
	logger     *zap.SugaredLogger
}

func NewAuthService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	tokens tokenstore.Store,
	n notifier.Notifier,
	jwtSecret string,
	sessionTTL time.Duration,
	logger *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		patients:   patients,
		doctors:    doctors,
		tokens:     tokens,
		notifier:   n,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies first-factor credentials, dispatches a one-time code to the
// registered address and hands back a pending token. The token is only
// issued after the code is on its way: a delivery failure aborts the whole
// call with DeliveryFailed.
func (s *AuthService) Login(ctx context.Context, email, password string, role models.Role) (*LoginResult, error) {
	email = models.NormalizeEmail(email)

	hash, name, err := s.credentialHash(ctx, email, role)
	if err != nil {
		// Same work and same error as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte(bcryptDummyHash), []byte(password))
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	code := utils.GenerateOTP(6)
	if err := s.tokens.PutCode(ctx, email, code); err != nil {
		return nil, fmt.Errorf("store one-time code: %w", err)
	}
	if err := s.sendCode(ctx, email, name, code); err != nil {
		metrics.LoginAttempts.WithLabelValues("delivery_failed").Inc()
		s.logger.Errorw("second-factor code delivery failed", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDeliveryFailed, err)
	}
	metrics.CodesIssued.Inc()

	tok := tokenstore.PendingToken{
		Token: uuid.New().String(),
		Email: email,
		Role:  role,
	}
	if err := s.tokens.PutPendingToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("store pending token: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("pending_second_factor").Inc()
	return &LoginResult{RequiresSecondFactor: true, PendingToken: tok.Token}, nil
}

// VerifySecondFactor completes the protocol. The code check, the pending
// token check and the deletion of both entries happen as one indivisible
// store operation, so a second concurrent attempt with the same code cannot
// also succeed.
func (s *AuthService) VerifySecondFactor(ctx context.Context, email, code, pendingToken string) (*SessionResult, error) {
	email = models.NormalizeEmail(email)

	tok, err := s.tokens.Consume(ctx, email, code, pendingToken)
	if err != nil {
		return nil, err
	}

	profile, err := s.publicProfile(ctx, email, tok.Role)
	if err != nil {
		return nil, err
	}

	session, exp, err := utils.GenerateSessionToken(email, string(tok.Role), s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues("authenticated").Inc()
	return &SessionResult{
		SessionToken: session,
		ExpiresAt:    exp,
		Role:         tok.Role,
		Profile:      profile,
	}, nil
}

// ResendCode regenerates and redelivers the one-time code for a login that
// already passed the first factor. The fresh code gets a fresh TTL; the
// pending token keeps its original one.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)

	tok, err := s.tokens.GetPendingToken(ctx, email)
	if err != nil {
		return err
	}

	code := utils.GenerateOTP(6)
	name := ""
	if profile, perr := s.publicProfile(ctx, email, tok.Role); perr == nil {
		switch p := profile.(type) {
		case models.Patient:
			name = p.Name
		case models.Doctor:
			name = p.Name
		}
	}
	if err := s.tokens.PutCode(ctx, email, code); err != nil {
		return fmt.Errorf("store one-time code: %w", err)
	}
	if err := s.sendCode(ctx, email, name, code); err != nil {
		s.logger.Errorw("second-factor code redelivery failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrDeliveryFailed, err)
	}
	metrics.CodesIssued.Inc()
	return nil
}

func (s *AuthService) credentialHash(ctx context.Context, email string, role models.Role) (hash, name string, err error) {
	switch role {
	case models.RolePatient:
		p, err := s.patients.FindByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return p.PasswordHash, p.Name, nil
	case models.RoleDoctor:
		d, err := s.doctors.FindByEmail(ctx, email)
		if err != nil {
			return "", "", err
		}
		return d.PasswordHash, d.Name, nil
	}
	return "", "", apperrors.ErrNotFound
}

func (s *AuthService) publicProfile(ctx context.Context, email string, role models.Role) (interface{}, error) {
	switch role {
	case models.RolePatient:
		p, err := s.patients.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return p.PublicProfile(), nil
	case models.RoleDoctor:
		d, err := s.doctors.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return d.PublicProfile(), nil
	}
	return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
}

func (s *AuthService) sendCode(ctx context.Context, email, name, code string) error {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}
	body := fmt.Sprintf(
		"<p>%s,</p><p>Your CareCompass login verification code is:</p><h1>%s</h1><p>This code is valid for 5 minutes. If you didn't request it, please ignore this email.</p>",
		greeting, code,
	)
	return s.notifier.Send(ctx, email, "Your CareCompass Login Verification Code", body)
}
