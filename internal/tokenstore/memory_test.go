package tokenstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
	"github.com/riyagarg17/CS520-Team5/internal/models"
)

const (
	testEmail = "alice@example.com"
	testCode  = "123456"
	testToken = "pending-token-1"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	require.NoError(t, s.PutCode(ctx, testEmail, testCode))
	require.NoError(t, s.PutPendingToken(ctx, PendingToken{
		Token: testToken,
		Email: testEmail,
		Role:  models.RolePatient,
	}))
	return s
}

func TestConsumeHappyPath(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	tok, err := s.Consume(ctx, testEmail, testCode, testToken)
	require.NoError(t, err)
	assert.Equal(t, testEmail, tok.Email)
	assert.Equal(t, models.RolePatient, tok.Role)

	// Single use: both entries are gone.
	_, err = s.Consume(ctx, testEmail, testCode, testToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)
	_, err = s.GetPendingToken(ctx, testEmail)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestConsumeWrongCodeKeepsState(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.Consume(ctx, testEmail, "000000", testToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)

	// The real code still works afterwards.
	_, err = s.Consume(ctx, testEmail, testCode, testToken)
	assert.NoError(t, err)
}

func TestConsumeWrongTokenKeepsState(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.Consume(ctx, testEmail, testCode, "stolen-token")
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	// A failed token check must not burn the code.
	_, err = s.Consume(ctx, testEmail, testCode, testToken)
	assert.NoError(t, err)
}

func TestCodeTTLBoundary(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()
	base := time.Now()
	s.SetClock(func() time.Time { return base })
	require.NoError(t, s.PutCode(ctx, testEmail, testCode))
	require.NoError(t, s.PutPendingToken(ctx, PendingToken{Token: testToken, Email: testEmail, Role: models.RolePatient, IssuedAt: base}))

	// 299s in: still live.
	s.SetClock(func() time.Time { return base.Add(4*time.Minute + 59*time.Second) })
	_, err := s.Consume(ctx, testEmail, testCode, testToken)
	assert.NoError(t, err)

	// Re-seed and cross the boundary.
	s.SetClock(func() time.Time { return base })
	require.NoError(t, s.PutCode(ctx, testEmail, testCode))
	require.NoError(t, s.PutPendingToken(ctx, PendingToken{Token: testToken, Email: testEmail, Role: models.RolePatient, IssuedAt: base}))
	s.SetClock(func() time.Time { return base.Add(5*time.Minute + time.Second) })
	_, err = s.Consume(ctx, testEmail, testCode, testToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode)
}

func TestPendingTokenTTLIndependentOfCode(t *testing.T) {
	s := NewMemoryStore(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	base := time.Now()
	s.SetClock(func() time.Time { return base })

	require.NoError(t, s.PutPendingToken(ctx, PendingToken{Token: testToken, Email: testEmail, Role: models.RolePatient, IssuedAt: base}))

	// A resent code restarts the code clock only; the pending token keeps
	// its original expiry.
	s.SetClock(func() time.Time { return base.Add(4 * time.Minute) })
	require.NoError(t, s.PutCode(ctx, testEmail, testCode))

	s.SetClock(func() time.Time { return base.Add(6 * time.Minute) })
	_, err := s.Consume(ctx, testEmail, testCode, testToken)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired, "live code cannot outlast an expired pending token")
}

func TestGetPendingTokenExpiry(t *testing.T) {
	s := NewMemoryStore(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	base := time.Now()
	s.SetClock(func() time.Time { return base })

	_, err := s.GetPendingToken(ctx, testEmail)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)

	require.NoError(t, s.PutPendingToken(ctx, PendingToken{Token: testToken, Email: testEmail, Role: models.RoleDoctor}))
	tok, err := s.GetPendingToken(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, tok.Role)

	s.SetClock(func() time.Time { return base.Add(5*time.Minute + time.Second) })
	_, err = s.GetPendingToken(ctx, testEmail)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestPutCodeOverwrites(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCode(ctx, testEmail, "654321"))

	_, err := s.Consume(ctx, testEmail, testCode, testToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredOrInvalidCode, "superseded code must stop working")

	_, err = s.Consume(ctx, testEmail, "654321", testToken)
	assert.NoError(t, err)
}

func TestConcurrentConsumeSingleSuccess(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Consume(ctx, testEmail, testCode, testToken)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "the same code must authenticate exactly once")
}
