package tokenstore

import (
	"context"
	"time"

	"github.com/riyagarg17/CS520-Team5/internal/models"
)

// PendingToken means "credentials already verified, second factor
// outstanding". It is bound to one identity and role and expires on its own
// clock, independent of the one-time code.
type PendingToken struct {
	Token    string      `json:"token"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	IssuedAt time.Time   `json:"issued_at"`
}

// Store holds the ephemeral second-factor state, keyed by email. Expiry is
// lazy: an entry past its TTL is treated as absent whether or not it has
// been physically removed.
type Store interface {
	// PutCode stores a fresh one-time code, overwriting any previous one
	// and resetting its TTL clock.
	PutCode(ctx context.Context, email, code string) error

	// PutPendingToken stores the pending-authentication token.
	PutPendingToken(ctx context.Context, tok PendingToken) error

	// GetPendingToken returns the live pending token for the email, or
	// apperrors.ErrSessionExpired when absent or expired.
	GetPendingToken(ctx context.Context, email string) (*PendingToken, error)

	// Consume performs the whole second-factor check indivisibly: the code
	// must be live and match, the pending token must be live and match, and
	// only then are both entries deleted. A failed check deletes nothing,
	// so a valid code cannot be burned by a bad token. Two concurrent calls
	// with the same code yield exactly one success.
	//
	// Returns apperrors.ErrExpiredOrInvalidCode for absent, expired or
	// mismatched codes and apperrors.ErrSessionExpired for absent, expired
	// or mismatched pending tokens.
	Consume(ctx context.Context, email, code, token string) (*PendingToken, error)
}
