package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
)

type codeEntry struct {
	code     string
	issuedAt time.Time
}

// MemoryStore is the process-local implementation. One mutex covers every
// operation, which is what makes Consume's verify-and-delete indivisible.
type MemoryStore struct {
	mu         sync.Mutex
	codes      map[string]codeEntry
	pending    map[string]PendingToken
	codeTTL    time.Duration
	pendingTTL time.Duration

	// now is swappable so tests can sit exactly on the TTL boundary.
	now func() time.Time
}

func NewMemoryStore(codeTTL, pendingTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		codes:      make(map[string]codeEntry),
		pending:    make(map[string]PendingToken),
		codeTTL:    codeTTL,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// SetClock overrides the store's clock. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) PutCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	s.codes[email] = codeEntry{code: code, issuedAt: s.now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) PutPendingToken(_ context.Context, tok PendingToken) error {
	s.mu.Lock()
	if tok.IssuedAt.IsZero() {
		tok.IssuedAt = s.now()
	}
	s.pending[tok.Email] = tok
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetPendingToken(_ context.Context, email string) (*PendingToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.pending[email]
	if !ok {
		return nil, apperrors.ErrSessionExpired
	}
	if s.now().Sub(tok.IssuedAt) > s.pendingTTL {
		delete(s.pending, email)
		return nil, apperrors.ErrSessionExpired
	}
	cp := tok
	return &cp, nil
}

func (s *MemoryStore) Consume(_ context.Context, email, code, token string) (*PendingToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	ce, ok := s.codes[email]
	if !ok {
		return nil, apperrors.ErrExpiredOrInvalidCode
	}
	if now.Sub(ce.issuedAt) > s.codeTTL {
		delete(s.codes, email)
		return nil, apperrors.ErrExpiredOrInvalidCode
	}
	if ce.code != code {
		// A wrong guess does not invalidate the real code.
		return nil, apperrors.ErrExpiredOrInvalidCode
	}

	tok, ok := s.pending[email]
	if !ok {
		return nil, apperrors.ErrSessionExpired
	}
	if now.Sub(tok.IssuedAt) > s.pendingTTL {
		delete(s.pending, email)
		return nil, apperrors.ErrSessionExpired
	}
	if tok.Token != token {
		return nil, apperrors.ErrSessionExpired
	}

	delete(s.codes, email)
	delete(s.pending, email)
	cp := tok
	return &cp, nil
}
