package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riyagarg17/CS520-Team5/internal/apperrors"
)

const (
	codeKeyPrefix    = "mfa:code:"
	pendingKeyPrefix = "mfa:pending:"
)

// RedisStore backs the ephemeral state with TTL-expiring keys, so expiry is
// enforced by the store itself rather than checked lazily. Consume uses an
// optimistic WATCH transaction: if another verifier consumes the entries
// first, the transaction aborts and this caller observes the code as gone.
type RedisStore struct {
	rdb        *redis.Client
	codeTTL    time.Duration
	pendingTTL time.Duration
}

func NewRedisStore(rdb *redis.Client, codeTTL, pendingTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, codeTTL: codeTTL, pendingTTL: pendingTTL}
}

func (s *RedisStore) PutCode(ctx context.Context, email, code string) error {
	return s.rdb.Set(ctx, codeKeyPrefix+email, code, s.codeTTL).Err()
}

func (s *RedisStore) PutPendingToken(ctx context.Context, tok PendingToken) error {
	if tok.IssuedAt.IsZero() {
		tok.IssuedAt = time.Now()
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pendingKeyPrefix+tok.Email, raw, s.pendingTTL).Err()
}

func (s *RedisStore) GetPendingToken(ctx context.Context, email string) (*PendingToken, error) {
	raw, err := s.rdb.Get(ctx, pendingKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	var tok PendingToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code, token string) (*PendingToken, error) {
	codeKey := codeKeyPrefix + email
	pendingKey := pendingKeyPrefix + email

	var out *PendingToken
	var checkErr error

	txn := func(tx *redis.Tx) error {
		storedCode, err := tx.Get(ctx, codeKey).Result()
		if errors.Is(err, redis.Nil) {
			checkErr = apperrors.ErrExpiredOrInvalidCode
			return nil
		}
		if err != nil {
			return err
		}
		if storedCode != code {
			checkErr = apperrors.ErrExpiredOrInvalidCode
			return nil
		}

		raw, err := tx.Get(ctx, pendingKey).Result()
		if errors.Is(err, redis.Nil) {
			checkErr = apperrors.ErrSessionExpired
			return nil
		}
		if err != nil {
			return err
		}
		var tok PendingToken
		if err := json.Unmarshal([]byte(raw), &tok); err != nil {
			return err
		}
		if tok.Token != token {
			checkErr = apperrors.ErrSessionExpired
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, codeKey, pendingKey)
			return nil
		})
		if err != nil {
			return err
		}
		out = &tok
		return nil
	}

	err := s.rdb.Watch(ctx, txn, codeKey, pendingKey)
	if errors.Is(err, redis.TxFailedErr) {
		// Lost the race to a concurrent verification; the entries are gone.
		return nil, apperrors.ErrExpiredOrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if checkErr != nil {
		return nil, checkErr
	}
	return out, nil
}
