package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biblioteca/loan-system/internal/core/ports"
)

const (
	idempotencyTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed request can block its key.
	claimTTL = time.Minute
)

// IdempotencyStore maps client Idempotency-Key headers to the request they
// arrived with and the loan it produced. Key format: idempotency:loan:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps the given client. ttl <= 0 uses idempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

type idempotencyValue struct {
	Fingerprint string `json:"fingerprint"`
	LoanID      string `json:"loan_id,omitempty"`
}

// Claim writes a pending record with SETNX so only one of several
// concurrent first requests gets to issue.
func (s *IdempotencyStore) Claim(ctx context.Context, key, fingerprint string) (ports.IdempotencyRecord, bool, error) {
	raw, err := encodeRecord(ports.IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return ports.IdempotencyRecord{}, false, err
	}
	ok, err := s.client.SetNX(ctx, s.key(key), raw, claimTTL).Result()
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return ports.IdempotencyRecord{Fingerprint: fingerprint}, true, nil
	}

	stored, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency claim: key %q expired while held", key)
	}
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	rec, err := decodeRecord(stored)
	if err != nil {
		return ports.IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

// Complete overwrites the pending record and extends it to the full TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, rec ports.IdempotencyRecord) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idempotency:loan:" + k
}

func encodeRecord(rec ports.IdempotencyRecord) ([]byte, error) {
	raw, err := json.Marshal(idempotencyValue{Fingerprint: rec.Fingerprint, LoanID: rec.LoanID})
	if err != nil {
		return nil, fmt.Errorf("encode idempotency record: %w", err)
	}
	return raw, nil
}

func decodeRecord(raw []byte) (ports.IdempotencyRecord, error) {
	var v idempotencyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return ports.IdempotencyRecord{}, fmt.Errorf("decode idempotency record: %w", err)
	}
	return ports.IdempotencyRecord{Fingerprint: v.Fingerprint, LoanID: v.LoanID}, nil
}
