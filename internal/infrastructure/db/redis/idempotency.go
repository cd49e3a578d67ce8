package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which milk record an Idempotency-Key created.
// Key format: idem:milk:<key>, holding "pending" until the record exists.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps the given client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// pendingMarker holds a claimed key until the record id replaces it. Record
// ids are hex ObjectIDs, so the marker never collides with one.
const pendingMarker = "pending"

// Claim reserves key with SETNX. When the key is already held it returns the
// stored record id, or "" while the holder has not finished.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	k := idempotencyKey(key)
	// A second attempt covers a key that expires between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		if ok {
			return "", true, nil
		}

		val, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		return recordID(val), false, nil
	}
	return "", false, nil
}

// Remember stores the record id for key, replacing the pending marker.
func (s *IdempotencyStore) Remember(ctx context.Context, key, recordID string) error {
	if err := s.client.Set(ctx, idempotencyKey(key), recordID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Release removes key so the create can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func recordID(stored string) string {
	if stored == pendingMarker {
		return ""
	}
	return stored
}

func idempotencyKey(key string) string {
	return "idem:milk:" + key
}
