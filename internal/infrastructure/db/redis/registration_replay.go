package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultReplayTTL = 24 * time.Hour

// RegistrationReplay maps registration Idempotency-Keys to the user id they
// created. Key format: idempotency:register:<key>
type RegistrationReplay struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegistrationReplay wraps client. Entries expire after ttl, or a day when
// ttl is not positive.
func NewRegistrationReplay(client *redis.Client, ttl time.Duration) *RegistrationReplay {
	if ttl <= 0 {
		ttl = defaultReplayTTL
	}
	return &RegistrationReplay{client: client, ttl: ttl}
}

// Lookup returns the user id remembered for key.
func (r *RegistrationReplay) Lookup(ctx context.Context, key string) (string, bool, error) {
	userID, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("replay lookup: %w", err)
	}
	return userID, true, nil
}

// Remember stores userID under key unless the key is already bound.
func (r *RegistrationReplay) Remember(ctx context.Context, key, userID string) error {
	if err := r.client.SetNX(ctx, r.key(key), userID, r.ttl).Err(); err != nil {
		return fmt.Errorf("replay remember: %w", err)
	}
	return nil
}

func (r *RegistrationReplay) key(key string) string {
	return "idempotency:register:" + key
}
