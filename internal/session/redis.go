package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hmpps/incentives-ui/internal/domain"
)

const redisKeyPrefix = "incentives-ui:session:"

// RedisClient is the subset of the redis client the store uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions in redis so they are shared between replicas and
// survive restarts. Redis key expiry removes ended sessions.
type RedisStore struct {
	client RedisClient
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store on client.
func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(hash string) string {
	return redisKeyPrefix + hash
}

// Create stores a new session.
func (r *RedisStore) Create(ctx context.Context, s *Session) (string, error) {
	const op = "session.RedisStore.Create"

	raw, hash, err := newToken()
	if err != nil {
		return "", domain.Internal(err, op, "failed to generate session token")
	}
	if err := r.write(ctx, op, hash, s); err != nil {
		return "", err
	}
	return raw, nil
}

// Get reads a session.
func (r *RedisStore) Get(ctx context.Context, rawToken string) (*Session, error) {
	const op = "session.RedisStore.Get"
	if rawToken == "" {
		return nil, nil
	}

	hash := hashToken(rawToken)
	data, err := r.client.Get(ctx, redisKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable(err, op, "Session store is unavailable")
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, domain.Internal(err, op, "failed to decode session")
	}
	s.Token = hash
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

// Save replaces a session. The stored expiry is kept so refreshing tokens never
// extends a session.
func (r *RedisStore) Save(ctx context.Context, rawToken string, s *Session) error {
	const op = "session.RedisStore.Save"

	existing, err := r.Get(ctx, rawToken)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound(op, "session", "current")
	}

	updated := *s
	updated.Expires = existing.Expires
	return r.write(ctx, op, existing.Token, &updated)
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, rawToken string) error {
	const op = "session.RedisStore.Delete"

	if err := r.client.Del(ctx, redisKey(hashToken(rawToken))).Err(); err != nil {
		return domain.Unavailable(err, op, "Session store is unavailable")
	}
	return nil
}

func (r *RedisStore) write(ctx context.Context, op, hash string, s *Session) error {
	ttl := time.Until(s.ExpiresAt())
	if ttl <= 0 {
		return domain.Invalid(op, "session has already expired")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return domain.Internal(err, op, "failed to encode session")
	}
	if err := r.client.Set(ctx, redisKey(hash), data, ttl).Err(); err != nil {
		return domain.Unavailable(err, op, "Session store is unavailable")
	}
	return nil
}
