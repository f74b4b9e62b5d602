package onetime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/signet-auth/signet"
)

// ErrStoreUnavailable wraps transport failures so callers can tell an
// unreachable store from a consumed token.
var ErrStoreUnavailable = errors.New("single-use store unavailable")

type redisRecord struct {
	Claims    signet.Claims `json:"claims"`
	ExpiresAt int64         `json:"expires_at"`
}

// RedisStore keeps single-use records in Redis under a configurable key
// prefix. Record lifetime rides on the key TTL; the expiry timestamp is
// stored in the payload as well so a record outliving its TTL (TTL-less
// saves, clock changes) is still rejected at lookup.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore wraps a go-redis client. An empty prefix defaults to "st".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "st"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Save(ctx context.Context, id string, claims signet.Claims, expiresAt time.Time) error {
	record := redisRecord{Claims: claims}
	var ttl time.Duration
	if !expiresAt.IsZero() {
		record.ExpiresAt = expiresAt.Unix()
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return signet.ErrTokenNotFoundOrExpired
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Consume is atomic via GETDEL: concurrent consumers of one id race on a
// single Redis command and exactly one sees the value.
func (s *RedisStore) Consume(ctx context.Context, id string) (signet.Claims, error) {
	data, err := s.redis.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, signet.ErrTokenNotFoundOrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return decodeRedisRecord(data)
}

func (s *RedisStore) Peek(ctx context.Context, id string) (signet.Claims, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, signet.ErrTokenNotFoundOrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return decodeRedisRecord(data)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if deleted == 0 {
		return signet.ErrTokenNotFoundOrExpired
	}
	return nil
}

func decodeRedisRecord(data []byte) (signet.Claims, error) {
	var record redisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, signet.ErrTokenNotFoundOrExpired
	}
	if record.ExpiresAt > 0 && time.Now().Unix() > record.ExpiresAt {
		return nil, signet.ErrTokenNotFoundOrExpired
	}
	return record.Claims, nil
}
