package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blocklist remembers revoked token ids until they expire
type Blocklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type memoryBlocklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlocklist keeps revocations in process; they are lost on restart.
func NewMemoryBlocklist() Blocklist {
	return &memoryBlocklist{entries: make(map[string]time.Time), now: time.Now}
}

func (b *memoryBlocklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for id, exp := range b.entries {
		if !now.Before(exp) {
			delete(b.entries, id)
		}
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

func (b *memoryBlocklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(exp) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

const redisKeyPrefix = "solarflow:revoked:"

type redisBlocklist struct {
	client *redis.Client
}

// NewRedisBlocklist shares revocations between instances; keys expire with the token.
func NewRedisBlocklist(client *redis.Client) Blocklist {
	return &redisBlocklist{client: client}
}

func (b *redisBlocklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return b.client.Set(ctx, redisKeyPrefix+jti, "1", ttl).Err()
}

func (b *redisBlocklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OpenRedis connects and pings within five seconds
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
