package conversion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("lock is held")

// Unlock releases a lock. It is a no-op once the lock expired or was taken
// over by someone else.
type Unlock func(ctx context.Context) error

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
}

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker shares locks between API instances.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: "lock:"}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	k := l.prefix + key
	token := ulid.Make().String()
	ok, err := l.rdb.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return unlockScript.Run(ctx, l.rdb, []string{k}, token).Err()
	}, nil
}

// LocalLocker keeps locks in process memory, for single-instance setups.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]localLock
	now  func() time.Time
}

type localLock struct {
	token   string
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]localLock), now: time.Now}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, ErrLockHeld
	}
	token := ulid.Make().String()
	l.held[key] = localLock{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
