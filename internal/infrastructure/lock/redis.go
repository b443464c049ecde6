// Package lock implementa exporting.Locker con Redis (bsm/redislock) o en proceso.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/comisiones-api/internal/application/exporting"
)

var (
	_ exporting.Locker = (*RedisLocker)(nil)
	_ exporting.Locker = (*LocalLocker)(nil)
)

const keyPrefix = "comisiones:"

// RedisLocker lock distribuido: dos instancias de la API no exportan el mismo tipo a la vez.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker construye el locker sobre un cliente go-redis.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Obtain intenta tomar el lock una sola vez; si está tomado devuelve exporting.ErrLockHeld.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (exporting.Lock, error) {
	lk, err := l.client.Obtain(ctx, keyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, exporting.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	return redisLock{lk}, nil
}

type redisLock struct {
	lk *redislock.Lock
}

func (r redisLock) Release(ctx context.Context) error {
	err := r.lk.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// expiró por TTL
		return nil
	}
	return err
}

// LocalLocker lock en proceso para una sola instancia (sin Redis configurado).
// El TTL no se aplica: el lock dura hasta Release.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]bool{}}
}

func (l *LocalLocker) Obtain(_ context.Context, key string, _ time.Duration) (exporting.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, exporting.ErrLockHeld
	}
	l.held[key] = true
	return &localLock{l: l, key: key}, nil
}

type localLock struct {
	l    *LocalLocker
	key  string
	once sync.Once
}

func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		k.l.mu.Lock()
		delete(k.l.held, k.key)
		k.l.mu.Unlock()
	})
	return nil
}
