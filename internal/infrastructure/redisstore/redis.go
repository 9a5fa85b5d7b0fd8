// Package redisstore implementa sobre Redis las claves de idempotencia y los candados
// distribuidos que usan los casos de uso cuando hay varias instancias del servicio.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
)

var (
	_ ports.KVStore = (*KV)(nil)
	_ ports.Locker  = (*Locker)(nil)
)

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// KV almacén clave-valor con expiración.
type KV struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewKV prefix se antepone a todas las claves (ej. "freshvilla:").
func NewKV(rdb redis.UniversalClient, prefix string) *KV {
	return &KV{rdb: rdb, prefix: prefix}
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := k.rdb.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set ttl <= 0 deja la clave sin expiración.
func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := k.rdb.Set(ctx, k.prefix+key, value, max(ttl, 0)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (k *KV) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := k.rdb.SetNX(ctx, k.prefix+key, value, max(ttl, 0)).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.rdb.Del(ctx, k.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Locker candado distribuido con redislock. No reintenta: si otro proceso lo tiene,
// falla de inmediato con ErrConcurrencyConflict.
type Locker struct {
	client *redislock.Client
	prefix string
}

// NewLocker construye el candado sobre el cliente.
func NewLocker(rdb redis.UniversalClient, prefix string) *Locker {
	return &Locker{client: redislock.New(rdb), prefix: prefix}
}

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+"lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ConcurrencyConflict(fmt.Sprintf("otro proceso tiene el candado %s", key))
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// El TTL expiró antes de liberar; otro proceso pudo tomarlo.
			return nil
		}
		return err
	}, nil
}
