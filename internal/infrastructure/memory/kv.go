package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
)

var (
	_ ports.KVStore = (*KV)(nil)
	_ ports.Locker  = (*Locker)(nil)
)

type kvItem struct {
	value     string
	expiresAt time.Time // cero = sin expiración
}

// KV almacén clave-valor de un solo proceso con expiración perezosa.
type KV struct {
	mu    sync.Mutex
	items map[string]kvItem
	now   func() time.Time
}

// NewKV crea el almacén vacío.
func NewKV() *KV {
	return &KV{items: map[string]kvItem{}, now: time.Now}
}

func (k *KV) live(key string) (kvItem, bool) {
	it, ok := k.items[key]
	if !ok {
		return kvItem{}, false
	}
	if !it.expiresAt.IsZero() && !k.now().Before(it.expiresAt) {
		delete(k.items, key)
		return kvItem{}, false
	}
	return it, true
}

func (k *KV) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return k.now().Add(ttl)
}

func (k *KV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, ok := k.live(key)
	return it.value, ok, nil
}

func (k *KV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[key] = kvItem{value: value, expiresAt: k.expiry(ttl)}
	return nil
}

func (k *KV) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.live(key); ok {
		return false, nil
	}
	k.items[key] = kvItem{value: value, expiresAt: k.expiry(ttl)}
	return true, nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.items, key)
	return nil
}

// Locker candado de un solo proceso sobre KV, con la misma semántica que el de Redis.
type Locker struct {
	kv *KV
}

// NewLocker construye el candado local.
func NewLocker(kv *KV) *Locker {
	return &Locker{kv: kv}
}

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	ok, err := l.kv.SetNX(ctx, "lock:"+key, "1", ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ConcurrencyConflict(fmt.Sprintf("otro proceso tiene el candado %s", key))
	}
	return func(ctx context.Context) error { return l.kv.Delete(ctx, "lock:"+key) }, nil
}
