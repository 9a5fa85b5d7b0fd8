package ports

import (
	"context"
	"time"
)

// KVStore almacén clave-valor transitorio (claves de idempotencia, caché corta).
type KVStore interface {
	// Get devuelve ok=false si la clave no existe o expiró.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX escribe solo si la clave no existe y reporta si la escribió.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Locker exclusión mutua entre instancias del servicio.
// Obtain devuelve un error que envuelve domain.ErrConcurrencyConflict si otro proceso tiene el candado.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
