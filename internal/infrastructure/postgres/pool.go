package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
)

// Límites de sesión. Una transacción de traslado bloquea filas de inventario: si una consulta
// se cuelga, otra sesión espera el candado como mucho lockTimeout y recibe un error.
const (
	statementTimeout = 30 * time.Second
	lockTimeout      = 10 * time.Second
	defaultMaxConns  = 25
)

// NewPool crea el pool de conexiones, registra el codec NUMERIC ↔ decimal y verifica la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := newPoolConfig(cfg, appName)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

func newPoolConfig(cfg config.DBConfig, appName string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Las fechas se guardan como timestamptz; la zona de sesión fija UTC para que
	// date_trunc y los rangos de período no dependan del servidor.
	rp := poolConfig.ConnConfig.RuntimeParams
	rp["TimeZone"] = "UTC"
	rp["statement_timeout"] = fmt.Sprintf("%d", statementTimeout.Milliseconds())
	rp["lock_timeout"] = fmt.Sprintf("%d", lockTimeout.Milliseconds())
	if appName != "" {
		rp["application_name"] = appName
	}

	// Montos y cantidades son NUMERIC: todas las conexiones los leen como decimal.Decimal.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}
