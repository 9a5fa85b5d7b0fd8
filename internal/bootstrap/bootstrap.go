// Package bootstrap arma los casos de uso con los adaptadores elegidos por configuración.
// Lo comparten la API HTTP y la CLI gstctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/inventory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/transfer"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/kafka"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/memory"
	infrapdf "github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/pdf"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/postgres"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/redisstore"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/report"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/storage"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/tally"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

const redisPrefix = "freshvilla:"

// App casos de uso listos para usar. Close libera conexiones en orden inverso de apertura.
type App struct {
	Invoices  *billing.InvoiceUseCase
	Transfers *transfer.UseCase
	GST       *gstledger.UseCase
	Stock     *inventory.StockUseCase

	closers []func()
}

// Close cierra pool, Redis, Kafka y almacenamiento.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Options ajustes que no vienen de la configuración.
type Options struct {
	// Migrate aplica las migraciones pendientes al abrir PostgreSQL.
	Migrate bool
}

// Build abre los adaptadores configurados y construye los casos de uso.
// Sin Redis se usan candados e idempotencia en memoria; sin Kafka los eventos se descartan.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	// ── Persistencia ─────────────────────────────────────────────
	var (
		tx    ports.TxRunner
		repos repository.Repos
	)
	if cfg.DB.InMemory {
		store := memory.NewStore()
		tx, repos = store, store.Repos()
		log.Warn().Msg("usando almacén en memoria, los datos no se conservan")
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			return fail(fmt.Errorf("conexión a PostgreSQL: %w", err))
		}
		app.closers = append(app.closers, pool.Close)
		if opts.Migrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return fail(fmt.Errorf("migraciones: %w", err))
			}
			for _, name := range applied {
				log.Info().Str("migration", name).Msg("migración aplicada")
			}
		}
		tx, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	// ── Redis: idempotencia y candados ───────────────────────────
	var (
		kv     ports.KVStore
		locker ports.Locker
	)
	if cfg.Redis.Enabled() {
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		kv, locker = redisstore.NewKV(rdb, redisPrefix), redisstore.NewLocker(rdb, redisPrefix)
	} else {
		memKV := memory.NewKV()
		kv, locker = memKV, memory.NewLocker(memKV)
	}

	// ── Eventos ──────────────────────────────────────────────────
	var events ports.EventPublisher = ports.NopPublisher{}
	if cfg.Kafka.Enabled() {
		pub := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		app.closers = append(app.closers, func() {
			if err := pub.Close(); err != nil {
				log.Error().Err(err).Msg("cierre de Kafka")
			}
		})
		events = pub
	}

	// ── Documentos ───────────────────────────────────────────────
	var documents ports.DocumentStore
	switch cfg.Storage.Driver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, cfg.Storage.CredentialsFile)
		if err != nil {
			return fail(fmt.Errorf("almacenamiento GCS: %w", err))
		}
		app.closers = append(app.closers, func() { _ = gcs.Close() })
		documents = gcs
	case "local", "":
		documents = storage.NewLocalStore(cfg.Storage.LocalDir)
	default:
		return fail(fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage.Driver))
	}

	// ── Casos de uso ─────────────────────────────────────────────
	loc := cfg.App.Location()
	numbers := numbering.NewAuthority(cfg.Billing.InvoicePrefix, cfg.Billing.TransferPrefix)

	app.Invoices = billing.NewInvoiceUseCase(billing.Deps{
		Tx:          tx,
		Repos:       repos,
		Numbers:     numbers,
		Ledger:      gstledger.NewRecorder(loc),
		Renderer:    infrapdf.NewInvoiceRenderer(cfg.App.Company),
		Documents:   documents,
		Events:      events,
		Idempotency: kv,
		Vouchers:    tally.NewExporter(cfg.App.Company, tally.DefaultLedgers()),
		Log:         log,
	}, billing.Config{
		MaxRetries:     cfg.Billing.NumberingMaxRetries,
		DefaultDueDays: cfg.Billing.DefaultDueDays,
		Location:       loc,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
	})

	app.Transfers = transfer.NewUseCase(transfer.Deps{
		Tx:       tx,
		Repos:    repos,
		Numbers:  numbers,
		Invoices: app.Invoices,
		Events:   events,
		Log:      log,
	}, transfer.Config{
		EWayBillThreshold: cfg.Transfer.EWayBillThreshold,
		MaxRetries:        cfg.Billing.NumberingMaxRetries,
		Location:          loc,
	})

	app.GST = gstledger.NewUseCase(tx, repos, locker, events, report.NewExcelExporter(), log,
		gstledger.Config{Location: loc, LockTTL: cfg.Redis.LockTTL})

	app.Stock = inventory.NewStockUseCase(repos)
	return app, nil
}
