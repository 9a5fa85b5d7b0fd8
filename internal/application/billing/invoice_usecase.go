// Package billing implementa el ciclo de vida de las facturas internas: creación con cálculo GST,
// numeración, emisión con asientos en el libro GST, pagos, anulación, revisión y PDF.
package billing

import (
	"context"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// Config parámetros de facturación.
type Config struct {
	MaxRetries     int            // intentos ante colisión de numeración
	DefaultDueDays int            // vencimiento por defecto; 0 = sin vencimiento
	Location       *time.Location // zona de la fecha de factura
	IdempotencyTTL time.Duration
}

// Deps colaboradores del caso de uso. Renderer, Documents, Idempotency y Vouchers son opcionales.
type Deps struct {
	Tx          ports.TxRunner
	Repos       repository.Repos
	Numbers     *numbering.Authority
	Ledger      *gstledger.Recorder
	Renderer    ports.InvoicePDFRenderer
	Documents   ports.DocumentStore
	Events      ports.EventPublisher
	Idempotency ports.KVStore
	Vouchers    ports.VoucherExporter
	Log         *logger.Logger
}

// InvoiceUseCase orquesta las operaciones sobre facturas. Toda mutación ocurre dentro de
// una transacción; PDF y eventos se procesan después del commit y su fallo no la revierte.
type InvoiceUseCase struct {
	Deps
	cfg Config
	now func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(deps Deps, cfg Config) *InvoiceUseCase {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	if deps.Events == nil {
		deps.Events = ports.NopPublisher{}
	}
	deps.Log = deps.Log.Component("billing")
	return &InvoiceUseCase{Deps: deps, cfg: cfg, now: time.Now}
}

// SetClock reemplaza el reloj (pruebas y procesos batch con fecha fija).
func (uc *InvoiceUseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *InvoiceUseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if err := uc.Events.Publish(ctx, eventType, key, payload); err != nil {
		uc.Log.Warn().Err(err).Str("event", eventType).Str("key", key).Msg("no se pudo publicar el evento")
	}
}
