// Package transfer coordina los traslados de inventario entre bodegas y tiendas: reserva al crear,
// descuento al despachar, ingreso al recibir y compensación al anular. Cada cambio de estado y
// su efecto en inventario ocurren en una sola transacción.
package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// Config parámetros del coordinador.
type Config struct {
	EWayBillThreshold decimal.Decimal // valor a partir del cual se exige e-Way Bill
	MaxRetries        int
	Location          *time.Location
}

// Deps colaboradores. Invoices solo se usa si el traslado pide factura.
type Deps struct {
	Tx       ports.TxRunner
	Repos    repository.Repos
	Numbers  *numbering.Authority
	Invoices *billing.InvoiceUseCase
	Events   ports.EventPublisher
	Log      *logger.Logger
}

// UseCase coordinador de traslados.
type UseCase struct {
	Deps
	cfg Config
	now func() time.Time
}

// DefaultEWayBillThreshold umbral legal del e-Way Bill (₹50.000).
var DefaultEWayBillThreshold = decimal.NewFromInt(50000)

// NewUseCase construye el coordinador.
func NewUseCase(deps Deps, cfg Config) *UseCase {
	if !cfg.EWayBillThreshold.IsPositive() {
		cfg.EWayBillThreshold = DefaultEWayBillThreshold
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if deps.Events == nil {
		deps.Events = ports.NopPublisher{}
	}
	deps.Log = deps.Log.Component("transfer")
	return &UseCase{Deps: deps, cfg: cfg, now: time.Now}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *UseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if err := uc.Events.Publish(ctx, eventType, key, payload); err != nil {
		uc.Log.Warn().Err(err).Str("event", eventType).Str("key", key).Msg("no se pudo publicar el evento")
	}
}
