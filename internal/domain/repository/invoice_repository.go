package repository

import (
	"context"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas. Los campos vacíos no filtran.
type InvoiceFilter struct {
	IssuerID      string
	RecipientID   string
	Status        entity.InvoiceStatus
	FinancialYear string
	// DateFrom/DateTo rango [from, to) de fecha de factura; cero = sin límite.
	DateFrom      time.Time
	DateTo        time.Time
	Limit         int
	Offset        int
}

// InvoiceRepository define el puerto de persistencia para facturas internas.
type InvoiceRepository interface {
	// Create persiste cabecera y líneas. Un número repetido devuelve un error que envuelve domain.ErrDuplicate.
	Create(ctx context.Context, inv *entity.Invoice) error
	// GetByID devuelve la factura con sus líneas, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// Update guarda estado, pago, auditoría y campos editables de la cabecera. Los montos no cambian.
	Update(ctx context.Context, inv *entity.Invoice) error
	UpdatePDFPath(ctx context.Context, id, path string) error
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	// CountByNumberPrefix cantidad de facturas cuyo número empieza con prefix.
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	// ListIssuedLines líneas de facturas emitidas por la ubicación en [from, to).
	ListIssuedLines(ctx context.Context, issuerType entity.LocationType, issuerID string, from, to time.Time) ([]entity.InvoiceLineItem, error)
}
