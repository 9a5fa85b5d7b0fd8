package ports

import (
	"context"
	"io"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// InvoicePDFRenderer genera la representación impresa de una factura.
type InvoicePDFRenderer interface {
	RenderInvoice(ctx context.Context, inv *entity.Invoice) ([]byte, error)
}

// DocumentStore almacena documentos generados (PDF) y devuelve su ruta.
// Open devuelve un error que envuelve domain.ErrNotFound si la ruta no existe.
type DocumentStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (path string, err error)
	Open(ctx context.Context, path string) ([]byte, error)
}

// SummaryExporter escribe el consolidado GST de un período (hoja de cálculo).
type SummaryExporter interface {
	ExportSummary(w io.Writer, s *entity.GSTSummary, entries []*entity.GSTLedgerEntry) error
}

// VoucherExporter escribe facturas como comprobantes para el sistema contable.
type VoucherExporter interface {
	ExportVouchers(w io.Writer, invoices []*entity.Invoice) error
}
