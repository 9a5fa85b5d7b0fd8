package billing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

const invoiceEntityName = "la factura"

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.Repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("billing: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("factura", id)
	}
	return inv, nil
}

// ListInvoices lista facturas paginadas; devuelve también el total sin paginar.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, q dto.ListInvoicesQuery) ([]*entity.Invoice, int, error) {
	q.DefaultPage()
	list, total, err := uc.Repos.Invoices.List(ctx, repository.InvoiceFilter{
		IssuerID:      q.IssuerID,
		RecipientID:   q.RecipientID,
		Status:        entity.InvoiceStatus(q.Status),
		FinancialYear: q.FinancialYear,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("billing: listar facturas: %w", err)
	}
	return list, total, nil
}

// ExportVouchers escribe como comprobantes contables las facturas emitidas por la ubicación en [from, to).
// Devuelve cuántas facturas se exportaron.
func (uc *InvoiceUseCase) ExportVouchers(ctx context.Context, issuerID string, from, to time.Time, w io.Writer) (int, error) {
	if uc.Vouchers == nil {
		return 0, fmt.Errorf("billing: exportador de comprobantes no configurado")
	}
	if !to.After(from) {
		return 0, domain.Validation("to", "el rango de fechas está vacío")
	}
	headers, _, err := uc.Repos.Invoices.List(ctx, repository.InvoiceFilter{
		IssuerID: issuerID,
		Status:   entity.InvoiceIssued,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		return 0, fmt.Errorf("billing: listar facturas: %w", err)
	}
	// El listado no trae líneas.
	invoices := make([]*entity.Invoice, 0, len(headers))
	for _, h := range headers {
		inv, err := uc.GetInvoice(ctx, h.ID)
		if err != nil {
			return 0, err
		}
		invoices = append(invoices, inv)
	}
	if err := uc.Vouchers.ExportVouchers(w, invoices); err != nil {
		return 0, fmt.Errorf("billing: exportar comprobantes: %w", err)
	}
	uc.Log.Info().Str("issuer_id", issuerID).Int("invoices", len(invoices)).Msg("comprobantes exportados")
	return len(invoices), nil
}
