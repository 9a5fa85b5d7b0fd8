package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// pdfFilename nombre del archivo descargado: el número con "/" reemplazado.
func pdfFilename(inv *entity.Invoice) string {
	return strings.ReplaceAll(inv.InvoiceNumber, "/", "-") + ".pdf"
}

// storePDF genera el PDF, lo guarda y registra la ruta en la factura.
func (uc *InvoiceUseCase) storePDF(ctx context.Context, inv *entity.Invoice) ([]byte, error) {
	if uc.Renderer == nil {
		return nil, errors.New("billing: generador de PDF no configurado")
	}
	data, err := uc.Renderer.RenderInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("billing: generar PDF: %w", err)
	}
	if uc.Documents == nil {
		return data, nil
	}
	path, err := uc.Documents.Save(ctx, "invoices/"+inv.FinancialYear+"/"+pdfFilename(inv), "application/pdf", data)
	if err != nil {
		return data, fmt.Errorf("billing: guardar PDF: %w", err)
	}
	if err := uc.Repos.Invoices.UpdatePDFPath(ctx, inv.ID, path); err != nil {
		return data, fmt.Errorf("billing: registrar ruta del PDF: %w", err)
	}
	inv.PDFPath = path
	return data, nil
}

// DownloadInvoicePDF devuelve el PDF de una factura emitida, anulada o revisada.
//
// Retorna:
//   - (pdfBytes, filename, nil)        si todo sale bien.
//   - domain.ErrNotFound               si la factura no existe.
//   - domain.ErrInvalidStateTransition si la factura sigue en borrador.
func (uc *InvoiceUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.Repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.NotFound("factura", invoiceID)
	}

	// ── 2. Un borrador no tiene representación impresa ───────────────────────
	if inv.Status == entity.InvoiceDraft {
		return nil, "", domain.InvalidTransition(invoiceEntityName, "descargar el PDF de", string(inv.Status),
			string(entity.InvoiceIssued))
	}
	filename = pdfFilename(inv)

	// ── 3. Reusar el documento guardado al emitir ─────────────────────────────
	if inv.PDFPath != "" && uc.Documents != nil {
		data, err := uc.Documents.Open(ctx, inv.PDFPath)
		if err == nil {
			return data, filename, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("pdf: abrir documento: %w", err)
		}
		uc.Log.Warn().Str("path", inv.PDFPath).Msg("PDF registrado no existe, se regenera")
	}

	// ── 4. Regenerar ──────────────────────────────────────────────────────────
	data, err := uc.storePDF(ctx, inv)
	if err != nil && data == nil {
		return nil, "", err
	}
	if err != nil {
		uc.Log.Warn().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("PDF generado pero no almacenado")
	}
	return data, filename, nil
}

// invoicesWithoutPDF lista facturas emitidas sin PDF guardado (reproceso batch).
func (uc *InvoiceUseCase) invoicesWithoutPDF(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	list, _, err := uc.Repos.Invoices.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Invoice, 0, len(list))
	for _, inv := range list {
		if inv.Status != entity.InvoiceDraft && inv.PDFPath == "" {
			out = append(out, inv)
		}
	}
	return out, nil
}

// RegeneratePDFs genera los PDF faltantes de las facturas que cumplen el filtro.
// Devuelve cuántos se generaron; los fallos se registran y no detienen el proceso.
func (uc *InvoiceUseCase) RegeneratePDFs(ctx context.Context, f repository.InvoiceFilter) (int, error) {
	pending, err := uc.invoicesWithoutPDF(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("pdf: listar facturas: %w", err)
	}
	done := 0
	for _, inv := range pending {
		if _, err := uc.storePDF(ctx, inv); err != nil {
			uc.Log.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("no se pudo regenerar el PDF")
			continue
		}
		done++
	}
	return done, nil
}
