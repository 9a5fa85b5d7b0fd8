// Package lifecycle contiene las máquinas de estado de facturas y traslados.
// Solo validan y mutan la entidad en memoria; la persistencia la hace la capa de aplicación.
package lifecycle

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// PaymentTolerance diferencia máxima para considerar una factura totalmente pagada.
var PaymentTolerance = decimal.New(1, -2)

const invoiceEntity = "la factura"

// IssueInvoice draft → issued.
func IssueInvoice(inv *entity.Invoice, by string, at time.Time) error {
	if inv.Status != entity.InvoiceDraft {
		return domain.InvalidTransition(invoiceEntity, "emitir", string(inv.Status), string(entity.InvoiceDraft))
	}
	inv.Status = entity.InvoiceIssued
	inv.IssuedBy = by
	inv.IssuedAt = &at
	inv.UpdatedAt = at
	return nil
}

// Payment pago recibido.
type Payment struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
}

// ApplyPayment acumula el pago y recalcula el subestado (partial / paid).
// Se rechaza sobre facturas anuladas o revisadas, o ya pagadas.
func ApplyPayment(inv *entity.Invoice, p Payment, at time.Time) error {
	switch inv.Status {
	case entity.InvoiceCancelled, entity.InvoiceRevised:
		return domain.InvalidTransition(invoiceEntity, "registrar pago de", string(inv.Status),
			string(entity.InvoiceDraft), string(entity.InvoiceIssued))
	}
	if inv.PaymentStatus == entity.PaymentPaid {
		return domain.InvalidTransition(invoiceEntity, "registrar pago de", string(entity.PaymentPaid),
			string(entity.PaymentPending), string(entity.PaymentPartial))
	}
	if !p.Amount.IsPositive() {
		return domain.Validation("amount", "el pago debe ser mayor a cero")
	}
	remaining := inv.TotalAmount.Sub(inv.PaidAmount)
	if p.Amount.GreaterThan(remaining.Add(PaymentTolerance)) {
		return domain.Validation("amount", "el pago "+p.Amount.StringFixed(2)+" excede el saldo "+remaining.StringFixed(2))
	}

	// Un excedente dentro de la tolerancia salda la factura sin superar el total.
	inv.PaidAmount = decimal.Min(inv.PaidAmount.Add(p.Amount), inv.TotalAmount)
	if inv.TotalAmount.Sub(inv.PaidAmount).LessThanOrEqual(PaymentTolerance) {
		inv.PaymentStatus = entity.PaymentPaid
		inv.PaidAt = &at
	} else {
		inv.PaymentStatus = entity.PaymentPartial
	}
	if p.Method != "" {
		inv.PaymentMethod = p.Method
	}
	if p.Reference != "" {
		inv.PaymentReference = p.Reference
	}
	inv.UpdatedAt = at
	return nil
}

// CancelInvoice anula la factura. Una factura pagada no se anula: se emite nota crédito.
func CancelInvoice(inv *entity.Invoice, by, reason string, at time.Time) error {
	if inv.PaymentStatus == entity.PaymentPaid {
		return domain.CannotCancelPaidInvoice(inv.InvoiceNumber)
	}
	switch inv.Status {
	case entity.InvoiceCancelled, entity.InvoiceRevised:
		return domain.InvalidTransition(invoiceEntity, "anular", string(inv.Status),
			string(entity.InvoiceDraft), string(entity.InvoiceIssued))
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Validation("reason", "el motivo de anulación es obligatorio")
	}
	inv.Status = entity.InvoiceCancelled
	inv.CancelledBy = by
	inv.CancelledAt = &at
	inv.CancellationReason = reason
	inv.UpdatedAt = at
	return nil
}

// InvoiceUpdate campos modificables después de creada la factura. Los montos son inmutables.
type InvoiceUpdate struct {
	DueDate     *time.Time
	Notes       *string
	InvoiceType *entity.InvoiceType
}

// ApplyUpdate modifica solo los campos permitidos.
func ApplyUpdate(inv *entity.Invoice, u InvoiceUpdate, at time.Time) error {
	if inv.PaymentStatus == entity.PaymentPaid {
		return domain.InvalidTransition(invoiceEntity, "modificar", string(entity.PaymentPaid))
	}
	if inv.Status == entity.InvoiceCancelled || inv.Status == entity.InvoiceRevised {
		return domain.InvalidTransition(invoiceEntity, "modificar", string(inv.Status),
			string(entity.InvoiceDraft), string(entity.InvoiceIssued))
	}
	if u.InvoiceType != nil && !u.InvoiceType.Valid() {
		return domain.Validation("invoice_type", "tipo de factura desconocido: "+string(*u.InvoiceType))
	}
	if u.DueDate != nil {
		if u.DueDate.Before(truncateDay(inv.InvoiceDate)) {
			return domain.Validation("due_date", "no puede ser anterior a la fecha de factura")
		}
		due := *u.DueDate
		inv.DueDate = &due
	}
	if u.Notes != nil {
		inv.Notes = *u.Notes
	}
	if u.InvoiceType != nil {
		inv.InvoiceType = *u.InvoiceType
	}
	inv.UpdatedAt = at
	return nil
}

// MarkRevised marca la factura como reemplazada por una revisión.
func MarkRevised(inv *entity.Invoice, at time.Time) error {
	if inv.PaymentStatus == entity.PaymentPaid || inv.PaymentStatus == entity.PaymentPartial {
		return domain.InvalidTransition(invoiceEntity, "revisar", string(inv.PaymentStatus),
			string(entity.PaymentPending), string(entity.PaymentNotApplicable))
	}
	if inv.Status != entity.InvoiceDraft && inv.Status != entity.InvoiceIssued {
		return domain.InvalidTransition(invoiceEntity, "revisar", string(inv.Status),
			string(entity.InvoiceDraft), string(entity.InvoiceIssued))
	}
	inv.Status = entity.InvoiceRevised
	inv.UpdatedAt = at
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
