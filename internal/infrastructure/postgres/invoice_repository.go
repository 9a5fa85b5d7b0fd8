package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Emisor y receptor se guardan como JSONB congelado; issuer_id/recipient_id permiten filtrar.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, invoice_number, financial_year, invoice_type, issuer, recipient,
	issuer_type, issuer_id, recipient_id, invoice_date, due_date, is_inter_state,
	subtotal, line_discount_total, discount_type, discount_value, discount_amount, taxable_amount,
	cgst_amount, sgst_amount, igst_amount, total_tax,
	transport_charges, handling_charges, packaging_charges, insurance_charges, other_charges, total_charges,
	round_off, total_amount, paid_amount, status, payment_status, payment_method, payment_reference, paid_at,
	reference_type, reference_id, original_invoice_id, notes, pdf_path,
	created_by, issued_by, issued_at, cancelled_by, cancelled_at, cancellation_reason, created_at, updated_at`

const invoiceColumnCount = 49

const invoiceItemColumns = `id, invoice_id, line_number, product_id, product_name, sku, hsn_code, category, unit,
	quantity, unit_price, subtotal, discount_percent, discount_amount, taxable_amount, tax_rate,
	cgst_rate, cgst_amount, sgst_rate, sgst_amount, igst_rate, igst_amount, total_tax_amount, line_total`

const invoiceItemColumnCount = 24

func invoiceArgs(inv *entity.Invoice) []any {
	c := inv.Charges
	return []any{
		inv.ID, inv.InvoiceNumber, inv.FinancialYear, inv.InvoiceType, inv.Issuer, inv.Recipient,
		inv.Issuer.Type, inv.Issuer.ID, inv.Recipient.ID, inv.InvoiceDate, inv.DueDate, inv.IsInterState,
		inv.Subtotal, inv.LineDiscountTotal, inv.DiscountType, inv.DiscountValue, inv.DiscountAmount, inv.TaxableAmount,
		inv.CGSTAmount, inv.SGSTAmount, inv.IGSTAmount, inv.TotalTax,
		c.Transport, c.Handling, c.Packaging, c.Insurance, c.Other, inv.TotalCharges,
		inv.RoundOff, inv.TotalAmount, inv.PaidAmount, inv.Status, inv.PaymentStatus, inv.PaymentMethod, inv.PaymentReference, inv.PaidAt,
		inv.ReferenceType, nullIfEmpty(inv.ReferenceID), nullIfEmpty(inv.OriginalInvoiceID), inv.Notes, inv.PDFPath,
		inv.CreatedBy, inv.IssuedBy, inv.IssuedAt, inv.CancelledBy, inv.CancelledAt, inv.CancellationReason, inv.CreatedAt, inv.UpdatedAt,
	}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                   entity.Invoice
		issuerType            entity.LocationType
		issuerID, recipientID string
		referenceID, original *string
	)
	c := &inv.Charges
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.FinancialYear, &inv.InvoiceType, &inv.Issuer, &inv.Recipient,
		&issuerType, &issuerID, &recipientID, &inv.InvoiceDate, &inv.DueDate, &inv.IsInterState,
		&inv.Subtotal, &inv.LineDiscountTotal, &inv.DiscountType, &inv.DiscountValue, &inv.DiscountAmount, &inv.TaxableAmount,
		&inv.CGSTAmount, &inv.SGSTAmount, &inv.IGSTAmount, &inv.TotalTax,
		&c.Transport, &c.Handling, &c.Packaging, &c.Insurance, &c.Other, &inv.TotalCharges,
		&inv.RoundOff, &inv.TotalAmount, &inv.PaidAmount, &inv.Status, &inv.PaymentStatus, &inv.PaymentMethod, &inv.PaymentReference, &inv.PaidAt,
		&inv.ReferenceType, &referenceID, &original, &inv.Notes, &inv.PDFPath,
		&inv.CreatedBy, &inv.IssuedBy, &inv.IssuedAt, &inv.CancelledBy, &inv.CancelledAt, &inv.CancellationReason, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ReferenceID, inv.OriginalInvoiceID = derefStr(referenceID), derefStr(original)
	return &inv, nil
}

func itemArgs(it *entity.InvoiceLineItem) []any {
	return []any{
		it.ID, it.InvoiceID, it.LineNumber, it.ProductID, it.ProductName, it.SKU, it.HSNCode, it.Category, it.Unit,
		it.Quantity, it.UnitPrice, it.Subtotal, it.DiscountPercent, it.DiscountAmount, it.TaxableAmount, it.TaxRate,
		it.CGSTRate, it.CGSTAmount, it.SGSTRate, it.SGSTAmount, it.IGSTRate, it.IGSTAmount, it.TotalTaxAmount, it.LineTotal,
	}
}

func scanItem(row pgx.Row) (entity.InvoiceLineItem, error) {
	var it entity.InvoiceLineItem
	err := row.Scan(
		&it.ID, &it.InvoiceID, &it.LineNumber, &it.ProductID, &it.ProductName, &it.SKU, &it.HSNCode, &it.Category, &it.Unit,
		&it.Quantity, &it.UnitPrice, &it.Subtotal, &it.DiscountPercent, &it.DiscountAmount, &it.TaxableAmount, &it.TaxRate,
		&it.CGSTRate, &it.CGSTAmount, &it.SGSTRate, &it.SGSTAmount, &it.IGSTRate, &it.IGSTAmount, &it.TotalTaxAmount, &it.LineTotal,
	)
	return it, err
}

// Create persiste cabecera y líneas. El número de factura tiene restricción UNIQUE.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `INSERT INTO invoices (` + invoiceColumns + `) VALUES (` + placeholders(invoiceColumnCount) + `)`
	if _, err := r.q.Exec(ctx, query, invoiceArgs(inv)...); err != nil {
		return duplicateOr(err, "invoice "+inv.InvoiceNumber)
	}

	itemQuery := `INSERT INTO invoice_items (` + invoiceItemColumns + `) VALUES (` + placeholders(invoiceItemColumnCount) + `)`
	b := &pgx.Batch{}
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.InvoiceID = inv.ID
		b.Queue(itemQuery, itemArgs(it)...)
	}
	return execBatch(ctx, r.q, b, "insert invoice items")
}

func (r *InvoiceRepo) get(ctx context.Context, suffix, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepo) items(ctx context.Context, invoiceID string) ([]entity.InvoiceLineItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invoiceItemColumns+` FROM invoice_items WHERE invoice_id = $1 ORDER BY line_number`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceLineItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// GetByID obtiene una factura completa (cabecera y líneas) por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, "", id)
}

// GetForUpdate igual que GetByID, bloqueando la cabecera hasta el fin de la tx.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, " FOR UPDATE", id)
}

// Update guarda estado, pago, auditoría y campos editables. Montos y líneas no cambian.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET due_date            = $2,
		    status              = $3,
		    payment_status      = $4,
		    paid_amount         = $5,
		    payment_method      = $6,
		    payment_reference   = $7,
		    paid_at             = $8,
		    reference_type      = $9,
		    reference_id        = $10,
		    notes               = $11,
		    issued_by           = $12,
		    issued_at           = $13,
		    cancelled_by        = $14,
		    cancelled_at        = $15,
		    cancellation_reason = $16,
		    updated_at          = $17
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		inv.ID, inv.DueDate, inv.Status, inv.PaymentStatus, inv.PaidAmount,
		inv.PaymentMethod, inv.PaymentReference, inv.PaidAt,
		inv.ReferenceType, nullIfEmpty(inv.ReferenceID), inv.Notes,
		inv.IssuedBy, inv.IssuedAt, inv.CancelledBy, inv.CancelledAt, inv.CancellationReason,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update invoice %s: %w", inv.ID, pgx.ErrNoRows)
	}
	return nil
}

// UpdatePDFPath guarda la ruta del PDF almacenado.
func (r *InvoiceRepo) UpdatePDFPath(ctx context.Context, id, path string) error {
	_, err := r.q.Exec(ctx, `UPDATE invoices SET pdf_path = $2, updated_at = $3 WHERE id = $1`, id, path, time.Now())
	if err != nil {
		return fmt.Errorf("update invoice pdf path: %w", err)
	}
	return nil
}

// List devuelve las cabeceras filtradas (sin líneas) y el total sin paginar.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var w filter
	if f.IssuerID != "" {
		w.add("issuer_id = $%d", f.IssuerID)
	}
	if f.RecipientID != "" {
		w.add("recipient_id = $%d", f.RecipientID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.FinancialYear != "" {
		w.add("financial_year = $%d", f.FinancialYear)
	}
	if !f.DateFrom.IsZero() {
		w.add("invoice_date >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		w.add("invoice_date < $%d", f.DateTo)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql() + ` ORDER BY invoice_number DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// CountByNumberPrefix cantidad de facturas cuyo número empieza con prefix.
func (r *InvoiceRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE starts_with(invoice_number, $1)`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices by prefix: %w", err)
	}
	return n, nil
}

// ListIssuedLines líneas de facturas emitidas por la ubicación en [from, to).
func (r *InvoiceRepo) ListIssuedLines(ctx context.Context, issuerType entity.LocationType, issuerID string, from, to time.Time) ([]entity.InvoiceLineItem, error) {
	query := `
		SELECT ` + prefixed("ii.", invoiceItemColumns) + `
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.status = 'issued' AND i.issuer_type = $1 AND i.issuer_id = $2
		  AND i.invoice_date >= $3 AND i.invoice_date < $4
		ORDER BY i.invoice_number, ii.line_number`
	rows, err := r.q.Query(ctx, query, issuerType, issuerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list issued lines: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceLineItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issued line: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
