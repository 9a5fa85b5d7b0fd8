package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre ubicaciones (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, transfer_number, financial_year, transfer_type, source, destination,
	source_id, destination_id, status, reason, notes, pricing_type, generate_invoice, is_inter_state,
	subtotal, cgst_amount, sgst_amount, igst_amount, total_tax, total_value,
	transport_charges, handling_charges, insurance_charges, other_charges, total_transfer_cost, eway_bill_required,
	tracking_number, carrier_name, vehicle_number, eway_bill_number, expected_delivery_date,
	invoice_id, has_discrepancy,
	requested_by, approved_by, approved_at, shipped_by, shipped_at, received_by, received_at,
	cancelled_by, cancelled_at, cancellation_reason, rejected_by, rejected_at, rejection_reason, created_at, updated_at`

const transferColumnCount = 48

const transferItemColumns = `id, transfer_id, line_number, product_id, product_name, sku, hsn_code, category, unit,
	requested_quantity, approved_quantity, shipped_quantity, received_quantity, damaged_quantity,
	shortage_quantity, excess_quantity, unit_cost, tax_rate, taxable_amount,
	cgst_amount, sgst_amount, igst_amount, total_tax_amount, line_total, has_discrepancy, discrepancy_notes`

const transferItemColumnCount = 26

func transferArgs(t *entity.StockTransfer) []any {
	tr := t.Tracking
	return []any{
		t.ID, t.TransferNumber, t.FinancialYear, t.TransferType, t.Source, t.Destination,
		t.Source.ID, t.Destination.ID, t.Status, t.Reason, t.Notes, t.PricingType, t.GenerateInvoice, t.IsInterState,
		t.Subtotal, t.CGSTAmount, t.SGSTAmount, t.IGSTAmount, t.TotalTax, t.TotalValue,
		t.TransportCharges, t.HandlingCharges, t.InsuranceCharges, t.OtherCharges, t.TotalTransferCost, t.EWayBillRequired,
		tr.TrackingNumber, tr.CarrierName, tr.VehicleNumber, tr.EWayBillNumber, tr.ExpectedDeliveryDate,
		nullIfEmpty(t.InvoiceID), t.HasDiscrepancy,
		t.RequestedBy, t.ApprovedBy, t.ApprovedAt, t.ShippedBy, t.ShippedAt, t.ReceivedBy, t.ReceivedAt,
		t.CancelledBy, t.CancelledAt, t.CancellationReason, t.RejectedBy, t.RejectedAt, t.RejectionReason, t.CreatedAt, t.UpdatedAt,
	}
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t                     entity.StockTransfer
		sourceID, destination string
		invoiceID             *string
	)
	tr := &t.Tracking
	err := row.Scan(
		&t.ID, &t.TransferNumber, &t.FinancialYear, &t.TransferType, &t.Source, &t.Destination,
		&sourceID, &destination, &t.Status, &t.Reason, &t.Notes, &t.PricingType, &t.GenerateInvoice, &t.IsInterState,
		&t.Subtotal, &t.CGSTAmount, &t.SGSTAmount, &t.IGSTAmount, &t.TotalTax, &t.TotalValue,
		&t.TransportCharges, &t.HandlingCharges, &t.InsuranceCharges, &t.OtherCharges, &t.TotalTransferCost, &t.EWayBillRequired,
		&tr.TrackingNumber, &tr.CarrierName, &tr.VehicleNumber, &tr.EWayBillNumber, &tr.ExpectedDeliveryDate,
		&invoiceID, &t.HasDiscrepancy,
		&t.RequestedBy, &t.ApprovedBy, &t.ApprovedAt, &t.ShippedBy, &t.ShippedAt, &t.ReceivedBy, &t.ReceivedAt,
		&t.CancelledBy, &t.CancelledAt, &t.CancellationReason, &t.RejectedBy, &t.RejectedAt, &t.RejectionReason, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.InvoiceID = derefStr(invoiceID)
	return &t, nil
}

func transferItemArgs(it *entity.TransferLineItem) []any {
	return []any{
		it.ID, it.TransferID, it.LineNumber, it.ProductID, it.ProductName, it.SKU, it.HSNCode, it.Category, it.Unit,
		it.RequestedQuantity, it.ApprovedQuantity, it.ShippedQuantity, it.ReceivedQuantity, it.DamagedQuantity,
		it.ShortageQuantity, it.ExcessQuantity, it.UnitCost, it.TaxRate, it.TaxableAmount,
		it.CGSTAmount, it.SGSTAmount, it.IGSTAmount, it.TotalTaxAmount, it.LineTotal, it.HasDiscrepancy, it.DiscrepancyNotes,
	}
}

// Create persiste cabecera y líneas. El número de traslado tiene restricción UNIQUE.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `INSERT INTO stock_transfers (` + transferColumns + `) VALUES (` + placeholders(transferColumnCount) + `)`
	if _, err := r.q.Exec(ctx, query, transferArgs(t)...); err != nil {
		return duplicateOr(err, "transfer "+t.TransferNumber)
	}

	itemQuery := `INSERT INTO stock_transfer_items (` + transferItemColumns + `) VALUES (` + placeholders(transferItemColumnCount) + `)`
	b := &pgx.Batch{}
	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = t.ID
		b.Queue(itemQuery, transferItemArgs(it)...)
	}
	return execBatch(ctx, r.q, b, "insert transfer items")
}

func (r *TransferRepo) get(ctx context.Context, suffix, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT `+transferItemColumns+` FROM stock_transfer_items WHERE transfer_id = $1 ORDER BY line_number`, id)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransferLineItem
		if err := rows.Scan(
			&it.ID, &it.TransferID, &it.LineNumber, &it.ProductID, &it.ProductName, &it.SKU, &it.HSNCode, &it.Category, &it.Unit,
			&it.RequestedQuantity, &it.ApprovedQuantity, &it.ShippedQuantity, &it.ReceivedQuantity, &it.DamagedQuantity,
			&it.ShortageQuantity, &it.ExcessQuantity, &it.UnitCost, &it.TaxRate, &it.TaxableAmount,
			&it.CGSTAmount, &it.SGSTAmount, &it.IGSTAmount, &it.TotalTaxAmount, &it.LineTotal, &it.HasDiscrepancy, &it.DiscrepancyNotes,
		); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	return t, rows.Err()
}

// GetByID obtiene el traslado con sus líneas.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, "", id)
}

// GetForUpdate igual que GetByID, bloqueando la cabecera hasta el fin de la tx.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, " FOR UPDATE", id)
}

// Update reescribe la cabecera (salvo número y partes) y las cantidades y montos de cada línea.
func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	tr := t.Tracking
	b := &pgx.Batch{}
	b.Queue(`
		UPDATE stock_transfers
		SET status = $2, notes = $3,
		    subtotal = $4, cgst_amount = $5, sgst_amount = $6, igst_amount = $7, total_tax = $8, total_value = $9,
		    total_transfer_cost = $10, eway_bill_required = $11,
		    tracking_number = $12, carrier_name = $13, vehicle_number = $14, eway_bill_number = $15, expected_delivery_date = $16,
		    invoice_id = $17, has_discrepancy = $18,
		    approved_by = $19, approved_at = $20, shipped_by = $21, shipped_at = $22, received_by = $23, received_at = $24,
		    cancelled_by = $25, cancelled_at = $26, cancellation_reason = $27,
		    rejected_by = $28, rejected_at = $29, rejection_reason = $30, updated_at = $31
		WHERE id = $1`,
		t.ID, t.Status, t.Notes,
		t.Subtotal, t.CGSTAmount, t.SGSTAmount, t.IGSTAmount, t.TotalTax, t.TotalValue,
		t.TotalTransferCost, t.EWayBillRequired,
		tr.TrackingNumber, tr.CarrierName, tr.VehicleNumber, tr.EWayBillNumber, tr.ExpectedDeliveryDate,
		nullIfEmpty(t.InvoiceID), t.HasDiscrepancy,
		t.ApprovedBy, t.ApprovedAt, t.ShippedBy, t.ShippedAt, t.ReceivedBy, t.ReceivedAt,
		t.CancelledBy, t.CancelledAt, t.CancellationReason,
		t.RejectedBy, t.RejectedAt, t.RejectionReason, t.UpdatedAt,
	)
	for _, it := range t.Items {
		b.Queue(`
			UPDATE stock_transfer_items
			SET approved_quantity = $2, shipped_quantity = $3, received_quantity = $4, damaged_quantity = $5,
			    shortage_quantity = $6, excess_quantity = $7, unit_cost = $8, taxable_amount = $9,
			    cgst_amount = $10, sgst_amount = $11, igst_amount = $12, total_tax_amount = $13, line_total = $14,
			    has_discrepancy = $15, discrepancy_notes = $16
			WHERE id = $1`,
			it.ID, it.ApprovedQuantity, it.ShippedQuantity, it.ReceivedQuantity, it.DamagedQuantity,
			it.ShortageQuantity, it.ExcessQuantity, it.UnitCost, it.TaxableAmount,
			it.CGSTAmount, it.SGSTAmount, it.IGSTAmount, it.TotalTaxAmount, it.LineTotal,
			it.HasDiscrepancy, it.DiscrepancyNotes,
		)
	}
	return execBatch(ctx, r.q, b, "update transfer")
}

// List traslados filtrados (sin líneas) y el total sin paginar.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	var w filter
	if f.LocationID != "" {
		w.add("(source_id = $%[1]d OR destination_id = $%[1]d)", f.LocationID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.FinancialYear != "" {
		w.add("financial_year = $%d", f.FinancialYear)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}
	query := `SELECT ` + transferColumns + ` FROM stock_transfers` + w.sql() + ` ORDER BY transfer_number DESC` + w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// CountByNumberPrefix cantidad de traslados cuyo número empieza con prefix.
func (r *TransferRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers WHERE starts_with(transfer_number, $1)`, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transfers by prefix: %w", err)
	}
	return n, nil
}
