package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/gst"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/lifecycle"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/stock"
)

// stockOp mutación de inventario aplicada a una línea.
type stockOp func(rec *entity.InventoryRecord, qty decimal.Decimal, sku string) error

func (uc *UseCase) lockTransfer(ctx context.Context, repos repository.Repos, id string) (*entity.StockTransfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transfer: obtener traslado: %w", err)
	}
	if t == nil {
		return nil, domain.NotFound("traslado", id)
	}
	return t, nil
}

// applySource aplica op sobre el inventario de origen de cada línea con cantidad positiva,
// bloqueando los registros en orden de producto.
func (uc *UseCase) applySource(ctx context.Context, repos repository.Repos, t *entity.StockTransfer,
	qty func(entity.TransferLineItem) decimal.Decimal, op stockOp) error {
	now := uc.now()
	for _, i := range lockOrder(t.Items) {
		item := t.Items[i]
		q := qty(item)
		if !q.IsPositive() {
			continue
		}
		rec, err := repos.Inventory.GetForUpdate(ctx, t.Source.Type, t.Source.ID, item.ProductID)
		if err != nil {
			return fmt.Errorf("transfer: bloquear inventario de %s: %w", item.SKU, err)
		}
		if rec == nil {
			return domain.NotFound("inventario", t.Source.ID+"/"+item.ProductID)
		}
		if err := op(rec, q, item.SKU); err != nil {
			return err
		}
		rec.LastMovementAt = &now
		rec.UpdatedAt = now
		if err := repos.Inventory.Save(ctx, rec); err != nil {
			return fmt.Errorf("transfer: guardar inventario de %s: %w", item.SKU, err)
		}
	}
	return nil
}

func restoreOp(rec *entity.InventoryRecord, qty decimal.Decimal, _ string) error {
	return stock.Restore(rec, qty)
}

// ApproveTransfer pending → approved. approved indica la cantidad aprobada por producto;
// las líneas omitidas se aprueban completas. Aprobar menos de lo solicitado libera la diferencia.
func (uc *UseCase) ApproveTransfer(ctx context.Context, id, userID string, approved map[string]decimal.Decimal) (*entity.StockTransfer, error) {
	var t *entity.StockTransfer
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if t, err = uc.lockTransfer(ctx, repos, id); err != nil {
			return err
		}
		if err := lifecycle.ApproveTransfer(t, userID, uc.now()); err != nil {
			return err
		}
		if err := setApproved(t, approved); err != nil {
			return err
		}
		released := func(it entity.TransferLineItem) decimal.Decimal { return it.RequestedQuantity.Sub(it.ApprovedQuantity) }
		if err := uc.applySource(ctx, repos, t, released, stock.Release); err != nil {
			return err
		}
		price(t, approvedQty)
		t.EWayBillRequired = lifecycle.EWayBillRequired(t.TotalValue, uc.cfg.EWayBillThreshold)
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("transfer_number", t.TransferNumber).Str("approved_by", userID).Msg("traslado aprobado")
	return t, nil
}

func setApproved(t *entity.StockTransfer, approved map[string]decimal.Decimal) error {
	seen := make(map[string]bool, len(approved))
	positive := false
	for i := range t.Items {
		item := &t.Items[i]
		item.ApprovedQuantity = item.RequestedQuantity
		if q, ok := approved[item.ProductID]; ok {
			seen[item.ProductID] = true
			if q.IsNegative() || q.GreaterThan(item.RequestedQuantity) {
				return domain.Validation("items."+item.SKU+".approved_quantity",
					fmt.Sprintf("debe estar entre 0 y lo solicitado (%s)", item.RequestedQuantity))
			}
			item.ApprovedQuantity = q
		}
		if item.ApprovedQuantity.IsPositive() {
			positive = true
		}
	}
	for productID := range approved {
		if !seen[productID] {
			return domain.Validation("items.product_id", "el producto "+productID+" no está en el traslado")
		}
	}
	if !positive {
		return domain.Validation("items", "se debe aprobar al menos una unidad; para descartar el traslado use rechazar")
	}
	return nil
}

// ShipTransfer approved → in_transit. Descuenta lo reservado del origen y, si el traslado pide
// factura, la crea y la emite en la misma transacción.
func (uc *UseCase) ShipTransfer(ctx context.Context, id, userID string, tracking entity.TrackingInfo) (*entity.StockTransfer, error) {
	var (
		t   *entity.StockTransfer
		inv *entity.Invoice
	)
	err := numbering.WithRetry(ctx, uc.Log, uc.cfg.MaxRetries, func() error {
		return uc.Tx.Run(ctx, func(repos repository.Repos) error {
			var err error
			if t, err = uc.lockTransfer(ctx, repos, id); err != nil {
				return err
			}
			now := uc.now()
			if err := lifecycle.ShipTransfer(t, userID, tracking, now); err != nil {
				return err
			}
			if err := uc.applySource(ctx, repos, t, approvedQty, stock.DeductReserved); err != nil {
				return err
			}
			for i := range t.Items {
				t.Items[i].ShippedQuantity = t.Items[i].ApprovedQuantity
			}
			inv = nil
			if t.GenerateInvoice {
				if inv, err = uc.invoiceFor(ctx, repos, t, userID, now); err != nil {
					return err
				}
				t.InvoiceID = inv.ID
			}
			return repos.Transfers.Update(ctx, t)
		})
	})
	if err != nil {
		return nil, err
	}
	ev := uc.Log.Info().Str("transfer_number", t.TransferNumber).Str("shipped_by", userID)
	if inv != nil {
		ev = ev.Str("invoice_number", inv.InvoiceNumber)
	}
	ev.Msg("traslado despachado")
	if inv != nil {
		uc.Invoices.AfterIssue(ctx, inv)
	}
	uc.publish(ctx, ports.EventTransferShipped, t.ID, dto.NewTransferResponse(t, false))
	return t, nil
}

// invoiceFor crea y emite la factura de tipo transfer por lo despachado.
// La factura lleva la tasa GST del producto aunque el traslado se valorice solo a costo.
func (uc *UseCase) invoiceFor(ctx context.Context, repos repository.Repos, t *entity.StockTransfer, userID string, at time.Time) (*entity.Invoice, error) {
	if uc.Invoices == nil {
		return nil, fmt.Errorf("transfer: facturación no configurada para %s", t.TransferNumber)
	}
	draft := billing.InvoiceDraft{
		Type:      entity.InvoiceTypeTransfer,
		Issuer:    t.Source,
		Recipient: t.Destination,
		// La fecha de factura es la del despacho.
		InvoiceDate: at.In(uc.cfg.Location),
		Discount:    gst.InvoiceDiscount{Type: entity.DiscountNone, Value: decimal.Zero},
		Charges: entity.Charges{
			Transport: t.TransportCharges,
			Handling:  t.HandlingCharges,
			Insurance: t.InsuranceCharges,
			Other:     t.OtherCharges,
		},
		Notes:         "Traslado " + t.TransferNumber,
		ReferenceType: "stock_transfer",
		ReferenceID:   t.ID,
		CreatedBy:     userID,
	}
	for _, it := range t.Items {
		if !it.ShippedQuantity.IsPositive() {
			continue
		}
		draft.Lines = append(draft.Lines, billing.DraftLine{
			Product: &entity.Product{
				ID: it.ProductID, SKU: it.SKU, Name: it.ProductName,
				HSNCode: it.HSNCode, Category: it.Category, Unit: it.Unit,
			},
			Quantity:        it.ShippedQuantity,
			UnitPrice:       it.UnitCost,
			DiscountPercent: decimal.Zero,
			TaxRate:         it.TaxRate,
		})
	}
	inv, err := uc.Invoices.CreateInTx(ctx, repos, draft)
	if err != nil {
		return nil, err
	}
	if err := uc.Invoices.IssueInTx(ctx, repos, inv, userID); err != nil {
		return nil, err
	}
	return inv, nil
}

// Receipt cantidades recibidas de un producto.
type Receipt struct {
	Received decimal.Decimal
	Damaged  decimal.Decimal
}

// ReceiveTransfer in_transit → received. Ingresa lo recibido al destino (creando el registro si no
// existe) y anota faltantes, sobrantes y averías. Las líneas sin recibo se reciben completas.
func (uc *UseCase) ReceiveTransfer(ctx context.Context, id, userID string, receipts map[string]Receipt) (*entity.StockTransfer, error) {
	var t *entity.StockTransfer
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if t, err = uc.lockTransfer(ctx, repos, id); err != nil {
			return err
		}
		now := uc.now()
		if err := lifecycle.ReceiveTransfer(t, userID, now); err != nil {
			return err
		}
		known := make(map[string]bool, len(t.Items))
		for _, it := range t.Items {
			known[it.ProductID] = true
		}
		for productID, r := range receipts {
			if !known[productID] {
				return domain.Validation("items.product_id", "el producto "+productID+" no está en el traslado")
			}
			if r.Received.IsNegative() || r.Damaged.IsNegative() {
				return domain.Validation("items.received_quantity", "las cantidades no pueden ser negativas")
			}
			if r.Damaged.GreaterThan(r.Received) {
				return domain.Validation("items.damaged_quantity", "no puede superar lo recibido")
			}
		}

		t.HasDiscrepancy = false
		for _, i := range lockOrder(t.Items) {
			item := &t.Items[i]
			r, ok := receipts[item.ProductID]
			if !ok {
				r = Receipt{Received: item.ShippedQuantity, Damaged: decimal.Zero}
			}
			if r.Received.IsPositive() {
				if err := uc.credit(ctx, repos, t, item, r, now); err != nil {
					return err
				}
			}
			lifecycle.RecordReceipt(item, r.Received, r.Damaged)
			if item.HasDiscrepancy {
				t.HasDiscrepancy = true
			}
		}
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	ev := uc.Log.Info()
	if t.HasDiscrepancy {
		ev = uc.Log.Warn()
	}
	ev.Str("transfer_number", t.TransferNumber).Str("received_by", userID).
		Bool("has_discrepancy", t.HasDiscrepancy).Msg("traslado recibido")
	uc.publish(ctx, ports.EventTransferReceived, t.ID, dto.NewTransferResponse(t, true))
	return t, nil
}

func (uc *UseCase) credit(ctx context.Context, repos repository.Repos, t *entity.StockTransfer, item *entity.TransferLineItem, r Receipt, now time.Time) error {
	rec, err := repos.Inventory.GetForUpdate(ctx, t.Destination.Type, t.Destination.ID, item.ProductID)
	if err != nil {
		return fmt.Errorf("transfer: bloquear inventario destino de %s: %w", item.SKU, err)
	}
	if rec == nil {
		rec = stock.NewRecord(t.Destination.Type, t.Destination.ID, item.ProductID)
		rec.CreatedAt = now
	}
	if err := stock.Credit(rec, r.Received, r.Damaged, item.UnitCost); err != nil {
		return err
	}
	rec.LastMovementAt = &now
	rec.UpdatedAt = now
	if err := repos.Inventory.Save(ctx, rec); err != nil {
		return fmt.Errorf("transfer: guardar inventario destino de %s: %w", item.SKU, err)
	}
	return nil
}

// CancelTransfer anula el traslado y compensa el inventario según el estado previo:
// pending/approved liberan la reserva; in_transit reingresa lo despachado al origen y
// anula la factura generada (una factura pagada impide la anulación).
func (uc *UseCase) CancelTransfer(ctx context.Context, id, userID, reason string) (*entity.StockTransfer, error) {
	var t *entity.StockTransfer
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if t, err = uc.lockTransfer(ctx, repos, id); err != nil {
			return err
		}
		prev, err := lifecycle.CancelTransfer(t, userID, reason, uc.now())
		if err != nil {
			return err
		}
		switch prev {
		case entity.TransferPending:
			err = uc.applySource(ctx, repos, t, requestedQty, stock.Release)
		case entity.TransferApproved:
			err = uc.applySource(ctx, repos, t, approvedQty, stock.Release)
		case entity.TransferInTransit:
			if err = uc.applySource(ctx, repos, t, shippedQty, restoreOp); err == nil {
				err = uc.cancelInvoice(ctx, repos, t, userID, reason)
			}
		}
		if err != nil {
			return err
		}
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("transfer_number", t.TransferNumber).Str("reason", reason).Msg("traslado anulado")
	uc.publish(ctx, ports.EventTransferCancelled, t.ID, dto.NewTransferResponse(t, false))
	return t, nil
}

func (uc *UseCase) cancelInvoice(ctx context.Context, repos repository.Repos, t *entity.StockTransfer, userID, reason string) error {
	if t.InvoiceID == "" {
		return nil
	}
	inv, err := repos.Invoices.GetForUpdate(ctx, t.InvoiceID)
	if err != nil {
		return fmt.Errorf("transfer: obtener factura del traslado: %w", err)
	}
	if inv == nil || inv.Status == entity.InvoiceCancelled || inv.Status == entity.InvoiceRevised {
		return nil
	}
	return uc.Invoices.CancelInTx(ctx, repos, inv, userID, "Traslado "+t.TransferNumber+" anulado: "+reason)
}

// RejectTransfer pending/approved → rejected; libera la reserva.
func (uc *UseCase) RejectTransfer(ctx context.Context, id, userID, reason string) (*entity.StockTransfer, error) {
	var t *entity.StockTransfer
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if t, err = uc.lockTransfer(ctx, repos, id); err != nil {
			return err
		}
		prev := t.Status
		if err := lifecycle.RejectTransfer(t, userID, reason, uc.now()); err != nil {
			return err
		}
		qty := requestedQty
		if prev == entity.TransferApproved {
			qty = approvedQty
		}
		if err := uc.applySource(ctx, repos, t, qty, stock.Release); err != nil {
			return err
		}
		return repos.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("transfer_number", t.TransferNumber).Str("reason", reason).Msg("traslado rechazado")
	return t, nil
}
