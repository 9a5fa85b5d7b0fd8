package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

const transferEntity = "el traslado"

// ApproveTransfer pending → approved.
func ApproveTransfer(t *entity.StockTransfer, by string, at time.Time) error {
	if t.Status != entity.TransferPending {
		return domain.InvalidTransition(transferEntity, "aprobar", string(t.Status), string(entity.TransferPending))
	}
	t.Status = entity.TransferApproved
	t.ApprovedBy = by
	t.ApprovedAt = &at
	t.UpdatedAt = at
	return nil
}

// ShipTransfer approved → in_transit.
func ShipTransfer(t *entity.StockTransfer, by string, tracking entity.TrackingInfo, at time.Time) error {
	if t.Status != entity.TransferApproved {
		return domain.InvalidTransition(transferEntity, "despachar", string(t.Status), string(entity.TransferApproved))
	}
	if t.EWayBillRequired && strings.TrimSpace(tracking.EWayBillNumber) == "" && strings.TrimSpace(t.Tracking.EWayBillNumber) == "" {
		return domain.Validation("eway_bill_number", "el valor del traslado exige e-Way Bill")
	}
	t.Status = entity.TransferInTransit
	t.ShippedBy = by
	t.ShippedAt = &at
	mergeTracking(&t.Tracking, tracking)
	t.UpdatedAt = at
	return nil
}

// ReceiveTransfer in_transit → received.
func ReceiveTransfer(t *entity.StockTransfer, by string, at time.Time) error {
	if t.Status != entity.TransferInTransit {
		return domain.InvalidTransition(transferEntity, "recibir", string(t.Status), string(entity.TransferInTransit))
	}
	t.Status = entity.TransferReceived
	t.ReceivedBy = by
	t.ReceivedAt = &at
	t.UpdatedAt = at
	return nil
}

// CancelTransfer anula desde pending, approved o in_transit y devuelve el estado previo,
// que decide la compensación de inventario.
func CancelTransfer(t *entity.StockTransfer, by, reason string, at time.Time) (entity.TransferStatus, error) {
	prev := t.Status
	switch prev {
	case entity.TransferPending, entity.TransferApproved, entity.TransferInTransit:
	default:
		return prev, domain.InvalidTransition(transferEntity, "anular", string(prev),
			string(entity.TransferPending), string(entity.TransferApproved), string(entity.TransferInTransit))
	}
	if strings.TrimSpace(reason) == "" {
		return prev, domain.Validation("reason", "el motivo de anulación es obligatorio")
	}
	t.Status = entity.TransferCancelled
	t.CancelledBy = by
	t.CancelledAt = &at
	t.CancellationReason = reason
	t.UpdatedAt = at
	return prev, nil
}

// RejectTransfer pending/approved → rejected.
func RejectTransfer(t *entity.StockTransfer, by, reason string, at time.Time) error {
	if t.Status != entity.TransferPending && t.Status != entity.TransferApproved {
		return domain.InvalidTransition(transferEntity, "rechazar", string(t.Status),
			string(entity.TransferPending), string(entity.TransferApproved))
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Validation("reason", "el motivo de rechazo es obligatorio")
	}
	t.Status = entity.TransferRejected
	t.RejectedBy = by
	t.RejectedAt = &at
	t.RejectionReason = reason
	t.UpdatedAt = at
	return nil
}

// EWayBillRequired el e-Way Bill es obligatorio cuando el valor supera el umbral.
func EWayBillRequired(value, threshold decimal.Decimal) bool {
	return value.GreaterThan(threshold)
}

// RecordReceipt registra lo recibido en la línea: faltantes, sobrantes y averías se anotan, no se rechazan.
func RecordReceipt(item *entity.TransferLineItem, received, damaged decimal.Decimal) {
	item.ReceivedQuantity = received
	item.DamagedQuantity = damaged
	item.ShortageQuantity = decimal.Zero
	item.ExcessQuantity = decimal.Zero

	var notes []string
	switch {
	case received.LessThan(item.ShippedQuantity):
		item.ShortageQuantity = item.ShippedQuantity.Sub(received)
		notes = append(notes, fmt.Sprintf("faltante de %s (despachado %s, recibido %s)",
			item.ShortageQuantity, item.ShippedQuantity, received))
	case received.GreaterThan(item.ShippedQuantity):
		item.ExcessQuantity = received.Sub(item.ShippedQuantity)
		notes = append(notes, fmt.Sprintf("sobrante de %s (despachado %s, recibido %s)",
			item.ExcessQuantity, item.ShippedQuantity, received))
	}
	if received.LessThan(item.RequestedQuantity) && item.ShippedQuantity.LessThan(item.RequestedQuantity) {
		notes = append(notes, fmt.Sprintf("solicitado %s", item.RequestedQuantity))
	}
	if damaged.IsPositive() {
		notes = append(notes, fmt.Sprintf("%s unidades averiadas", damaged))
	}
	item.HasDiscrepancy = item.ShortageQuantity.IsPositive() || item.ExcessQuantity.IsPositive() || damaged.IsPositive()
	item.DiscrepancyNotes = strings.Join(notes, "; ")
}

func mergeTracking(dst *entity.TrackingInfo, src entity.TrackingInfo) {
	if src.TrackingNumber != "" {
		dst.TrackingNumber = src.TrackingNumber
	}
	if src.CarrierName != "" {
		dst.CarrierName = src.CarrierName
	}
	if src.VehicleNumber != "" {
		dst.VehicleNumber = src.VehicleNumber
	}
	if src.EWayBillNumber != "" {
		dst.EWayBillNumber = src.EWayBillNumber
	}
	if src.ExpectedDeliveryDate != nil {
		dst.ExpectedDeliveryDate = src.ExpectedDeliveryDate
	}
}
