package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

func TestTransferHappyPath(t *testing.T) {
	tr := &entity.StockTransfer{Status: entity.TransferPending}
	require.NoError(t, ApproveTransfer(tr, "admin", now))
	require.NoError(t, ShipTransfer(tr, "wh-user", entity.TrackingInfo{TrackingNumber: "TRK-1", VehicleNumber: "MH12AB1234"}, now))
	assert.Equal(t, entity.TransferInTransit, tr.Status)
	assert.Equal(t, "TRK-1", tr.Tracking.TrackingNumber)
	require.NoError(t, ReceiveTransfer(tr, "st-user", now))
	assert.Equal(t, entity.TransferReceived, tr.Status)
	assert.Equal(t, "st-user", tr.ReceivedBy)
}

func TestTransferGuards(t *testing.T) {
	t.Run("no se despacha un traslado pendiente", func(t *testing.T) {
		tr := &entity.StockTransfer{Status: entity.TransferPending}
		err := ShipTransfer(tr, "u", entity.TrackingInfo{}, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "pending", de.Fields["current_status"])
		assert.Equal(t, entity.TransferPending, tr.Status)
	})
	t.Run("no se recibe lo que no está en tránsito", func(t *testing.T) {
		for _, st := range []entity.TransferStatus{entity.TransferPending, entity.TransferApproved, entity.TransferReceived, entity.TransferCancelled} {
			err := ReceiveTransfer(&entity.StockTransfer{Status: st}, "u", now)
			assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), st)
		}
	})
	t.Run("no se anula un traslado recibido o ya anulado", func(t *testing.T) {
		for _, st := range []entity.TransferStatus{entity.TransferReceived, entity.TransferCancelled, entity.TransferRejected} {
			_, err := CancelTransfer(&entity.StockTransfer{Status: st}, "u", "motivo", now)
			assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), st)
		}
	})
	t.Run("anular devuelve el estado previo", func(t *testing.T) {
		tr := &entity.StockTransfer{Status: entity.TransferInTransit}
		prev, err := CancelTransfer(tr, "u", "vehículo averiado", now)
		require.NoError(t, err)
		assert.Equal(t, entity.TransferInTransit, prev)
		assert.Equal(t, entity.TransferCancelled, tr.Status)
	})
	t.Run("rechazo solo antes del despacho", func(t *testing.T) {
		assert.NoError(t, RejectTransfer(&entity.StockTransfer{Status: entity.TransferApproved}, "u", "sin cupo", now))
		err := RejectTransfer(&entity.StockTransfer{Status: entity.TransferInTransit}, "u", "sin cupo", now)
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
	})
	t.Run("e-Way Bill obligatorio sobre el umbral", func(t *testing.T) {
		tr := &entity.StockTransfer{Status: entity.TransferApproved, EWayBillRequired: true}
		err := ShipTransfer(tr, "u", entity.TrackingInfo{}, now)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		require.NoError(t, ShipTransfer(tr, "u", entity.TrackingInfo{EWayBillNumber: "391000123456"}, now))
	})
}

func TestEWayBillRequired(t *testing.T) {
	threshold := d("50000")
	assert.False(t, EWayBillRequired(d("50000"), threshold))
	assert.True(t, EWayBillRequired(d("50000.01"), threshold))
	assert.False(t, EWayBillRequired(d("1180"), threshold))
}

func TestRecordReceipt(t *testing.T) {
	item := &entity.TransferLineItem{RequestedQuantity: d("50"), ShippedQuantity: d("50")}
	RecordReceipt(item, d("45"), d("2"))
	assert.True(t, item.HasDiscrepancy)
	assert.Equal(t, "5", item.ShortageQuantity.String())
	assert.True(t, item.ExcessQuantity.IsZero())
	assert.Contains(t, item.DiscrepancyNotes, "faltante de 5")
	assert.Contains(t, item.DiscrepancyNotes, "2 unidades averiadas")

	excess := &entity.TransferLineItem{RequestedQuantity: d("10"), ShippedQuantity: d("10")}
	RecordReceipt(excess, d("12"), d("0"))
	assert.Equal(t, "2", excess.ExcessQuantity.String())
	assert.True(t, excess.HasDiscrepancy)

	exact := &entity.TransferLineItem{RequestedQuantity: d("10"), ShippedQuantity: d("10")}
	RecordReceipt(exact, d("10"), d("0"))
	assert.False(t, exact.HasDiscrepancy)
	assert.Empty(t, exact.DiscrepancyNotes)
}
