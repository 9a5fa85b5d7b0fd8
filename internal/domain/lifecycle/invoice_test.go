package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

var now = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func draftInvoice(total string) *entity.Invoice {
	return &entity.Invoice{
		InvoiceNumber: "INV-2025-26-WH-000001",
		InvoiceDate:   now,
		TotalAmount:   d(total),
		PaidAmount:    decimal.Zero,
		Status:        entity.InvoiceDraft,
		PaymentStatus: entity.PaymentPending,
	}
}

func TestIssueInvoice(t *testing.T) {
	inv := draftInvoice("1180")
	require.NoError(t, IssueInvoice(inv, "u-1", now))
	assert.Equal(t, entity.InvoiceIssued, inv.Status)
	assert.Equal(t, "u-1", inv.IssuedBy)
	require.NotNil(t, inv.IssuedAt)

	err := IssueInvoice(inv, "u-1", now)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}

func TestApplyPayment_PartialThenPaid(t *testing.T) {
	inv := draftInvoice("1180")
	require.NoError(t, IssueInvoice(inv, "u-1", now))

	require.NoError(t, ApplyPayment(inv, Payment{Amount: d("500"), Method: "upi", Reference: "UTR1"}, now))
	assert.Equal(t, entity.PaymentPartial, inv.PaymentStatus)
	assert.Equal(t, "500", inv.PaidAmount.String())
	assert.Equal(t, "680", inv.RemainingAmount().String())
	assert.Nil(t, inv.PaidAt)

	// dentro de la tolerancia de 0.01 se considera pagada
	require.NoError(t, ApplyPayment(inv, Payment{Amount: d("679.99")}, now))
	assert.Equal(t, entity.PaymentPaid, inv.PaymentStatus)
	require.NotNil(t, inv.PaidAt)
	assert.Equal(t, "upi", inv.PaymentMethod)

	err := ApplyPayment(inv, Payment{Amount: d("1")}, now)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), "no se paga dos veces")
}

func TestApplyPayment_Rejections(t *testing.T) {
	t.Run("factura anulada", func(t *testing.T) {
		inv := draftInvoice("100")
		require.NoError(t, CancelInvoice(inv, "u", "error de digitación", now))
		err := ApplyPayment(inv, Payment{Amount: d("10")}, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
		assert.Equal(t, domain.CodeInvalidStateTransition, domain.CodeOf(err))
	})
	t.Run("monto no positivo", func(t *testing.T) {
		err := ApplyPayment(draftInvoice("100"), Payment{Amount: d("0")}, now)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
	t.Run("excede saldo", func(t *testing.T) {
		err := ApplyPayment(draftInvoice("100"), Payment{Amount: d("100.02")}, now)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestApplyPayment_ExcedenteDentroDeToleranciaNoSuperaTotal(t *testing.T) {
	inv := draftInvoice("1180")
	require.NoError(t, IssueInvoice(inv, "u-1", now))

	require.NoError(t, ApplyPayment(inv, Payment{Amount: d("1180.01")}, now))
	assert.Equal(t, entity.PaymentPaid, inv.PaymentStatus)
	assert.True(t, inv.PaidAmount.Equal(inv.TotalAmount), "pagado %s, total %s", inv.PaidAmount, inv.TotalAmount)
	assert.True(t, inv.RemainingAmount().IsZero())

	partial := draftInvoice("100")
	require.NoError(t, ApplyPayment(partial, Payment{Amount: d("40")}, now))
	require.NoError(t, ApplyPayment(partial, Payment{Amount: d("60.01")}, now))
	assert.Equal(t, "100", partial.PaidAmount.String())
	assert.Equal(t, entity.PaymentPaid, partial.PaymentStatus)
}

func TestCancelInvoice(t *testing.T) {
	t.Run("pagada exige nota crédito", func(t *testing.T) {
		inv := draftInvoice("100")
		require.NoError(t, ApplyPayment(inv, Payment{Amount: d("100")}, now))
		err := CancelInvoice(inv, "u", "motivo", now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
		assert.Equal(t, domain.CodeCannotCancelPaidInvoice, domain.CodeOf(err))
		assert.Equal(t, entity.InvoiceDraft, inv.Status)
	})
	t.Run("ya anulada", func(t *testing.T) {
		inv := draftInvoice("100")
		require.NoError(t, CancelInvoice(inv, "u", "motivo", now))
		assert.Equal(t, "motivo", inv.CancellationReason)
		err := CancelInvoice(inv, "u", "otra vez", now)
		assert.Equal(t, domain.CodeInvalidStateTransition, domain.CodeOf(err))
	})
	t.Run("motivo obligatorio", func(t *testing.T) {
		err := CancelInvoice(draftInvoice("100"), "u", "  ", now)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestApplyUpdate(t *testing.T) {
	inv := draftInvoice("100")
	due := now.AddDate(0, 0, 30)
	notes := "entregar en muelle 2"
	typ := entity.InvoiceTypeInterBranch
	require.NoError(t, ApplyUpdate(inv, InvoiceUpdate{DueDate: &due, Notes: &notes, InvoiceType: &typ}, now))
	assert.Equal(t, due, *inv.DueDate)
	assert.Equal(t, notes, inv.Notes)
	assert.Equal(t, entity.InvoiceTypeInterBranch, inv.InvoiceType)
	assert.Equal(t, "100", inv.TotalAmount.String(), "los montos no cambian")

	bad := entity.InvoiceType("gift")
	assert.True(t, errors.Is(ApplyUpdate(inv, InvoiceUpdate{InvoiceType: &bad}, now), domain.ErrValidation))
	past := now.AddDate(0, 0, -1)
	assert.True(t, errors.Is(ApplyUpdate(inv, InvoiceUpdate{DueDate: &past}, now), domain.ErrValidation))

	require.NoError(t, ApplyPayment(inv, Payment{Amount: d("100")}, now))
	assert.True(t, errors.Is(ApplyUpdate(inv, InvoiceUpdate{Notes: &notes}, now), domain.ErrInvalidStateTransition))
}

func TestMarkRevised(t *testing.T) {
	inv := draftInvoice("100")
	require.NoError(t, IssueInvoice(inv, "u", now))
	require.NoError(t, MarkRevised(inv, now))
	assert.Equal(t, entity.InvoiceRevised, inv.Status)
	assert.True(t, errors.Is(MarkRevised(inv, now), domain.ErrInvalidStateTransition))

	partial := draftInvoice("100")
	require.NoError(t, ApplyPayment(partial, Payment{Amount: d("10")}, now))
	assert.True(t, errors.Is(MarkRevised(partial, now), domain.ErrInvalidStateTransition))
}
