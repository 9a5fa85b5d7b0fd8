package billing

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/lifecycle"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

func TestCreateInvoice_IntraState(t *testing.T) {
	f := newFixture(t)

	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-26-WH-000001", inv.InvoiceNumber)
	assert.Equal(t, "2025-26", inv.FinancialYear)
	assert.Equal(t, entity.InvoiceDraft, inv.Status)
	assert.Equal(t, entity.PaymentPending, inv.PaymentStatus)
	assert.False(t, inv.IsInterState)
	assert.Equal(t, "1000", inv.TaxableAmount.String())
	assert.Equal(t, "90", inv.CGSTAmount.String())
	assert.Equal(t, "90", inv.SGSTAmount.String())
	assert.True(t, inv.IGSTAmount.IsZero())
	assert.Equal(t, "180", inv.TotalTax.String())
	assert.Equal(t, "1180", inv.TotalAmount.String())
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, "2025-08-14", inv.DueDate.Format(dto.DateLayout))

	// Los datos del emisor quedan congelados en la factura.
	assert.Equal(t, "27AAACF1234A1Z5", inv.Issuer.GSTIN)
	stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "3401", stored.Items[0].HSNCode)
}

func TestCreateInvoice_InterState(t *testing.T) {
	f := newFixture(t)

	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.bengaluru))
	require.NoError(t, err)

	assert.True(t, inv.IsInterState)
	assert.Equal(t, "180", inv.IGSTAmount.String())
	assert.True(t, inv.CGSTAmount.IsZero())
	assert.True(t, inv.SGSTAmount.IsZero())
	assert.Equal(t, "1180", inv.TotalAmount.String())
}

func TestCreateInvoice_RoundOff(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.mumbai)
	req.Items = []dto.InvoiceItemRequest{{ProductID: f.soap.ID, Quantity: d("1"), UnitPrice: dp("1000.34")}}

	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", req)
	require.NoError(t, err)

	// 1000.34 + 90.03 + 90.03 = 1180.40
	assert.Equal(t, "1180", inv.TotalAmount.String())
	assert.Equal(t, "-0.4", inv.RoundOff.String())
}

func TestCreateInvoice_DefaultsFromProduct(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.mumbai)
	req.Items = []dto.InvoiceItemRequest{{ProductID: f.rice.ID, Quantity: d("2")}}

	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", req)
	require.NoError(t, err)
	stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "450", stored.Items[0].UnitPrice.String())
	assert.Equal(t, "5", stored.Items[0].TaxRate.String())
	assert.Equal(t, "900", inv.TaxableAmount.String())
	assert.Equal(t, "45", inv.TotalTax.String())
}

func TestCreateInvoice_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, r *dto.CreateInvoiceRequest)
		kind   error
	}{
		{"sin líneas", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.Items = nil }, domain.ErrValidation},
		{"emisor inexistente", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.IssuerID = "nope" }, domain.ErrNotFound},
		{"producto inexistente", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.Items[0].ProductID = "nope" }, domain.ErrNotFound},
		{"cantidad cero", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.Items[0].Quantity = d("0") }, domain.ErrValidation},
		{"tasa fuera de la lista", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.Items[0].TaxRate = dp("15") }, domain.ErrValidation},
		{"emisor igual al receptor", func(f *fixture, r *dto.CreateInvoiceRequest) { r.RecipientID = f.warehouse.ID }, domain.ErrValidation},
		{"fecha inválida", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.InvoiceDate = "15/07/2025" }, domain.ErrValidation},
		{"tipo desconocido", func(_ *fixture, r *dto.CreateInvoiceRequest) { r.InvoiceType = "gift" }, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.request(f.mumbai)
			tt.mutate(f, &req)
			_, err := f.uc.CreateInvoice(f.ctx, "user-1", req)
			assert.ErrorIs(t, err, tt.kind)

			list, total, err := f.uc.ListInvoices(f.ctx, dto.ListInvoicesQuery{})
			require.NoError(t, err)
			assert.Empty(t, list)
			assert.Zero(t, total)
		})
	}
}

func TestCreateInvoice_MissingHSN(t *testing.T) {
	f := newFixture(t)
	loose := &entity.Product{SKU: "LOOSE-1", Name: "Granel", GSTRate: d("5"), SellingPrice: d("10"), IsActive: true}
	require.NoError(t, f.store.Repos().Products.Create(f.ctx, loose))
	req := f.request(f.mumbai)
	req.Items = []dto.InvoiceItemRequest{{ProductID: loose.ID, Quantity: d("1")}}

	_, err := f.uc.CreateInvoice(f.ctx, "user-1", req)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "HSN")
}

func TestCreateInvoice_ConcurrentNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	const n = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.uc.CreateInvoice(context.Background(), "user-1", f.request(f.mumbai))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[inv.InvoiceNumber] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)
	assert.True(t, numbers["INV-2025-26-WH-000001"])
	assert.True(t, numbers["INV-2025-26-WH-000020"])
}

func TestCreateInvoice_RetriesOnCollision(t *testing.T) {
	f := newFixture(t)
	f.store.FailNextInvoiceCreates(2)

	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)
	// Los intentos fallidos se revierten junto con su secuencia.
	assert.Equal(t, "INV-2025-26-WH-000001", inv.InvoiceNumber)
}

func TestCreateInvoice_RetriesExhausted(t *testing.T) {
	f := newFixture(t)
	f.store.FailNextInvoiceCreates(10)

	_, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, domain.CodeConcurrencyConflict, domain.CodeOf(err))

	_, total, err := f.uc.ListInvoices(f.ctx, dto.ListInvoicesQuery{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIssueInvoice_RecordsLedgerAndPDF(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)

	assert.Equal(t, entity.InvoiceIssued, inv.Status)
	assert.Equal(t, "user-1", inv.IssuedBy)
	require.NotNil(t, inv.IssuedAt)

	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, gstledger.SourceInvoice, inv.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	byType := map[entity.GSTTransactionType]*entity.GSTLedgerEntry{}
	for _, e := range entries {
		byType[e.TransactionType] = e
	}
	require.Contains(t, byType, entity.GSTSale)
	require.Contains(t, byType, entity.GSTPurchase)
	assert.Equal(t, f.warehouse.ID, byType[entity.GSTSale].EntityID)
	assert.Equal(t, "180", byType[entity.GSTSale].TotalOutput().String())
	assert.Equal(t, "180", byType[entity.GSTPurchase].TotalInput().String())
	assert.True(t, byType[entity.GSTPurchase].ITCEligible)
	assert.Equal(t, "072025", byType[entity.GSTSale].TaxPeriod)

	stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "mem://invoices/2025-26/INV-2025-26-WH-000001.pdf", stored.PDFPath)
	assert.Contains(t, f.events.types(), ports.EventInvoiceIssued)
	f.renderer.AssertNumberOfCalls(t, "RenderInvoice", 1)
}

func TestIssueInvoice_PDFFailureKeepsIssue(t *testing.T) {
	f := newFixture(t)
	f.renderer.On("RenderInvoice", mock.Anything).Return(nil, errors.New("fuente no encontrada"))
	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)

	inv, err = f.uc.IssueInvoice(f.ctx, inv.ID, "user-1")
	require.NoError(t, err)

	stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceIssued, stored.Status)
	assert.Empty(t, stored.PDFPath)
}

func TestIssueInvoice_Twice(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)

	_, err := f.uc.IssueInvoice(f.ctx, inv.ID, "user-1")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, gstledger.SourceInvoice, inv.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecordPayment_Partial(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)

	inv, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("500"), Method: "upi"}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPartial, inv.PaymentStatus)
	assert.Equal(t, "500", inv.PaidAmount.String())
	assert.Equal(t, "680", inv.RemainingAmount().String())

	inv, err = f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("680"), Method: "upi"}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, inv.PaymentStatus)
	assert.Contains(t, f.events.types(), ports.EventInvoicePaid)
}

func TestRecordPayment_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)
	p := lifecycle.Payment{Amount: d("500"), Method: "cash"}

	first, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", p, "req-42")
	require.NoError(t, err)
	again, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", p, "req-42")
	require.NoError(t, err)

	assert.Equal(t, "500", first.PaidAmount.String())
	assert.Equal(t, "500", again.PaidAmount.String())

	// Un pago rechazado libera la clave para reintentar.
	_, err = f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("5000")}, "req-43")
	require.ErrorIs(t, err, domain.ErrValidation)
	ok, err := f.kv.SetNX(f.ctx, "idem:payment:"+inv.ID+":req-43", "x", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

// brokenTx simula una transacción que nunca llega al commit.
type brokenTx struct{ panics bool }

func (b brokenTx) Run(context.Context, func(repository.Repos) error) error {
	if b.panics {
		panic("conexión perdida")
	}
	return errors.New("conexión perdida")
}

func TestRecordPayment_IdempotencyKeyLifecycle(t *testing.T) {
	t.Run("se marca completada tras el commit", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		_, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("100")}, "req-1")
		require.NoError(t, err)

		state, ok, err := f.kv.Get(f.ctx, "idem:payment:"+inv.ID+":req-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, idemDone, state)
	})

	t.Run("repetición en curso es conflicto y no paga", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		_, err := f.kv.SetNX(f.ctx, "idem:payment:"+inv.ID+":req-2", idemPending, 0)
		require.NoError(t, err)

		_, err = f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("100")}, "req-2")
		require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
		stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.PaidAmount.IsZero())
	})

	for _, tc := range []struct {
		name string
		tx   brokenTx
	}{
		{"error de base libera la clave", brokenTx{}},
		{"pánico libera la clave", brokenTx{panics: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			inv := f.createIssued(t)
			store := f.uc.Tx
			f.uc.Tx = tc.tx
			call := func() {
				_, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("100")}, "req-3")
				assert.Error(t, err)
			}
			if tc.tx.panics {
				assert.Panics(t, call)
			} else {
				call()
			}
			_, held, err := f.kv.Get(f.ctx, "idem:payment:"+inv.ID+":req-3")
			require.NoError(t, err)
			assert.False(t, held)

			// El reintento con la misma clave aplica el pago una sola vez.
			f.uc.Tx = store
			paid, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("100")}, "req-3")
			require.NoError(t, err)
			assert.Equal(t, "100", paid.PaidAmount.String())
			again, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("100")}, "req-3")
			require.NoError(t, err)
			assert.Equal(t, "100", again.PaidAmount.String())
		})
	}
}

func TestGuards(t *testing.T) {
	t.Run("pagar una factura anulada", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		_, err := f.uc.CancelInvoice(f.ctx, inv.ID, "admin", "error de digitación")
		require.NoError(t, err)

		_, err = f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("10")}, "")
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "cancelled", de.Fields["current_status"])
	})

	t.Run("anular una factura pagada", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		_, err := f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("1180")}, "")
		require.NoError(t, err)

		_, err = f.uc.CancelInvoice(f.ctx, inv.ID, "admin", "cliente desistió")
		require.Error(t, err)
		assert.Equal(t, domain.CodeCannotCancelPaidInvoice, domain.CodeOf(err))

		stored, err := f.uc.GetInvoice(f.ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.InvoiceIssued, stored.Status)
	})

	t.Run("factura inexistente", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.IssueInvoice(f.ctx, "nope", "user-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCancelInvoice_ReversesLedger(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)

	inv, err := f.uc.CancelInvoice(f.ctx, inv.ID, "admin", "precio equivocado")
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceCancelled, inv.Status)
	assert.Equal(t, "precio equivocado", inv.CancellationReason)

	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, gstledger.SourceInvoice, inv.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	output, input := d("0"), d("0")
	reversals := 0
	for _, e := range entries {
		output = output.Add(e.TotalOutput())
		input = input.Add(e.TotalInput())
		if e.OriginalEntryID != "" {
			reversals++
		}
	}
	assert.Equal(t, 2, reversals)
	assert.True(t, output.IsZero())
	assert.True(t, input.IsZero())
	assert.Contains(t, f.events.types(), ports.EventInvoiceCancelled)
}

func TestCancelInvoice_DraftHasNoLedger(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)

	_, err = f.uc.CancelInvoice(f.ctx, inv.ID, "admin", "duplicada")
	require.NoError(t, err)
	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, gstledger.SourceInvoice, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)
	due := "2025-09-30"
	notes := "Entregar en muelle 3"

	updated, err := f.uc.UpdateInvoice(f.ctx, inv.ID, dto.UpdateInvoiceRequest{DueDate: &due, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, due, updated.DueDate.Format(dto.DateLayout))
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, updated.TotalAmount.Equal(inv.TotalAmount))

	_, err = f.uc.RecordPayment(f.ctx, inv.ID, "user-1", lifecycle.Payment{Amount: d("1180")}, "")
	require.NoError(t, err)
	_, err = f.uc.UpdateInvoice(f.ctx, inv.ID, dto.UpdateInvoiceRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReviseInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.createIssued(t)
	req := f.request(f.mumbai)
	req.Items[0].Quantity = d("12")

	orig, repl, err := f.uc.ReviseInvoice(f.ctx, inv.ID, "user-2", req)
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceRevised, orig.Status)
	assert.Equal(t, entity.InvoiceDraft, repl.Status)
	assert.Equal(t, inv.ID, repl.OriginalInvoiceID)
	assert.Equal(t, "INV-2025-26-WH-000002", repl.InvoiceNumber)
	assert.Equal(t, "1200", repl.TaxableAmount.String())

	// Los asientos de la original quedan compensados.
	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, gstledger.SourceInvoice, inv.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	_, _, err = f.uc.ReviseInvoice(f.ctx, inv.ID, "user-2", req)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestListInvoices(t *testing.T) {
	f := newFixture(t)
	f.createIssued(t)
	_, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.bengaluru))
	require.NoError(t, err)

	list, total, err := f.uc.ListInvoices(f.ctx, dto.ListInvoicesQuery{Status: "issued"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, f.mumbai.ID, list[0].Recipient.ID)

	list, total, err = f.uc.ListInvoices(f.ctx, dto.ListInvoicesQuery{PageRequest: dto.PageRequest{Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 1)
}

func TestDownloadInvoicePDF(t *testing.T) {
	t.Run("borrador", func(t *testing.T) {
		f := newFixture(t)
		inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
		require.NoError(t, err)
		_, _, err = f.uc.DownloadInvoicePDF(f.ctx, inv.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("usa el documento guardado", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		data, name, err := f.uc.DownloadInvoicePDF(f.ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-26-WH-000001.pdf", name)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		f.renderer.AssertNumberOfCalls(t, "RenderInvoice", 1)
	})

	t.Run("regenera si el documento no existe", func(t *testing.T) {
		f := newFixture(t)
		inv := f.createIssued(t)
		f.docs.files = map[string][]byte{}
		_, _, err := f.uc.DownloadInvoicePDF(f.ctx, inv.ID)
		require.NoError(t, err)
		f.renderer.AssertNumberOfCalls(t, "RenderInvoice", 2)
	})
}

func TestRegeneratePDFs(t *testing.T) {
	f := newFixture(t)
	f.renderer.On("RenderInvoice", mock.Anything).Return(nil, errors.New("sin fuente")).Once()
	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)
	_, err = f.uc.IssueInvoice(f.ctx, inv.ID, "user-1")
	require.NoError(t, err)

	f.expectRender()
	n, err := f.uc.RegeneratePDFs(f.ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
