package gstledger

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/memory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

type fakeExporter struct {
	summary *entity.GSTSummary
	entries int
}

func (f *fakeExporter) ExportSummary(w io.Writer, s *entity.GSTSummary, entries []*entity.GSTLedgerEntry) error {
	f.summary, f.entries = s, len(entries)
	_, err := io.WriteString(w, s.TaxPeriod)
	return err
}

type ledgerFixture struct {
	ctx       context.Context
	store     *memory.Store
	kv        *memory.KV
	recorder  *Recorder
	exporter  *fakeExporter
	uc        *UseCase
	warehouse *entity.Location
	mumbai    *entity.Location
	bengaluru *entity.Location
}

var july = time.Date(2025, 7, 10, 11, 0, 0, 0, ist)

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		ctx:      context.Background(),
		store:    memory.NewStore(),
		kv:       memory.NewKV(),
		recorder: NewRecorder(ist),
		exporter: &fakeExporter{},
	}
	repos := f.store.Repos()
	f.warehouse = &entity.Location{Type: entity.LocationWarehouse, Code: "WH-PNQ", Name: "Bodega Pune",
		GSTIN: "27AAACF1234A1Z5", StateCode: "27", IsActive: true}
	f.mumbai = &entity.Location{Type: entity.LocationStore, Code: "ST-BOM", Name: "Tienda Andheri",
		GSTIN: "27AAACF1234A2Z4", StateCode: "27", IsActive: true}
	f.bengaluru = &entity.Location{Type: entity.LocationStore, Code: "ST-BLR", Name: "Tienda Indiranagar",
		GSTIN: "29AAACF1234A1Z1", StateCode: "29", IsActive: true}
	for _, l := range []*entity.Location{f.warehouse, f.mumbai, f.bengaluru} {
		require.NoError(t, repos.Locations.Create(f.ctx, l))
	}
	f.uc = NewUseCase(f.store, repos, memory.NewLocker(f.kv), nil, f.exporter, logger.Nop(), Config{Location: ist})
	f.uc.now = func() time.Time { return time.Date(2025, 8, 2, 9, 0, 0, 0, ist) }
	return f
}

// issue guarda una factura emitida de una línea y registra sus asientos.
func (f *ledgerFixture) issue(t *testing.T, number string, issuer, recipient *entity.Location, line entity.InvoiceLineItem) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{
		InvoiceNumber: number,
		FinancialYear: "2025-26",
		InvoiceType:   entity.InvoiceTypeInternalSale,
		Issuer:        issuer.Snapshot(),
		Recipient:     recipient.Snapshot(),
		InvoiceDate:   july,
		IsInterState:  issuer.StateCode != recipient.StateCode,
		TaxableAmount: line.TaxableAmount,
		CGSTAmount:    line.CGSTAmount,
		SGSTAmount:    line.SGSTAmount,
		IGSTAmount:    line.IGSTAmount,
		TotalTax:      line.TotalTaxAmount,
		TotalAmount:   line.LineTotal,
		Status:        entity.InvoiceIssued,
		Items:         []entity.InvoiceLineItem{line},
	}
	err := f.store.Run(f.ctx, func(repos repository.Repos) error {
		if err := repos.Invoices.Create(f.ctx, inv); err != nil {
			return err
		}
		_, err := f.recorder.RecordInvoice(f.ctx, repos, inv)
		return err
	})
	require.NoError(t, err)
	return inv
}

func soapLine() entity.InvoiceLineItem {
	return entity.InvoiceLineItem{HSNCode: "3401", Unit: "pcs", Quantity: d("10"), TaxRate: d("18"),
		TaxableAmount: d("1000"), CGSTAmount: d("90"), SGSTAmount: d("90"), IGSTAmount: d("0"),
		TotalTaxAmount: d("180"), LineTotal: d("1180")}
}

func riceLine() entity.InvoiceLineItem {
	return entity.InvoiceLineItem{HSNCode: "1006", Unit: "pcs", Quantity: d("5"), TaxRate: d("5"),
		TaxableAmount: d("2000"), CGSTAmount: d("0"), SGSTAmount: d("0"), IGSTAmount: d("100"),
		TotalTaxAmount: d("100"), LineTotal: d("2100")}
}

// seed dos ventas de la bodega en julio: intraestatal a Mumbai e interestatal a Bengaluru.
func (f *ledgerFixture) seed(t *testing.T) (*entity.Invoice, *entity.Invoice) {
	t.Helper()
	return f.issue(t, "INV-2025-26-WH-000001", f.warehouse, f.mumbai, soapLine()),
		f.issue(t, "INV-2025-26-WH-000002", f.warehouse, f.bengaluru, riceLine())
}

func TestRecordInvoice_Idempotent(t *testing.T) {
	f := newLedgerFixture(t)
	inv, _ := f.seed(t)

	err := f.store.Run(f.ctx, func(repos repository.Repos) error {
		_, err := f.recorder.RecordInvoice(f.ctx, repos, inv)
		return err
	})
	require.NoError(t, err)

	entries, err := f.store.Repos().Ledger.ListBySource(f.ctx, SourceInvoice, inv.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "072025", e.TaxPeriod)
		if e.EntityID == f.mumbai.ID {
			assert.Equal(t, entity.GSTInput, e.Direction)
			assert.True(t, e.ITCEligible)
			assert.Equal(t, f.warehouse.GSTIN, e.CounterpartyGSTIN)
		} else {
			assert.Equal(t, entity.GSTOutput, e.Direction)
			assert.Equal(t, "27", e.StateCode)
		}
	}
}

func TestSummarizePeriod(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	s, err := f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	assert.Equal(t, f.warehouse.GSTIN, s.GSTIN)
	assertDec(t, "90", s.TotalOutputCGST, "cgst")
	assertDec(t, "90", s.TotalOutputSGST, "sgst")
	assertDec(t, "100", s.TotalOutputIGST, "igst")
	assertDec(t, "280", s.TotalOutputGST, "output")
	assertDec(t, "3000", s.TotalTaxableOutward, "base")
	assertDec(t, "0", s.ITCAvailable, "itc")
	assertDec(t, "280", s.NetLiability, "neto")
	assert.Equal(t, 2, s.EntryCount)
	assert.Equal(t, entity.FilingPending, s.GSTR1Status)
	require.Len(t, s.HSNSummary, 2)
	assert.Equal(t, "1006", s.HSNSummary[0].HSNCode)
	assert.Equal(t, "3401", s.HSNSummary[1].HSNCode)

	t.Run("el receptor acumula crédito sin obligación", func(t *testing.T) {
		s, err := f.uc.SummarizePeriod(f.ctx, entity.LocationStore, f.mumbai.ID, "072025")
		require.NoError(t, err)
		assertDec(t, "180", s.TotalInputGST, "input")
		assertDec(t, "180", s.ITCAvailable, "itc")
		assertDec(t, "0", s.ITCUtilized, "utilizado")
		assertDec(t, "180", s.ITCBalance, "saldo")
		assertDec(t, "0", s.NetLiability, "neto")
		assertDec(t, "1000", s.TotalTaxableInward, "base")
		assert.Empty(t, s.HSNSummary)
	})

	t.Run("el crédito cubre la venta propia", func(t *testing.T) {
		f.issue(t, "INV-2025-26-ST-000001", f.mumbai, f.warehouse, entity.InvoiceLineItem{
			HSNCode: "3401", Unit: "pcs", Quantity: d("2"), TaxRate: d("18"),
			TaxableAmount: d("200"), CGSTAmount: d("18"), SGSTAmount: d("18"), IGSTAmount: d("0"),
			TotalTaxAmount: d("36"), LineTotal: d("236")})
		s, err := f.uc.SummarizePeriod(f.ctx, entity.LocationStore, f.mumbai.ID, "072025")
		require.NoError(t, err)
		assertDec(t, "36", s.ITCUtilized, "utilizado")
		assertDec(t, "144", s.ITCBalance, "saldo")
		assertDec(t, "0", s.NetLiability, "neto")
	})
}

func TestSummarizePeriod_Idempotent(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	first, err := f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	second, err := f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.NetLiability.Equal(second.NetLiability))
	assert.True(t, first.TotalOutputGST.Equal(second.TotalOutputGST))
	assert.Equal(t, first.EntryCount, second.EntryCount)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)

	stored, err := f.uc.GetSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	assertDec(t, "280", stored.NetLiability, "neto guardado")
}

func TestSummarizePeriod_Reversal(t *testing.T) {
	f := newLedgerFixture(t)
	first, _ := f.seed(t)

	err := f.store.Run(f.ctx, func(repos repository.Repos) error {
		_, err := f.recorder.ReverseSource(f.ctx, repos, SourceInvoice, first.ID, july.Add(48*time.Hour))
		return err
	})
	require.NoError(t, err)

	s, err := f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	assertDec(t, "0", s.TotalOutputCGST, "cgst")
	assertDec(t, "0", s.TotalOutputSGST, "sgst")
	assertDec(t, "100", s.NetLiability, "neto")
	assertDec(t, "2000", s.TotalTaxableOutward, "base")
	assert.Equal(t, 3, s.EntryCount)

	// Una segunda reversión no duplica asientos.
	err = f.store.Run(f.ctx, func(repos repository.Repos) error {
		out, err := f.recorder.ReverseSource(f.ctx, repos, SourceInvoice, first.ID, july)
		assert.Empty(t, out)
		return err
	})
	require.NoError(t, err)
}

func TestSummarizePeriod_Validation(t *testing.T) {
	f := newLedgerFixture(t)
	cases := []struct {
		name       string
		entityType entity.LocationType
		entityID   string
		period     string
	}{
		{"tipo inválido", "office", f.warehouse.ID, "072025"},
		{"sin entidad", entity.LocationWarehouse, "", "072025"},
		{"mes inválido", entity.LocationWarehouse, f.warehouse.ID, "132025"},
		{"formato", entity.LocationWarehouse, f.warehouse.ID, "2025-07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.SummarizePeriod(f.ctx, tc.entityType, tc.entityID, tc.period)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSummarizePeriod_Locked(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	release, err := memory.NewLocker(f.kv).Obtain(f.ctx, "gst:summary:warehouse:"+f.warehouse.ID+":072025", time.Minute)
	require.NoError(t, err)

	_, err = f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	require.NoError(t, release(f.ctx))
	_, err = f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	assert.NoError(t, err)
}

func TestSummarizeAll(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	list, err := f.uc.SummarizeAll(f.ctx, "072025")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = f.uc.SummarizeAll(f.ctx, "082025")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkFiled(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	_, err := f.uc.MarkFiled(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", entity.ReturnGSTR1)
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin consolidado previo")

	_, err = f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)

	_, err = f.uc.MarkFiled(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", "GSTR9")
	assert.ErrorIs(t, err, domain.ErrValidation)

	s, err := f.uc.MarkFiled(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", entity.ReturnGSTR1)
	require.NoError(t, err)
	assert.Equal(t, entity.FilingFiled, s.GSTR1Status)
	assert.Equal(t, entity.FilingPending, s.GSTR3BStatus)

	entries, err := f.uc.ListEntries(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, e.GSTR1Filed)
		assert.False(t, e.GSTR3BFiled)
	}

	// Reconsolidar conserva el estado de la declaración.
	s, err = f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	assert.Equal(t, entity.FilingFiled, s.GSTR1Status)
}

func TestHSNSummary(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)
	f.issue(t, "INV-2025-26-WH-000003", f.warehouse, f.mumbai, soapLine())

	rows, err := f.uc.HSNSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rice, soap := rows[0], rows[1]
	assert.Equal(t, "1006", rice.HSNCode)
	assertDec(t, "100", rice.IGSTAmount, "igst arroz")
	assert.Equal(t, "3401", soap.HSNCode)
	assertDec(t, "20", soap.TotalQuantity, "cantidad jabón")
	assertDec(t, "2000", soap.TaxableAmount, "base jabón")
	assertDec(t, "360", soap.TotalTax, "impuesto jabón")
	assertDec(t, "2360", soap.TotalValue, "total jabón")

	rows, err = f.uc.HSNSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "062025")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExportSummary(t *testing.T) {
	f := newLedgerFixture(t)
	f.seed(t)

	var sink errWriter
	err := f.uc.ExportSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", &sink)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.SummarizePeriod(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025")
	require.NoError(t, err)
	require.NoError(t, f.uc.ExportSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", &sink))
	assert.Equal(t, "072025", f.exporter.summary.TaxPeriod)
	assert.Equal(t, 2, f.exporter.entries)
	assert.Equal(t, "072025", string(sink.buf))

	sink.fail = true
	err = f.uc.ExportSummary(f.ctx, entity.LocationWarehouse, f.warehouse.ID, "072025", &sink)
	assert.Error(t, err)
}

type errWriter struct {
	buf  []byte
	fail bool
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.fail {
		return 0, errors.New("disco lleno")
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}
