package billing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/memory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// mockRenderer generador de PDF simulado.
type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) RenderInvoice(_ context.Context, inv *entity.Invoice) ([]byte, error) {
	args := m.Called(inv.InvoiceNumber)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// fakeDocs almacén de documentos en memoria.
type fakeDocs struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (f *fakeDocs) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "mem://" + name
	f.files[path] = append([]byte(nil), data...)
	return path, nil
}

func (f *fakeDocs) Open(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return b, nil
}

// recordingPublisher guarda los tipos de evento publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	kv       *memory.KV
	docs     *fakeDocs
	renderer *mockRenderer
	events   *recordingPublisher
	uc       *InvoiceUseCase

	warehouse *entity.Location // Maharashtra
	mumbai    *entity.Location // Maharashtra
	bengaluru *entity.Location // Karnataka
	soap      *entity.Product  // 18 %
	rice      *entity.Product  // 5 %
}

var fixedNow = time.Date(2025, 7, 15, 10, 0, 0, 0, ist)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ctx:      ctx,
		store:    memory.NewStore(),
		kv:       memory.NewKV(),
		docs:     &fakeDocs{files: map[string][]byte{}},
		renderer: &mockRenderer{},
		events:   &recordingPublisher{},
	}
	repos := f.store.Repos()

	f.warehouse = &entity.Location{Type: entity.LocationWarehouse, Code: "WH-PNQ", Name: "Bodega Pune",
		GSTIN: "27AAACF1234A1Z5", State: "Maharashtra", StateCode: "27", IsActive: true}
	f.mumbai = &entity.Location{Type: entity.LocationStore, Code: "ST-BOM", Name: "Tienda Andheri",
		GSTIN: "27AAACF1234A2Z4", State: "Maharashtra", StateCode: "27", IsActive: true}
	f.bengaluru = &entity.Location{Type: entity.LocationStore, Code: "ST-BLR", Name: "Tienda Indiranagar",
		GSTIN: "29AAACF1234A1Z1", State: "Karnataka", StateCode: "29", IsActive: true}
	for _, l := range []*entity.Location{f.warehouse, f.mumbai, f.bengaluru} {
		require.NoError(t, repos.Locations.Create(ctx, l))
	}

	f.soap = &entity.Product{SKU: "SOAP-100", Name: "Jabón de tocador", HSNCode: "3401", Unit: "pcs",
		GSTRate: d("18"), CostPrice: d("70"), SellingPrice: d("100"), IsActive: true}
	f.rice = &entity.Product{SKU: "RICE-5KG", Name: "Arroz basmati 5 kg", HSNCode: "1006", Unit: "pcs",
		GSTRate: d("5"), CostPrice: d("400"), SellingPrice: d("450"), IsActive: true}
	for _, p := range []*entity.Product{f.soap, f.rice} {
		require.NoError(t, repos.Products.Create(ctx, p))
	}

	recorder := gstledger.NewRecorder(ist)
	f.uc = NewInvoiceUseCase(Deps{
		Tx:          f.store,
		Repos:       repos,
		Numbers:     numbering.NewAuthority("INV", "STR"),
		Ledger:      recorder,
		Renderer:    f.renderer,
		Documents:   f.docs,
		Events:      f.events,
		Idempotency: f.kv,
		Log:         logger.Nop(),
	}, Config{MaxRetries: 3, DefaultDueDays: 30, Location: ist})
	f.uc.SetClock(func() time.Time { return fixedNow })
	return f
}

// request factura de 10 jabones a 100 (18 %) de la bodega a la tienda indicada.
func (f *fixture) request(recipient *entity.Location) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceType: string(entity.InvoiceTypeInternalSale),
		IssuerID:    f.warehouse.ID,
		RecipientID: recipient.ID,
		Items: []dto.InvoiceItemRequest{
			{ProductID: f.soap.ID, Quantity: d("10"), UnitPrice: dp("100"), TaxRate: dp("18")},
		},
	}
}

func (f *fixture) expectRender() {
	f.renderer.On("RenderInvoice", mock.Anything).Return([]byte("%PDF-1.7"), nil)
}

func (f *fixture) createIssued(t *testing.T) *entity.Invoice {
	t.Helper()
	f.expectRender()
	inv, err := f.uc.CreateInvoice(f.ctx, "user-1", f.request(f.mumbai))
	require.NoError(t, err)
	inv, err = f.uc.IssueInvoice(f.ctx, inv.ID, "user-1")
	require.NoError(t, err)
	return inv
}
