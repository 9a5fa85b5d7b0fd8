package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/memory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var ist = time.FixedZone("IST", 5*3600+1800)

var fixedNow = time.Date(2025, 7, 15, 10, 0, 0, 0, ist)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	uc       *UseCase
	invoices *billing.InvoiceUseCase

	warehouse *entity.Location // Maharashtra
	mumbai    *entity.Location // Maharashtra
	bengaluru *entity.Location // Karnataka
	soap      *entity.Product  // 18 %, 100 en bodega a costo 60
	rice      *entity.Product  // 5 %, 30 en bodega a costo 400
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{ctx: ctx, store: memory.NewStore()}
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
	f.seed(t, f.warehouse, f.soap, "100", "60")
	f.seed(t, f.warehouse, f.rice, "30", "400")

	authority := numbering.NewAuthority("INV", "STR")
	f.invoices = billing.NewInvoiceUseCase(billing.Deps{
		Tx:      f.store,
		Repos:   repos,
		Numbers: authority,
		Ledger:  gstledger.NewRecorder(ist),
		Log:     logger.Nop(),
	}, billing.Config{Location: ist})
	f.invoices.SetClock(func() time.Time { return fixedNow })

	f.uc = NewUseCase(Deps{
		Tx:       f.store,
		Repos:    repos,
		Numbers:  authority,
		Invoices: f.invoices,
		Log:      logger.Nop(),
	}, Config{Location: ist})
	f.uc.SetClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) seed(t *testing.T, loc *entity.Location, p *entity.Product, qty, cost string) {
	t.Helper()
	rec := &entity.InventoryRecord{
		LocationType: loc.Type, LocationID: loc.ID, ProductID: p.ID,
		CurrentStock: d(qty), AvailableStock: d(qty), ReservedStock: d("0"), DamagedStock: d("0"),
		AverageCost: d(cost),
	}
	require.NoError(t, f.store.Repos().Inventory.Save(f.ctx, rec))
}

func (f *fixture) record(t *testing.T, loc *entity.Location, p *entity.Product) *entity.InventoryRecord {
	t.Helper()
	rec, err := f.store.Repos().Inventory.Get(f.ctx, loc.Type, loc.ID, p.ID)
	require.NoError(t, err)
	return rec
}

// counts current/available/reserved/damaged como texto para comparar de una vez.
func (f *fixture) counts(t *testing.T, loc *entity.Location, p *entity.Product) [4]string {
	t.Helper()
	rec := f.record(t, loc, p)
	require.NotNil(t, rec)
	return [4]string{rec.CurrentStock.String(), rec.AvailableStock.String(), rec.ReservedStock.String(), rec.DamagedStock.String()}
}

func (f *fixture) request(dest *entity.Location, items ...dto.TransferItemRequest) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		SourceID:      f.warehouse.ID,
		DestinationID: dest.ID,
		Reason:        "reposición semanal",
		Items:         items,
	}
}

func item(p *entity.Product, qty string) dto.TransferItemRequest {
	return dto.TransferItemRequest{ProductID: p.ID, Quantity: d(qty)}
}

// shipped crea, aprueba y despacha un traslado de la bodega a Mumbai.
func (f *fixture) shipped(t *testing.T, req dto.CreateTransferRequest) *entity.StockTransfer {
	t.Helper()
	tr, err := f.uc.CreateTransfer(f.ctx, "store-user", req)
	require.NoError(t, err)
	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, "admin", nil)
	require.NoError(t, err)
	tr, err = f.uc.ShipTransfer(f.ctx, tr.ID, "wh-user", entity.TrackingInfo{VehicleNumber: "MH12AB1234"})
	require.NoError(t, err)
	return tr
}
