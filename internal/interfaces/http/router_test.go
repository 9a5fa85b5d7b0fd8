package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/inventory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/transfer"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/memory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/report"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/infrastructure/tally"
	apphttp "github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/interfaces/http"
	pkgjwt "github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/jwt"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// apiFixture API completa sobre repositorios en memoria.
type apiFixture struct {
	app       *fiber.App
	store     *memory.Store
	warehouse *entity.Location
	mumbai    *entity.Location
	soap      *entity.Product
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	kv := memory.NewKV()
	log := logger.Nop()

	f := &apiFixture{store: store}
	f.warehouse = &entity.Location{Type: entity.LocationWarehouse, Code: "WH-PNQ", Name: "Bodega Pune",
		GSTIN: "27AAACF1234A1Z5", State: "Maharashtra", StateCode: "27", IsActive: true}
	f.mumbai = &entity.Location{Type: entity.LocationStore, Code: "ST-BOM", Name: "Tienda Andheri",
		GSTIN: "27AAACF1234A2Z4", State: "Maharashtra", StateCode: "27", IsActive: true}
	require.NoError(t, repos.Locations.Create(ctx, f.warehouse))
	require.NoError(t, repos.Locations.Create(ctx, f.mumbai))

	f.soap = &entity.Product{SKU: "SOAP-100", Name: "Jabón de tocador", HSNCode: "3401", Unit: "pcs",
		GSTRate: decimal.NewFromInt(18), CostPrice: decimal.NewFromInt(70), SellingPrice: decimal.NewFromInt(100), IsActive: true}
	require.NoError(t, repos.Products.Create(ctx, f.soap))
	require.NoError(t, repos.Inventory.Save(ctx, &entity.InventoryRecord{
		LocationType: entity.LocationWarehouse, LocationID: f.warehouse.ID, ProductID: f.soap.ID,
		CurrentStock: decimal.NewFromInt(100), AvailableStock: decimal.NewFromInt(100),
		ReorderLevel: decimal.NewFromInt(95), AverageCost: decimal.NewFromInt(60),
	}))

	authority := numbering.NewAuthority("INV", "STR")
	invoiceUC := billing.NewInvoiceUseCase(billing.Deps{
		Tx:          store,
		Repos:       repos,
		Numbers:     authority,
		Ledger:      gstledger.NewRecorder(ist),
		Idempotency: kv,
		Vouchers:    tally.NewExporter("FreshVilla", tally.Ledgers{}),
		Log:         log,
	}, billing.Config{Location: ist})
	transferUC := transfer.NewUseCase(transfer.Deps{
		Tx:       store,
		Repos:    repos,
		Numbers:  authority,
		Invoices: invoiceUC,
		Log:      log,
	}, transfer.Config{Location: ist})
	now := func() time.Time { return time.Date(2025, 7, 15, 10, 0, 0, 0, ist) }
	invoiceUC.SetClock(now)
	transferUC.SetClock(now)
	gstUC := gstledger.NewUseCase(store, repos, memory.NewLocker(kv), nil, report.NewExcelExporter(), log,
		gstledger.Config{Location: ist})

	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		InvoiceUC:  invoiceUC,
		TransferUC: transferUC,
		GSTUC:      gstUC,
		StockUC:    inventory.NewStockUseCase(repos),
		JWTSecret:  testJWTSecret,
		Location:   ist,
		Log:        log,
	})
	return f
}

type call struct {
	method, path, role string
	body               any
	headers            map[string]string
}

func (f *apiFixture) do(t *testing.T, c call) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.role != "" {
		req.Header.Set("Authorization", tokenForRole(t, c.role))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func (f *apiFixture) invoiceBody() map[string]any {
	return map[string]any{
		"invoice_type": "internal_sale",
		"invoice_date": "2025-07-15",
		"issuer_id":    f.warehouse.ID,
		"recipient_id": f.mumbai.ID,
		"items": []map[string]any{
			{"product_id": f.soap.ID, "quantity": "10", "unit_price": "100", "tax_rate": "18"},
		},
	}
}

// issuedInvoice crea y emite una factura de 1180 y devuelve su id.
func (f *apiFixture) issuedInvoice(t *testing.T) string {
	t.Helper()
	resp, raw := f.do(t, call{method: http.MethodPost, path: "/api/invoices", role: pkgjwt.RoleWarehouseStaff, body: f.invoiceBody()})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	id := decode(t, raw)["id"].(string)

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/invoices/" + id + "/issue", role: pkgjwt.RoleWarehouseStaff})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	return id
}

func TestAPI_RequiresToken(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, call{method: http.MethodGet, path: "/api/invoices"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_InvoiceLifecycle(t *testing.T) {
	f := newAPI(t)
	id := f.issuedInvoice(t)

	resp, raw := f.do(t, call{method: http.MethodGet, path: "/api/invoices/" + id, role: pkgjwt.RoleStoreStaff})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inv := decode(t, raw)
	assert.Equal(t, "issued", inv["status"])
	assert.Equal(t, "1180", inv["total_amount"])
	assert.Equal(t, "90", inv["cgst_amount"])
	assert.Len(t, inv["items"], 1)

	pay := call{
		method:  http.MethodPost,
		path:    "/api/invoices/" + id + "/payments",
		role:    pkgjwt.RoleAccountant,
		body:    map[string]any{"amount": "1180", "method": "upi"},
		headers: map[string]string{apphttp.HeaderIdempotencyKey: "pay-1"},
	}
	resp, raw = f.do(t, pay)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "paid", decode(t, raw)["payment_status"])

	// Reintento con la misma clave: no suma dos veces.
	resp, raw = f.do(t, pay)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "1180", decode(t, raw)["paid_amount"])

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/invoices/" + id + "/cancel", role: pkgjwt.RoleAdmin,
		body: map[string]any{"reason": "error de digitación"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CANNOT_CANCEL_PAID_INVOICE", decode(t, raw)["code"])
}

func TestAPI_PaymentRequiresAccountingRole(t *testing.T) {
	f := newAPI(t)
	id := f.issuedInvoice(t)

	resp, _ := f.do(t, call{method: http.MethodPost, path: "/api/invoices/" + id + "/payments", role: pkgjwt.RoleStoreStaff,
		body: map[string]any{"amount": "100", "method": "cash"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_ValidationAndNotFound(t *testing.T) {
	f := newAPI(t)

	body := f.invoiceBody()
	delete(body, "items")
	resp, raw := f.do(t, call{method: http.MethodPost, path: "/api/invoices", role: pkgjwt.RoleAdmin, body: body})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	out := decode(t, raw)
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Contains(t, out["details"], "CreateInvoiceRequest.Items")

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/invoices/no-existe", role: pkgjwt.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode(t, raw)["code"])

	resp, _ = f.do(t, call{method: http.MethodGet, path: "/api/invoices?status=paid", role: pkgjwt.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_TransferFlow(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(t, call{method: http.MethodPost, path: "/api/transfers", role: pkgjwt.RoleStoreStaff, body: map[string]any{
		"source_id":      f.warehouse.ID,
		"destination_id": f.mumbai.ID,
		"items":          []map[string]any{{"product_id": f.soap.ID, "quantity": "10"}},
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	tr := decode(t, raw)
	id := tr["id"].(string)
	assert.Equal(t, "pending", tr["status"])

	resp, _ = f.do(t, call{method: http.MethodPost, path: "/api/transfers/" + id + "/approve", role: pkgjwt.RoleStoreStaff})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/transfers/" + id + "/approve", role: pkgjwt.RoleAdmin})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "approved", decode(t, raw)["status"])

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/transfers/" + id + "/ship", role: pkgjwt.RoleWarehouseStaff,
		body: map[string]any{"vehicle_number": "MH12AB1234"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "in_transit", decode(t, raw)["status"])

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/transfers/" + id + "/receive", role: pkgjwt.RoleStoreStaff})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "received", decode(t, raw)["status"])

	resp, raw = f.do(t, call{method: http.MethodGet,
		path: "/api/inventory/" + f.mumbai.ID + "/products/" + f.soap.ID, role: pkgjwt.RoleStoreStaff})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "10", decode(t, raw)["available_stock"])

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/inventory/" + f.warehouse.ID + "/low-stock", role: pkgjwt.RoleAdmin})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.EqualValues(t, 1, decode(t, raw)["total"])

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/transfers/" + id + "/cancel", role: pkgjwt.RoleAdmin,
		body: map[string]any{"reason": "ya recibido"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode(t, raw)["code"])
}

func TestAPI_TransferInsufficientStock(t *testing.T) {
	f := newAPI(t)

	resp, raw := f.do(t, call{method: http.MethodPost, path: "/api/transfers", role: pkgjwt.RoleStoreStaff, body: map[string]any{
		"source_id":      f.warehouse.ID,
		"destination_id": f.mumbai.ID,
		"items":          []map[string]any{{"product_id": f.soap.ID, "quantity": "150"}},
	}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	out := decode(t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])
	details := out["details"].(map[string]any)
	assert.Equal(t, "150", details["requested"])
	assert.Equal(t, "100", details["available"])
}

func TestAPI_GSTSummaryAndExports(t *testing.T) {
	f := newAPI(t)
	f.issuedInvoice(t)

	scope := "?entity_type=warehouse&entity_id=" + f.warehouse.ID + "&period=072025"

	resp, _ := f.do(t, call{method: http.MethodGet, path: "/api/gst/summaries" + scope, role: pkgjwt.RoleAccountant})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw := f.do(t, call{method: http.MethodPost, path: "/api/gst/summaries", role: pkgjwt.RoleAccountant,
		body: map[string]any{"entity_type": "warehouse", "entity_id": f.warehouse.ID, "period": "072025"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	s := decode(t, raw)
	assert.Equal(t, "180", s["total_output_gst"])
	assert.Equal(t, "180", s["net_liability"])

	resp, _ = f.do(t, call{method: http.MethodGet, path: "/api/gst/entries" + scope, role: pkgjwt.RoleStoreStaff})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/gst/hsn" + scope, role: pkgjwt.RoleAccountant})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "3401", rows[0]["hsn_code"])

	resp, raw = f.do(t, call{method: http.MethodGet, path: "/api/gst/summaries/export" + scope, role: pkgjwt.RoleAccountant})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, report.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")

	resp, raw = f.do(t, call{method: http.MethodGet,
		path: "/api/gst/tally?issuer_id=" + f.warehouse.ID + "&from=2025-07-01&to=2025-07-31", role: pkgjwt.RoleAccountant})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "<VOUCHER")

	resp, _ = f.do(t, call{method: http.MethodPost, path: "/api/gst/summaries/filed", role: pkgjwt.RoleAccountant,
		body: map[string]any{"entity_type": "warehouse", "entity_id": f.warehouse.ID, "period": "072025", "return_type": "GSTR1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = f.do(t, call{method: http.MethodPost, path: "/api/gst/summaries/filed", role: pkgjwt.RoleAdmin,
		body: map[string]any{"entity_type": "warehouse", "entity_id": f.warehouse.ID, "period": "072025", "return_type": "GSTR1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "filed", decode(t, raw)["gstr1_status"])
}
