package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/inventory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/transfer"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/jwt"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *billing.InvoiceUseCase
	TransferUC *transfer.UseCase
	GSTUC      *gstledger.UseCase
	StockUC    *inventory.StockUseCase
	JWTSecret  string
	Location   *time.Location // zona de las fechas recibidas
	Log        *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.Component("http")
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	accounting := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)

	// Invoices
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id", invoiceHandler.Update)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/issue", invoiceHandler.Issue)
	invoices.Post("/:id/payments", accounting, invoiceHandler.RecordPayment)
	invoices.Post("/:id/cancel", adminOnly, invoiceHandler.Cancel)
	invoices.Post("/:id/revise", accounting, invoiceHandler.Revise)

	// Transfers
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, loc, log)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", adminOnly, transferHandler.Approve)
	transfers.Post("/:id/reject", adminOnly, transferHandler.Reject)
	transfers.Post("/:id/ship", transferHandler.Ship)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", adminOnly, transferHandler.Cancel)

	// GST
	gst := api.Group("/gst", accounting)
	gstHandler := NewGSTHandler(deps.GSTUC, deps.InvoiceUC, loc, log)
	gst.Post("/summaries", gstHandler.Summarize)
	gst.Get("/summaries", gstHandler.GetSummary)
	gst.Get("/summaries/export", gstHandler.ExportSummary)
	gst.Post("/summaries/filed", adminOnly, gstHandler.MarkFiled)
	gst.Get("/entries", gstHandler.Entries)
	gst.Get("/hsn", gstHandler.HSN)
	gst.Get("/tally", gstHandler.ExportTally)

	// Inventory
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC, log)
	inv.Get("/:location_id/low-stock", inventoryHandler.GetLowStock)
	inv.Get("/:location_id/products/:product_id", inventoryHandler.GetStock)
}
