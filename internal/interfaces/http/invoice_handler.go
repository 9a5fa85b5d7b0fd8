package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/lifecycle"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// HeaderIdempotencyKey cabecera que evita registrar dos veces el mismo pago.
const HeaderIdempotencyKey = "Idempotency-Key"

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc  *billing.InvoiceUseCase
	log *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear factura en borrador
// @Description  Calcula líneas, impuestos y totales. El número se asigna al crear.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateInvoiceRequest  true  "emisor, receptor y líneas"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	inv, err := h.uc.CreateInvoice(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewInvoiceResponse(inv, true))
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        issuer_id       query  string  false  "Ubicación emisora"
// @Param        recipient_id    query  string  false  "Ubicación receptora"
// @Param        status          query  string  false  "draft, issued, cancelled, revised"
// @Param        financial_year  query  string  false  "Ej. 2025-26"
// @Param        limit           query  int     false  "Máximo 100"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.InvoiceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.ListInvoicesQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	list, total, err := h.uc.ListInvoices(c.Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q.DefaultPage()
	out := dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, dto.NewInvoiceResponse(inv, false))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, true))
}

// Update godoc
// @Summary      Editar factura en borrador
// @Description  Solo vencimiento, notas y tipo. Montos y líneas no se editan: use revisión.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la factura"
// @Param        body  body      dto.UpdateInvoiceRequest  true  "campos editables"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [patch]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	inv, err := h.uc.UpdateInvoice(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, true))
}

// Issue godoc
// @Summary      Emitir factura
// @Description  draft → issued. Registra los asientos GST en la misma transacción.
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	inv, err := h.uc.IssueInvoice(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, true))
}

// RecordPayment godoc
// @Summary      Registrar pago
// @Description  Con la cabecera Idempotency-Key un reintento no duplica el pago.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path      string                    true   "ID de la factura"
// @Param        Idempotency-Key  header    string                    false  "Clave de idempotencia"
// @Param        body             body      dto.RecordPaymentRequest  true   "monto y medio de pago"
// @Success      200              {object}  dto.InvoiceResponse
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      409              {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	p := lifecycle.Payment{Amount: in.Amount, Method: in.Method, Reference: in.Reference}
	inv, err := h.uc.RecordPayment(c.Context(), c.Params("id"), GetUserID(c), p, c.Get(HeaderIdempotencyKey))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, true))
}

// Cancel godoc
// @Summary      Anular factura
// @Description  Una factura pagada no se anula (CANNOT_CANCEL_PAID_INVOICE).
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID de la factura"
// @Param        body  body      dto.CancelRequest  true  "motivo"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	inv, err := h.uc.CancelInvoice(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, true))
}

// Revise godoc
// @Summary      Revisar factura
// @Description  La original pasa a revised y se crea un borrador nuevo que la referencia.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la factura"
// @Param        body  body      dto.CreateInvoiceRequest  true  "datos corregidos"
// @Success      201   {object}  map[string]dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/revise [post]
func (h *InvoiceHandler) Revise(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	original, replacement, err := h.uc.ReviseInvoice(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"original":    dto.NewInvoiceResponse(original, false),
		"replacement": dto.NewInvoiceResponse(replacement, true),
	})
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.uc.DownloadInvoicePDF(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
