package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/transfer"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// TransferHandler maneja los traslados de inventario (protegido).
type TransferHandler struct {
	uc  *transfer.UseCase
	loc *time.Location
	log *logger.Logger
}

// NewTransferHandler construye el handler. loc es la zona de las fechas recibidas.
func NewTransferHandler(uc *transfer.UseCase, loc *time.Location, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, loc: loc, log: log}
}

// Create godoc
// @Summary      Solicitar traslado
// @Description  Reserva el stock en origen. Falla con INSUFFICIENT_STOCK si no alcanza.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTransferRequest  true  "origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.CreateTransfer(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(t, true))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        location_id     query  string  false  "Origen o destino"
// @Param        status          query  string  false  "pending, approved, in_transit, received, cancelled, rejected"
// @Param        financial_year  query  string  false  "Ej. 2025-26"
// @Param        limit           query  int     false  "Máximo 100"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var q dto.ListTransfersQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	list, total, err := h.uc.ListTransfers(c.Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q.DefaultPage()
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewTransferResponse(t, false))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransfer(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}

// Approve godoc
// @Summary      Aprobar traslado (admin)
// @Description  Una cantidad aprobada menor libera la diferencia reservada.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ID del traslado"
// @Param        body  body      dto.ApproveTransferRequest  false "cantidades aprobadas"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	approved, err := transfer.ApprovedQuantities(in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.ApproveTransfer(c.Context(), c.Params("id"), GetUserID(c), approved)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  Descuenta el stock reservado en origen y, si se pidió, emite la factura de traslado.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID del traslado"
// @Param        body  body      dto.ShipTransferRequest  false "datos de transporte"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	tracking, err := transfer.Tracking(in, h.loc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.ShipTransfer(c.Context(), c.Params("id"), GetUserID(c), tracking)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}

// Receive godoc
// @Summary      Recibir traslado
// @Description  Ingresa lo recibido en destino y registra faltantes, sobrantes y averías.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ID del traslado"
// @Param        body  body      dto.ReceiveTransferRequest  false "cantidades recibidas"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	receipts, err := transfer.Receipts(in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	t, err := h.uc.ReceiveTransfer(c.Context(), c.Params("id"), GetUserID(c), receipts)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}

// Cancel godoc
// @Summary      Anular traslado (admin)
// @Description  Libera reservas o, en tránsito, devuelve el stock al origen.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID del traslado"
// @Param        body  body      dto.CancelRequest  true  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.CancelTransfer(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}

// Reject godoc
// @Summary      Rechazar traslado (admin)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID del traslado"
// @Param        body  body      dto.CancelRequest  true  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.RejectTransfer(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewTransferResponse(t, true))
}
