package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/billing"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GSTHandler consolidados, libro GST y exportaciones contables.
type GSTHandler struct {
	uc       *gstledger.UseCase
	invoices *billing.InvoiceUseCase
	loc      *time.Location
	log      *logger.Logger
}

// NewGSTHandler construye el handler. invoices se usa para la exportación a Tally.
func NewGSTHandler(uc *gstledger.UseCase, invoices *billing.InvoiceUseCase, loc *time.Location, log *logger.Logger) *GSTHandler {
	return &GSTHandler{uc: uc, invoices: invoices, loc: loc, log: log}
}

// Summarize godoc
// @Summary      Consolidar período GST
// @Description  Recalcula el resumen desde los asientos. Repetirlo deja los mismos totales.
// @Tags         gst
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SummarizeRequest  true  "entidad y período MMYYYY"
// @Success      200   {object}  dto.GSTSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/gst/summaries [post]
func (h *GSTHandler) Summarize(c *fiber.Ctx) error {
	var in dto.SummarizeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	s, err := h.uc.SummarizePeriod(c.Context(), entity.LocationType(in.EntityType), in.EntityID, in.Period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewGSTSummaryResponse(s))
}

// GetSummary godoc
// @Summary      Consultar resumen GST
// @Tags         gst
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  true  "warehouse o store"
// @Param        entity_id    query  string  true  "ID de la ubicación"
// @Param        period       query  string  true  "MMYYYY"
// @Success      200  {object}  dto.GSTSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/gst/summaries [get]
func (h *GSTHandler) GetSummary(c *fiber.Ctx) error {
	var q dto.GSTScopeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	s, err := h.uc.GetSummary(c.Context(), entity.LocationType(q.EntityType), q.EntityID, q.Period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewGSTSummaryResponse(s))
}

// MarkFiled godoc
// @Summary      Marcar declaración presentada (admin)
// @Tags         gst
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.MarkFiledRequest  true  "entidad, período y declaración"
// @Success      200   {object}  dto.GSTSummaryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/gst/summaries/filed [post]
func (h *GSTHandler) MarkFiled(c *fiber.Ctx) error {
	var in dto.MarkFiledRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	s, err := h.uc.MarkFiled(c.Context(), entity.LocationType(in.EntityType), in.EntityID, in.Period,
		entity.GSTReturnType(in.ReturnType))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewGSTSummaryResponse(s))
}

// Entries godoc
// @Summary      Asientos del libro GST
// @Tags         gst
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  true  "warehouse o store"
// @Param        entity_id    query  string  true  "ID de la ubicación"
// @Param        period       query  string  true  "MMYYYY"
// @Success      200  {array}   dto.GSTLedgerEntryResponse
// @Router       /api/gst/entries [get]
func (h *GSTHandler) Entries(c *fiber.Ctx) error {
	var q dto.GSTScopeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	entries, err := h.uc.ListEntries(c.Context(), entity.LocationType(q.EntityType), q.EntityID, q.Period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewGSTLedgerEntryResponses(entries))
}

// HSN godoc
// @Summary      Resumen HSN del período
// @Tags         gst
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  true  "warehouse o store"
// @Param        entity_id    query  string  true  "ID de la ubicación"
// @Param        period       query  string  true  "MMYYYY"
// @Success      200  {array}   entity.HSNSummaryRow
// @Router       /api/gst/hsn [get]
func (h *GSTHandler) HSN(c *fiber.Ctx) error {
	var q dto.GSTScopeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	rows, err := h.uc.HSNSummary(c.Context(), entity.LocationType(q.EntityType), q.EntityID, q.Period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if rows == nil {
		rows = []entity.HSNSummaryRow{}
	}
	return c.JSON(rows)
}

// ExportSummary godoc
// @Summary      Descargar resumen GST en Excel
// @Tags         gst
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        entity_type  query  string  true  "warehouse o store"
// @Param        entity_id    query  string  true  "ID de la ubicación"
// @Param        period       query  string  true  "MMYYYY"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/gst/summaries/export [get]
func (h *GSTHandler) ExportSummary(c *fiber.Ctx) error {
	var q dto.GSTScopeQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	var buf bytes.Buffer
	if err := h.uc.ExportSummary(c.Context(), entity.LocationType(q.EntityType), q.EntityID, q.Period, &buf); err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="gst-%s-%s.xlsx"`, q.EntityID, q.Period))
	return c.Send(buf.Bytes())
}

// ExportTally godoc
// @Summary      Exportar facturas emitidas a Tally
// @Description  XML de importación con un comprobante de venta por factura emitida en el rango.
// @Tags         gst
// @Security     Bearer
// @Produce      application/xml
// @Param        issuer_id  query  string  true  "Ubicación emisora"
// @Param        from       query  string  true  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  true  "Hasta, inclusive (YYYY-MM-DD)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/gst/tally [get]
func (h *GSTHandler) ExportTally(c *fiber.Ctx) error {
	var q dto.VoucherExportQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	from, err := time.ParseInLocation(dto.DateLayout, q.From, h.loc)
	if err != nil {
		return writeError(c, h.log, domain.Validation("from", "formato esperado "+dto.DateLayout))
	}
	to, err := time.ParseInLocation(dto.DateLayout, q.To, h.loc)
	if err != nil {
		return writeError(c, h.log, domain.Validation("to", "formato esperado "+dto.DateLayout))
	}
	var buf bytes.Buffer
	if _, err := h.invoices.ExportVouchers(c.Context(), q.IssuerID, from, to.AddDate(0, 0, 1), &buf); err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="tally-%s-%s.xml"`, q.From, q.To))
	return c.Send(buf.Bytes())
}
