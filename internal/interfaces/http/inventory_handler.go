package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/inventory"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// InventoryHandler consultas de existencias (protegido).
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// GetStock godoc
// @Summary      Existencias de un producto en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  path  string  true  "Bodega o tienda"
// @Param        product_id   path  string  true  "Producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{location_id}/products/{product_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	stock, err := h.uc.GetStock(c.Context(), c.Params("location_id"), c.Params("product_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(stock)
}

// GetLowStock godoc
// @Summary      Productos bajo el punto de reorden
// @Description  Devuelve los productos con disponible en o bajo el punto de reorden,
//
//	con la cantidad sugerida de pedido, ordenados por déficit.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  path  string  true  "Bodega o tienda"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{location_id}/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.Context(), c.Params("location_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
