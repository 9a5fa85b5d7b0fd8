package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockResponse existencias de un producto en una ubicación.
type StockResponse struct {
	LocationType   string          `json:"location_type"`
	LocationID     string          `json:"location_id"`
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku,omitempty"`
	ProductName    string          `json:"product_name,omitempty"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	AvailableStock decimal.Decimal `json:"available_stock"`
	ReservedStock  decimal.Decimal `json:"reserved_stock"`
	DamagedStock   decimal.Decimal `json:"damaged_stock"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un SKU
// que se encuentra en o por debajo de su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	AvailableStock     decimal.Decimal `json:"available_stock"`
	ReservedStock      decimal.Decimal `json:"reserved_stock"`
	ReorderLevel       decimal.Decimal `json:"reorder_level"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // cantidad de reorden o (reorden × 1.5) − disponible
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty × UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
