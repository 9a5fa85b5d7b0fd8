package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord existencias de un producto en una ubicación.
// Invariante: CurrentStock = AvailableStock + ReservedStock + DamagedStock.
// Solo se modifica a través del paquete domain/stock.
type InventoryRecord struct {
	ID              string
	LocationType    LocationType
	LocationID      string
	ProductID       string
	CurrentStock    decimal.Decimal
	AvailableStock  decimal.Decimal
	ReservedStock   decimal.Decimal
	DamagedStock    decimal.Decimal
	ReorderLevel    decimal.Decimal
	ReorderQuantity decimal.Decimal
	MaxStock        decimal.Decimal
	AverageCost     decimal.Decimal // costo promedio ponderado de las unidades en la ubicación
	LastMovementAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Balanced verifica el invariante de conservación.
func (r *InventoryRecord) Balanced() bool {
	return r.CurrentStock.Equal(r.AvailableStock.Add(r.ReservedStock).Add(r.DamagedStock))
}

// BelowReorderLevel indica si el disponible llegó al punto de reorden.
func (r *InventoryRecord) BelowReorderLevel() bool {
	return r.ReorderLevel.IsPositive() && r.AvailableStock.LessThanOrEqual(r.ReorderLevel)
}
