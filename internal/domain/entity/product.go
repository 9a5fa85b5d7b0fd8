package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// HSNCode y GSTRate determinan el tratamiento tributario de cada línea.
type Product struct {
	ID           string
	SKU          string
	Name         string
	HSNCode      string
	Category     string
	Unit         string          // kg, pcs, ltr...
	GSTRate      decimal.Decimal // 0, 5, 12, 18 o 28 (porcentaje)
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
