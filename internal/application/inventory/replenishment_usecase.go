package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
)

var idealFactor = decimal.RequireFromString("1.5")

// LowStock devuelve los productos de la ubicación con disponible en o bajo el punto de reorden,
// con la cantidad sugerida de pedido y su prioridad (1 = mayor déficit).
func (uc *StockUseCase) LowStock(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	loc, err := uc.location(ctx, locationID)
	if err != nil {
		return nil, err
	}

	// 1. Registros bajo el punto de reorden
	records, err := uc.inventory.ListBelowReorder(ctx, loc.Type, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("inventory: listar bajo reorden: %w", err)
	}
	if len(records) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Construir las sugerencias
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(records))
	for _, rec := range records {
		suggested := rec.ReorderQuantity
		if !suggested.IsPositive() {
			// Sin cantidad de reorden configurada: llevar el disponible a 1.5 veces el punto de reorden.
			suggested = rec.ReorderLevel.Mul(idealFactor).Sub(rec.AvailableStock)
		}
		if rec.MaxStock.IsPositive() {
			room := rec.MaxStock.Sub(rec.CurrentStock)
			if suggested.GreaterThan(room) {
				suggested = room
			}
		}
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}

		s := dto.ReplenishmentSuggestionDTO{
			ProductID:          rec.ProductID,
			AvailableStock:     rec.AvailableStock,
			ReservedStock:      rec.ReservedStock,
			ReorderLevel:       rec.ReorderLevel,
			SuggestedOrderQty:  suggested,
			UnitCost:           rec.AverageCost,
			EstimatedOrderCost: suggested.Mul(rec.AverageCost).Round(2),
		}
		if p, err := uc.products.GetByID(ctx, rec.ProductID); err == nil && p != nil {
			s.SKU, s.ProductName = p.SKU, p.Name
			if s.UnitCost.IsZero() {
				s.UnitCost = p.CostPrice
				s.EstimatedOrderCost = suggested.Mul(p.CostPrice).Round(2)
			}
		}
		suggestions = append(suggestions, s)
	}

	// 3. Ordenar: mayor déficit primero; desempate por SKU
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderLevel.Sub(a.AvailableStock)
		defB := b.ReorderLevel.Sub(b.AvailableStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.SKU < b.SKU
	})

	// 4. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
