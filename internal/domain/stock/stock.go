// Package stock concentra las únicas mutaciones permitidas sobre InventoryRecord.
// Cada operación deja CurrentStock = AvailableStock + ReservedStock + DamagedStock.
package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// NewRecord registro vacío para una ubicación y producto (se crea al primer ingreso).
func NewRecord(locationType entity.LocationType, locationID, productID string) *entity.InventoryRecord {
	return &entity.InventoryRecord{
		LocationType:    locationType,
		LocationID:      locationID,
		ProductID:       productID,
		CurrentStock:    decimal.Zero,
		AvailableStock:  decimal.Zero,
		ReservedStock:   decimal.Zero,
		DamagedStock:    decimal.Zero,
		ReorderLevel:    decimal.Zero,
		ReorderQuantity: decimal.Zero,
		MaxStock:        decimal.Zero,
		AverageCost:     decimal.Zero,
	}
}

// Reserve aparta qty del disponible para un traslado: available −qty, reserved +qty.
func Reserve(r *entity.InventoryRecord, qty decimal.Decimal, product string) error {
	if err := checkQty(qty); err != nil {
		return err
	}
	if r.AvailableStock.LessThan(qty) {
		return domain.InsufficientStock(product, qty, r.AvailableStock)
	}
	r.AvailableStock = r.AvailableStock.Sub(qty)
	r.ReservedStock = r.ReservedStock.Add(qty)
	return verify(r)
}

// Release devuelve una reserva al disponible: reserved −qty, available +qty.
func Release(r *entity.InventoryRecord, qty decimal.Decimal, product string) error {
	if err := checkQty(qty); err != nil {
		return err
	}
	if r.ReservedStock.LessThan(qty) {
		return domain.InsufficientStock(product+" (reservado)", qty, r.ReservedStock)
	}
	r.ReservedStock = r.ReservedStock.Sub(qty)
	r.AvailableStock = r.AvailableStock.Add(qty)
	return verify(r)
}

// DeductReserved despacha mercancía reservada: reserved −qty, current −qty.
func DeductReserved(r *entity.InventoryRecord, qty decimal.Decimal, product string) error {
	if err := checkQty(qty); err != nil {
		return err
	}
	if r.ReservedStock.LessThan(qty) {
		return domain.InsufficientStock(product, qty, r.ReservedStock)
	}
	r.ReservedStock = r.ReservedStock.Sub(qty)
	r.CurrentStock = r.CurrentStock.Sub(qty)
	return verify(r)
}

// Credit ingresa mercancía recibida; la parte averiada va a DamagedStock.
// El costo promedio del registro se pondera con unitCost.
func Credit(r *entity.InventoryRecord, received, damaged, unitCost decimal.Decimal) error {
	if err := checkQty(received); err != nil {
		return err
	}
	if damaged.IsNegative() || damaged.GreaterThan(received) {
		return domain.Validation("damaged_quantity", "debe estar entre 0 y la cantidad recibida")
	}
	r.AverageCost = WeightedAverageCost(r.CurrentStock, r.AverageCost, received, unitCost)
	r.CurrentStock = r.CurrentStock.Add(received)
	r.AvailableStock = r.AvailableStock.Add(received.Sub(damaged))
	r.DamagedStock = r.DamagedStock.Add(damaged)
	return verify(r)
}

// Restore reingresa al disponible mercancía que había salido (anulación de un traslado en tránsito).
func Restore(r *entity.InventoryRecord, qty decimal.Decimal) error {
	if err := checkQty(qty); err != nil {
		return err
	}
	r.CurrentStock = r.CurrentStock.Add(qty)
	r.AvailableStock = r.AvailableStock.Add(qty)
	return verify(r)
}

// WeightedAverageCost costo promedio ponderado tras un ingreso:
// ((stock × costo) + (entrada × costoEntrada)) / (stock + entrada).
func WeightedAverageCost(stockQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	total := stockQty.Add(inQty)
	if total.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	return stockQty.Mul(currentCost).Add(inQty.Mul(inCost)).Div(total).Round(4)
}

func checkQty(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return domain.Validation("quantity", "no puede ser negativa")
	}
	return nil
}

func verify(r *entity.InventoryRecord) error {
	if !r.Balanced() {
		return fmt.Errorf("inventario desbalanceado para producto %s en %s/%s: current=%s available=%s reserved=%s damaged=%s",
			r.ProductID, r.LocationType, r.LocationID,
			r.CurrentStock, r.AvailableStock, r.ReservedStock, r.DamagedStock)
	}
	return nil
}
