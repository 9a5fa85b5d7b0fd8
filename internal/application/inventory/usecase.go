// Package inventory expone las consultas de existencias por ubicación. Las mutaciones
// ocurren solo dentro de los traslados.
package inventory

import (
	"context"
	"fmt"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// StockUseCase consultas de inventario.
type StockUseCase struct {
	locations repository.LocationRepository
	products  repository.ProductRepository
	inventory repository.InventoryRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(repos repository.Repos) *StockUseCase {
	return &StockUseCase{
		locations: repos.Locations,
		products:  repos.Products,
		inventory: repos.Inventory,
	}
}

func (uc *StockUseCase) location(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inventory: obtener ubicación: %w", err)
	}
	if loc == nil {
		return nil, domain.NotFound("ubicación", id)
	}
	return loc, nil
}

// GetStock existencias de un producto en la ubicación. Sin registro devuelve todo en cero.
func (uc *StockUseCase) GetStock(ctx context.Context, locationID, productID string) (dto.StockResponse, error) {
	loc, err := uc.location(ctx, locationID)
	if err != nil {
		return dto.StockResponse{}, err
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return dto.StockResponse{}, fmt.Errorf("inventory: obtener producto: %w", err)
	}
	if p == nil {
		return dto.StockResponse{}, domain.NotFound("producto", productID)
	}
	rec, err := uc.inventory.Get(ctx, loc.Type, loc.ID, p.ID)
	if err != nil {
		return dto.StockResponse{}, fmt.Errorf("inventory: obtener existencias: %w", err)
	}
	return stockResponse(loc, p, rec), nil
}

func stockResponse(loc *entity.Location, p *entity.Product, rec *entity.InventoryRecord) dto.StockResponse {
	r := dto.StockResponse{
		LocationType: string(loc.Type),
		LocationID:   loc.ID,
		ProductID:    p.ID,
		SKU:          p.SKU,
		ProductName:  p.Name,
	}
	if rec == nil {
		return r
	}
	r.CurrentStock = rec.CurrentStock
	r.AvailableStock = rec.AvailableStock
	r.ReservedStock = rec.ReservedStock
	r.DamagedStock = rec.DamagedStock
	r.ReorderLevel = rec.ReorderLevel
	r.AverageCost = rec.AverageCost
	r.LastMovementAt = rec.LastMovementAt
	return r
}
