package repository

import (
	"context"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// InventoryRepository persistencia de InventoryRecord por (ubicación, producto).
// Get y GetForUpdate devuelven nil, nil cuando la ubicación aún no tiene registro del producto.
type InventoryRepository interface {
	Get(ctx context.Context, locationType entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, locationType entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error)
	// Save inserta o actualiza el registro completo.
	Save(ctx context.Context, rec *entity.InventoryRecord) error
	// ListBelowReorder registros con disponible <= punto de reorden, mayor déficit primero.
	ListBelowReorder(ctx context.Context, locationType entity.LocationType, locationID string) ([]*entity.InventoryRecord, error)
}
