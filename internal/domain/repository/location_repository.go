package repository

import (
	"context"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para bodegas y tiendas.
type LocationRepository interface {
	Create(ctx context.Context, loc *entity.Location) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListActive(ctx context.Context) ([]*entity.Location, error)
}
