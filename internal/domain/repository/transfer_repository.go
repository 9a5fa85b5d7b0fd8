package repository

import (
	"context"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// TransferFilter filtros del listado de traslados. LocationID coincide con origen o destino.
type TransferFilter struct {
	LocationID    string
	Status        entity.TransferStatus
	FinancialYear string
	Limit         int
	Offset        int
}

// TransferRepository define el puerto de persistencia para traslados.
type TransferRepository interface {
	// Create persiste cabecera y líneas. Un número repetido devuelve un error que envuelve domain.ErrDuplicate.
	Create(ctx context.Context, t *entity.StockTransfer) error
	// GetByID devuelve el traslado con sus líneas, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// Update guarda cabecera y cantidades de las líneas.
	Update(ctx context.Context, t *entity.StockTransfer) error
	List(ctx context.Context, f TransferFilter) ([]*entity.StockTransfer, int, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}
