package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre la tabla inventory (usable con pool o tx).
// Una fila por (tipo de ubicación, ubicación, producto).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `id, location_type, location_id, product_id, current_stock, available_stock, reserved_stock,
	damaged_stock, reorder_level, reorder_quantity, max_stock, average_cost, last_movement_at, created_at, updated_at`

func scanInventory(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(&rec.ID, &rec.LocationType, &rec.LocationID, &rec.ProductID,
		&rec.CurrentStock, &rec.AvailableStock, &rec.ReservedStock, &rec.DamagedStock,
		&rec.ReorderLevel, &rec.ReorderQuantity, &rec.MaxStock, &rec.AverageCost,
		&rec.LastMovementAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *InventoryRepo) get(ctx context.Context, suffix string, t entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory
		WHERE location_type = $1 AND location_id = $2 AND product_id = $3` + suffix
	rec, err := scanInventory(r.q.QueryRow(ctx, query, t, locationID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rec, nil
}

// Get obtiene las existencias de un producto en una ubicación.
func (r *InventoryRepo) Get(ctx context.Context, t entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, "", t, locationID, productID)
}

// GetForUpdate obtiene las existencias y bloquea la fila para update (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, t entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, " FOR UPDATE", t, locationID, productID)
}

// Save inserta o actualiza el registro (por ubicación y producto).
// Los CHECK de la tabla rechazan cantidades negativas o descuadradas.
func (r *InventoryRepo) Save(ctx context.Context, rec *entity.InventoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	query := `
		INSERT INTO inventory (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (location_type, location_id, product_id)
		DO UPDATE SET current_stock = EXCLUDED.current_stock,
		              available_stock = EXCLUDED.available_stock,
		              reserved_stock = EXCLUDED.reserved_stock,
		              damaged_stock = EXCLUDED.damaged_stock,
		              reorder_level = EXCLUDED.reorder_level,
		              reorder_quantity = EXCLUDED.reorder_quantity,
		              max_stock = EXCLUDED.max_stock,
		              average_cost = EXCLUDED.average_cost,
		              last_movement_at = EXCLUDED.last_movement_at,
		              updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.LocationType, rec.LocationID, rec.ProductID,
		rec.CurrentStock, rec.AvailableStock, rec.ReservedStock, rec.DamagedStock,
		rec.ReorderLevel, rec.ReorderQuantity, rec.MaxStock, rec.AverageCost,
		rec.LastMovementAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

// ListBelowReorder registros con disponible <= punto de reorden, mayor déficit primero.
func (r *InventoryRepo) ListBelowReorder(ctx context.Context, t entity.LocationType, locationID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory
		WHERE location_type = $1 AND location_id = $2
		  AND reorder_level > 0 AND available_stock <= reorder_level
		ORDER BY (reorder_level - available_stock) DESC, product_id`
	rows, err := r.q.Query(ctx, query, t, locationID)
	if err != nil {
		return nil, fmt.Errorf("list below reorder: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
