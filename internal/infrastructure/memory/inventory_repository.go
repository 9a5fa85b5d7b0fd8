package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo existencias por (ubicación, producto).
type InventoryRepo struct{ base }

func inventoryKey(t entity.LocationType, locationID, productID string) string {
	return string(t) + "|" + locationID + "|" + productID
}

func (r *InventoryRepo) Get(_ context.Context, t entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error) {
	defer r.lock()()
	rec, ok := r.s.st.inventory[inventoryKey(t, locationID, productID)]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// GetForUpdate con el candado global no hace falta bloqueo por fila.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, t entity.LocationType, locationID, productID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, t, locationID, productID)
}

func (r *InventoryRepo) Save(_ context.Context, rec *entity.InventoryRecord) error {
	defer r.lock()()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	r.s.st.inventory[inventoryKey(rec.LocationType, rec.LocationID, rec.ProductID)] = cloneRecord(rec)
	return nil
}

func (r *InventoryRepo) ListBelowReorder(_ context.Context, t entity.LocationType, locationID string) ([]*entity.InventoryRecord, error) {
	defer r.lock()()
	list := []*entity.InventoryRecord{}
	for _, rec := range r.s.st.inventory {
		if rec.LocationType == t && rec.LocationID == locationID && rec.BelowReorderLevel() {
			list = append(list, cloneRecord(rec))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		di := list[i].ReorderLevel.Sub(list[i].AvailableStock)
		dj := list[j].ReorderLevel.Sub(list[j].AvailableStock)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return list[i].ProductID < list[j].ProductID
	})
	return list, nil
}
