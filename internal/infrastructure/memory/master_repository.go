package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// LocationRepo bodegas y tiendas en memoria.
type LocationRepo struct{ base }

func (r *LocationRepo) Create(_ context.Context, loc *entity.Location) error {
	defer r.lock()()
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now()
		loc.UpdatedAt = loc.CreatedAt
	}
	r.s.st.locations[loc.ID] = cloneLocation(loc)
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	defer r.lock()()
	l, ok := r.s.st.locations[id]
	if !ok {
		return nil, nil
	}
	return cloneLocation(l), nil
}

func (r *LocationRepo) ListActive(_ context.Context) ([]*entity.Location, error) {
	defer r.lock()()
	var list []*entity.Location
	for _, l := range r.s.st.locations {
		if l.IsActive {
			list = append(list, cloneLocation(l))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.s.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}
