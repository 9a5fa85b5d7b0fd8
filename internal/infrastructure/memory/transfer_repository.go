package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados en memoria.
type TransferRepo struct{ base }

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	for _, other := range r.s.st.transfers {
		if other.TransferNumber == t.TransferNumber {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.TransferNumber)
		}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	for i := range t.Items {
		if t.Items[i].ID == "" {
			t.Items[i].ID = uuid.New().String()
		}
		t.Items[i].TransferID = t.ID
	}
	r.s.st.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	defer r.lock()()
	t, ok := r.s.st.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	if _, ok := r.s.st.transfers[t.ID]; !ok {
		return domain.NotFound("traslado", t.ID)
	}
	r.s.st.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	defer r.lock()()
	var list []*entity.StockTransfer
	for _, t := range r.s.st.transfers {
		if f.LocationID != "" && t.Source.ID != f.LocationID && t.Destination.ID != f.LocationID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.FinancialYear != "" && t.FinancialYear != f.FinancialYear {
			continue
		}
		list = append(list, cloneTransfer(t))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TransferNumber > list[j].TransferNumber })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *TransferRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, t := range r.s.st.transfers {
		if strings.HasPrefix(t.TransferNumber, prefix) {
			n++
		}
	}
	return n, nil
}
