package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var (
	_ repository.GSTLedgerRepository  = (*LedgerRepo)(nil)
	_ repository.GSTSummaryRepository = (*SummaryRepo)(nil)
	_ repository.SequenceRepository   = (*SequenceRepo)(nil)
)

// LedgerRepo libro GST en memoria, en orden de inserción.
type LedgerRepo struct{ base }

func (r *LedgerRepo) Create(_ context.Context, e *entity.GSTLedgerEntry) error {
	defer r.lock()()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.s.st.ledger = append(r.s.st.ledger, cloneEntry(e))
	return nil
}

func (r *LedgerRepo) ListBySource(_ context.Context, sourceType, sourceID string) ([]*entity.GSTLedgerEntry, error) {
	defer r.lock()()
	var list []*entity.GSTLedgerEntry
	for _, e := range r.s.st.ledger {
		if e.SourceType == sourceType && e.SourceID == sourceID {
			list = append(list, cloneEntry(e))
		}
	}
	return list, nil
}

func (r *LedgerRepo) ListByEntityPeriod(_ context.Context, t entity.LocationType, entityID, period string) ([]*entity.GSTLedgerEntry, error) {
	defer r.lock()()
	var list []*entity.GSTLedgerEntry
	for _, e := range r.s.st.ledger {
		if e.EntityType == t && e.EntityID == entityID && e.TaxPeriod == period {
			list = append(list, cloneEntry(e))
		}
	}
	return list, nil
}

func (r *LedgerRepo) ListEntities(_ context.Context, period string) ([]repository.GSTEntity, error) {
	defer r.lock()()
	seen := map[string]bool{}
	var list []repository.GSTEntity
	for _, e := range r.s.st.ledger {
		key := string(e.EntityType) + "|" + e.EntityID
		if e.TaxPeriod != period || seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, repository.GSTEntity{Type: e.EntityType, ID: e.EntityID, GSTIN: e.GSTIN})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *LedgerRepo) MarkFiled(_ context.Context, t entity.LocationType, entityID, period string, rt entity.GSTReturnType) error {
	defer r.lock()()
	for _, e := range r.s.st.ledger {
		if e.EntityType != t || e.EntityID != entityID || e.TaxPeriod != period {
			continue
		}
		switch rt {
		case entity.ReturnGSTR1:
			e.GSTR1Filed = true
		case entity.ReturnGSTR3B:
			e.GSTR3BFiled = true
		}
	}
	return nil
}

// SummaryRepo consolidados GST en memoria.
type SummaryRepo struct{ base }

func summaryKey(t entity.LocationType, entityID, period string) string {
	return string(t) + "|" + entityID + "|" + period
}

func (r *SummaryRepo) Get(_ context.Context, t entity.LocationType, entityID, period string) (*entity.GSTSummary, error) {
	defer r.lock()()
	s, ok := r.s.st.summaries[summaryKey(t, entityID, period)]
	if !ok {
		return nil, nil
	}
	return cloneSummary(s), nil
}

func (r *SummaryRepo) Upsert(_ context.Context, s *entity.GSTSummary) error {
	defer r.lock()()
	key := summaryKey(s.EntityType, s.EntityID, s.TaxPeriod)
	if cur, ok := r.s.st.summaries[key]; ok {
		s.ID = cur.ID
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.s.st.summaries[key] = cloneSummary(s)
	return nil
}

// SequenceRepo contadores de numeración.
type SequenceRepo struct{ base }

func (r *SequenceRepo) Next(_ context.Context, scope string, floor int64) (int64, error) {
	defer r.lock()()
	v := r.s.st.sequences[scope]
	if floor > v {
		v = floor
	}
	v++
	r.s.st.sequences[scope] = v
	return v, nil
}
