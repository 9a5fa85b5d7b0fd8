package repository

import (
	"context"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// GSTEntity entidad tributaria con asientos en un período.
type GSTEntity struct {
	Type  entity.LocationType
	ID    string
	GSTIN string
}

// GSTLedgerRepository libro GST. Los asientos no se modifican salvo sus banderas de declaración.
type GSTLedgerRepository interface {
	Create(ctx context.Context, e *entity.GSTLedgerEntry) error
	ListBySource(ctx context.Context, sourceType, sourceID string) ([]*entity.GSTLedgerEntry, error)
	ListByEntityPeriod(ctx context.Context, entityType entity.LocationType, entityID, period string) ([]*entity.GSTLedgerEntry, error)
	// ListEntities entidades con al menos un asiento en el período.
	ListEntities(ctx context.Context, period string) ([]GSTEntity, error)
	// MarkFiled marca los asientos del período como incluidos en la declaración.
	MarkFiled(ctx context.Context, entityType entity.LocationType, entityID, period string, rt entity.GSTReturnType) error
}

// GSTSummaryRepository consolidado por (entidad, período).
type GSTSummaryRepository interface {
	// Get devuelve nil, nil si el período no se ha consolidado.
	Get(ctx context.Context, entityType entity.LocationType, entityID, period string) (*entity.GSTSummary, error)
	// Upsert inserta o reemplaza el consolidado de (entidad, período).
	Upsert(ctx context.Context, s *entity.GSTSummary) error
}

// SequenceRepository contador atómico por ámbito de numeración.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor del ámbito. floor es la cantidad de
	// documentos ya existentes: el valor devuelto nunca es menor que floor+1.
	Next(ctx context.Context, scope string, floor int64) (int64, error)
}
