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

var (
	_ repository.GSTLedgerRepository  = (*GSTLedgerRepo)(nil)
	_ repository.GSTSummaryRepository = (*GSTSummaryRepo)(nil)
	_ repository.SequenceRepository   = (*SequenceRepo)(nil)
)

// GSTLedgerRepo libro GST (solo inserción; las banderas de declaración son lo único que cambia).
type GSTLedgerRepo struct {
	q Querier
}

// NewGSTLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGSTLedgerRepository(q Querier) *GSTLedgerRepo {
	return &GSTLedgerRepo{q: q}
}

const ledgerColumns = `id, tax_period, entity_type, entity_id, gstin, state_code, transaction_type, direction,
	source_type, source_id, source_number, transaction_date, counterparty_gstin, is_inter_state,
	taxable_amount, output_cgst, output_sgst, output_igst, input_cgst, input_sgst, input_igst,
	itc_eligible, itc_claimed, gstr1_filed, gstr3b_filed, is_reconciled, original_entry_id, created_at, updated_at`

const ledgerColumnCount = 29

// Create inserta el asiento.
func (r *GSTLedgerRepo) Create(ctx context.Context, e *entity.GSTLedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT INTO gst_ledger (` + ledgerColumns + `) VALUES (` + placeholders(ledgerColumnCount) + `)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TaxPeriod, e.EntityType, e.EntityID, e.GSTIN, e.StateCode, e.TransactionType, e.Direction,
		e.SourceType, e.SourceID, e.SourceNumber, e.TransactionDate, e.CounterpartyGSTIN, e.IsInterState,
		e.TaxableAmount, e.OutputCGST, e.OutputSGST, e.OutputIGST, e.InputCGST, e.InputSGST, e.InputIGST,
		e.ITCEligible, e.ITCClaimed, e.GSTR1Filed, e.GSTR3BFiled, e.IsReconciled, nullIfEmpty(e.OriginalEntryID),
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return duplicateOr(err, "gst ledger entry "+e.SourceNumber)
	}
	return nil
}

func (r *GSTLedgerRepo) list(ctx context.Context, where string, args ...any) ([]*entity.GSTLedgerEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ledgerColumns+` FROM gst_ledger WHERE `+where+` ORDER BY transaction_date, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list gst ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.GSTLedgerEntry
	for rows.Next() {
		var (
			e        entity.GSTLedgerEntry
			original *string
		)
		if err := rows.Scan(
			&e.ID, &e.TaxPeriod, &e.EntityType, &e.EntityID, &e.GSTIN, &e.StateCode, &e.TransactionType, &e.Direction,
			&e.SourceType, &e.SourceID, &e.SourceNumber, &e.TransactionDate, &e.CounterpartyGSTIN, &e.IsInterState,
			&e.TaxableAmount, &e.OutputCGST, &e.OutputSGST, &e.OutputIGST, &e.InputCGST, &e.InputSGST, &e.InputIGST,
			&e.ITCEligible, &e.ITCClaimed, &e.GSTR1Filed, &e.GSTR3BFiled, &e.IsReconciled, &original,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gst ledger: %w", err)
		}
		e.OriginalEntryID = derefStr(original)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListBySource asientos originales y reversiones de un documento.
func (r *GSTLedgerRepo) ListBySource(ctx context.Context, sourceType, sourceID string) ([]*entity.GSTLedgerEntry, error) {
	return r.list(ctx, `source_type = $1 AND source_id = $2`, sourceType, sourceID)
}

// ListByEntityPeriod asientos de la entidad en el período MMYYYY.
func (r *GSTLedgerRepo) ListByEntityPeriod(ctx context.Context, t entity.LocationType, entityID, period string) ([]*entity.GSTLedgerEntry, error) {
	return r.list(ctx, `entity_type = $1 AND entity_id = $2 AND tax_period = $3`, t, entityID, period)
}

// ListEntities entidades con al menos un asiento en el período.
func (r *GSTLedgerRepo) ListEntities(ctx context.Context, period string) ([]repository.GSTEntity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT entity_type, entity_id, MAX(gstin)
		FROM gst_ledger WHERE tax_period = $1
		GROUP BY entity_type, entity_id
		ORDER BY entity_id`, period)
	if err != nil {
		return nil, fmt.Errorf("list gst entities: %w", err)
	}
	defer rows.Close()
	var list []repository.GSTEntity
	for rows.Next() {
		var e repository.GSTEntity
		if err := rows.Scan(&e.Type, &e.ID, &e.GSTIN); err != nil {
			return nil, fmt.Errorf("scan gst entity: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkFiled marca los asientos del período como incluidos en la declaración.
func (r *GSTLedgerRepo) MarkFiled(ctx context.Context, t entity.LocationType, entityID, period string, rt entity.GSTReturnType) error {
	column := "gstr1_filed"
	if rt == entity.ReturnGSTR3B {
		column = "gstr3b_filed"
	}
	_, err := r.q.Exec(ctx,
		`UPDATE gst_ledger SET `+column+` = true, updated_at = $4
		 WHERE entity_type = $1 AND entity_id = $2 AND tax_period = $3`,
		t, entityID, period, time.Now())
	if err != nil {
		return fmt.Errorf("mark gst ledger filed: %w", err)
	}
	return nil
}

// GSTSummaryRepo consolidado por (entidad, período), único por esa clave.
type GSTSummaryRepo struct {
	q Querier
}

// NewGSTSummaryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGSTSummaryRepository(q Querier) *GSTSummaryRepo {
	return &GSTSummaryRepo{q: q}
}

const summaryColumns = `id, entity_type, entity_id, gstin, tax_period,
	total_output_cgst, total_output_sgst, total_output_igst, total_output_gst,
	total_input_cgst, total_input_sgst, total_input_igst, total_input_gst,
	itc_available, itc_utilized, itc_balance, net_liability,
	total_taxable_outward, total_taxable_inward, entry_count, hsn_summary,
	gstr1_status, gstr3b_status, generated_at, updated_at`

const summaryColumnCount = 25

// Get devuelve nil, nil si el período no se ha consolidado.
func (r *GSTSummaryRepo) Get(ctx context.Context, t entity.LocationType, entityID, period string) (*entity.GSTSummary, error) {
	var s entity.GSTSummary
	err := r.q.QueryRow(ctx, `SELECT `+summaryColumns+` FROM gst_summaries
		WHERE entity_type = $1 AND entity_id = $2 AND tax_period = $3`, t, entityID, period).Scan(
		&s.ID, &s.EntityType, &s.EntityID, &s.GSTIN, &s.TaxPeriod,
		&s.TotalOutputCGST, &s.TotalOutputSGST, &s.TotalOutputIGST, &s.TotalOutputGST,
		&s.TotalInputCGST, &s.TotalInputSGST, &s.TotalInputIGST, &s.TotalInputGST,
		&s.ITCAvailable, &s.ITCUtilized, &s.ITCBalance, &s.NetLiability,
		&s.TotalTaxableOutward, &s.TotalTaxableInward, &s.EntryCount, &s.HSNSummary,
		&s.GSTR1Status, &s.GSTR3BStatus, &s.GeneratedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gst summary: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza el consolidado; conserva el id y la fecha de generación existentes.
func (r *GSTSummaryRepo) Upsert(ctx context.Context, s *entity.GSTSummary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	hsn := s.HSNSummary
	if hsn == nil {
		hsn = []entity.HSNSummaryRow{}
	}
	query := `
		INSERT INTO gst_summaries (` + summaryColumns + `) VALUES (` + placeholders(summaryColumnCount) + `)
		ON CONFLICT (entity_type, entity_id, tax_period)
		DO UPDATE SET gstin = EXCLUDED.gstin,
		              total_output_cgst = EXCLUDED.total_output_cgst,
		              total_output_sgst = EXCLUDED.total_output_sgst,
		              total_output_igst = EXCLUDED.total_output_igst,
		              total_output_gst = EXCLUDED.total_output_gst,
		              total_input_cgst = EXCLUDED.total_input_cgst,
		              total_input_sgst = EXCLUDED.total_input_sgst,
		              total_input_igst = EXCLUDED.total_input_igst,
		              total_input_gst = EXCLUDED.total_input_gst,
		              itc_available = EXCLUDED.itc_available,
		              itc_utilized = EXCLUDED.itc_utilized,
		              itc_balance = EXCLUDED.itc_balance,
		              net_liability = EXCLUDED.net_liability,
		              total_taxable_outward = EXCLUDED.total_taxable_outward,
		              total_taxable_inward = EXCLUDED.total_taxable_inward,
		              entry_count = EXCLUDED.entry_count,
		              hsn_summary = EXCLUDED.hsn_summary,
		              gstr1_status = EXCLUDED.gstr1_status,
		              gstr3b_status = EXCLUDED.gstr3b_status,
		              updated_at = EXCLUDED.updated_at
		RETURNING id, generated_at`
	err := r.q.QueryRow(ctx, query,
		s.ID, s.EntityType, s.EntityID, s.GSTIN, s.TaxPeriod,
		s.TotalOutputCGST, s.TotalOutputSGST, s.TotalOutputIGST, s.TotalOutputGST,
		s.TotalInputCGST, s.TotalInputSGST, s.TotalInputIGST, s.TotalInputGST,
		s.ITCAvailable, s.ITCUtilized, s.ITCBalance, s.NetLiability,
		s.TotalTaxableOutward, s.TotalTaxableInward, s.EntryCount, hsn,
		s.GSTR1Status, s.GSTR3BStatus, s.GeneratedAt, s.UpdatedAt,
	).Scan(&s.ID, &s.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upsert gst summary: %w", err)
	}
	return nil
}

// SequenceRepo contadores de numeración en document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador del ámbito en una sola sentencia; la fila queda bloqueada
// hasta el fin de la tx, así que dos transacciones no obtienen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, scope string, floor int64) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (scope, last_value, updated_at)
		VALUES ($1, $2::bigint + 1, now())
		ON CONFLICT (scope)
		DO UPDATE SET last_value = GREATEST(document_sequences.last_value, $2::bigint) + 1, updated_at = now()
		RETURNING last_value`, scope, floor).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return n, nil
}
