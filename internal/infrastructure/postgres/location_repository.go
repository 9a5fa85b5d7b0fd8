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

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo bodegas y tiendas sobre la tabla locations.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, type, code, name, gstin, address, city, state, state_code, pincode, is_active, created_at, updated_at`

// Create persiste una nueva ubicación. El código es único.
func (r *LocationRepo) Create(ctx context.Context, loc *entity.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}
	now := time.Now()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}
	loc.UpdatedAt = now
	query := `INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		loc.ID, loc.Type, loc.Code, loc.Name, nullIfEmpty(loc.GSTIN), loc.Address, loc.City,
		loc.State, loc.StateCode, loc.Pincode, loc.IsActive, loc.CreatedAt, loc.UpdatedAt,
	)
	if err != nil {
		return duplicateOr(err, "location "+loc.Code)
	}
	return nil
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var (
		l     entity.Location
		gstin *string
	)
	err := row.Scan(&l.ID, &l.Type, &l.Code, &l.Name, &gstin, &l.Address, &l.City,
		&l.State, &l.StateCode, &l.Pincode, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.GSTIN = derefStr(gstin)
	return &l, nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// ListActive ubicaciones activas ordenadas por código.
func (r *LocationRepo) ListActive(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE is_active ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
