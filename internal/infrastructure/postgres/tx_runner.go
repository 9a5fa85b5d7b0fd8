package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los bloqueos de fila (SELECT ... FOR UPDATE) de los repositorios duran hasta el fin de la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos arma los repositorios sobre q (pool para lecturas sueltas, tx dentro de Run).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Locations: NewLocationRepository(q),
		Products:  NewProductRepository(q),
		Inventory: NewInventoryRepository(q),
		Invoices:  NewInvoiceRepository(q),
		Transfers: NewTransferRepository(q),
		Ledger:    NewGSTLedgerRepository(q),
		Summaries: NewGSTSummaryRepository(q),
		Sequences: NewSequenceRepository(q),
	}
}
