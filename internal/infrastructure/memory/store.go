// Package memory implementa los repositorios en memoria para desarrollo y pruebas.
// Una transacción toma el candado global del Store y restaura una copia del estado si falla,
// así que ofrece las mismas garantías de atomicidad y aislamiento que la base de datos.
package memory

import (
	"context"
	"sync"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado completo del almacenamiento en memoria.
type Store struct {
	mu sync.Mutex
	st state

	// duplicateFailures próximos Create de factura que fallan con ErrDuplicate (simula carreras).
	duplicateFailures int
}

type state struct {
	locations map[string]*entity.Location
	products  map[string]*entity.Product
	inventory map[string]*entity.InventoryRecord
	invoices  map[string]*entity.Invoice
	transfers map[string]*entity.StockTransfer
	ledger    []*entity.GSTLedgerEntry
	summaries map[string]*entity.GSTSummary
	sequences map[string]int64
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: state{
		locations: map[string]*entity.Location{},
		products:  map[string]*entity.Product{},
		inventory: map[string]*entity.InventoryRecord{},
		invoices:  map[string]*entity.Invoice{},
		transfers: map[string]*entity.StockTransfer{},
		summaries: map[string]*entity.GSTSummary{},
		sequences: map[string]int64{},
	}}
}

// Run ejecuta fn con el candado tomado. Si fn falla se descartan todos sus cambios.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Repos repositorios fuera de transacción: cada llamada es atómica por sí sola.
func (s *Store) Repos() repository.Repos {
	return s.repos(false)
}

// FailNextInvoiceCreates hace que las próximas n creaciones de factura fallen por número duplicado.
func (s *Store) FailNextInvoiceCreates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicateFailures = n
}

func (s *Store) repos(inTx bool) repository.Repos {
	b := base{s: s, inTx: inTx}
	return repository.Repos{
		Locations: &LocationRepo{b},
		Products:  &ProductRepo{b},
		Inventory: &InventoryRepo{b},
		Invoices:  &InvoiceRepo{b},
		Transfers: &TransferRepo{b},
		Ledger:    &LedgerRepo{b},
		Summaries: &SummaryRepo{b},
		Sequences: &SequenceRepo{b},
	}
}

// base comparte el acceso al Store; dentro de Run el candado ya está tomado.
type base struct {
	s    *Store
	inTx bool
}

func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (st state) clone() state {
	c := state{
		locations: make(map[string]*entity.Location, len(st.locations)),
		products:  make(map[string]*entity.Product, len(st.products)),
		inventory: make(map[string]*entity.InventoryRecord, len(st.inventory)),
		invoices:  make(map[string]*entity.Invoice, len(st.invoices)),
		transfers: make(map[string]*entity.StockTransfer, len(st.transfers)),
		ledger:    make([]*entity.GSTLedgerEntry, 0, len(st.ledger)),
		summaries: make(map[string]*entity.GSTSummary, len(st.summaries)),
		sequences: make(map[string]int64, len(st.sequences)),
	}
	for k, v := range st.locations {
		c.locations[k] = cloneLocation(v)
	}
	for k, v := range st.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range st.inventory {
		c.inventory[k] = cloneRecord(v)
	}
	for k, v := range st.invoices {
		c.invoices[k] = cloneInvoice(v)
	}
	for k, v := range st.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for _, e := range st.ledger {
		c.ledger = append(c.ledger, cloneEntry(e))
	}
	for k, v := range st.summaries {
		c.summaries[k] = cloneSummary(v)
	}
	for k, v := range st.sequences {
		c.sequences[k] = v
	}
	return c
}

func cloneLocation(l *entity.Location) *entity.Location { c := *l; return &c }

func cloneProduct(p *entity.Product) *entity.Product { c := *p; return &c }

func cloneRecord(r *entity.InventoryRecord) *entity.InventoryRecord { c := *r; return &c }

func cloneEntry(e *entity.GSTLedgerEntry) *entity.GSTLedgerEntry { c := *e; return &c }

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	c := *inv
	c.Items = append([]entity.InvoiceLineItem(nil), inv.Items...)
	return &c
}

func cloneTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Items = append([]entity.TransferLineItem(nil), t.Items...)
	return &c
}

func cloneSummary(s *entity.GSTSummary) *entity.GSTSummary {
	c := *s
	c.HSNSummary = append([]entity.HSNSummaryRow(nil), s.HSNSummary...)
	return &c
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
