package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo facturas en memoria. El número es único como en la tabla invoices.
type InvoiceRepo struct{ base }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.lock()()
	if r.s.duplicateFailures > 0 {
		r.s.duplicateFailures--
		return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
	}
	for _, other := range r.s.st.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == "" {
			inv.Items[i].ID = uuid.New().String()
		}
		inv.Items[i].InvoiceID = inv.ID
	}
	r.s.st.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	defer r.lock()()
	inv, ok := r.s.st.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza la cabecera; las líneas guardadas se conservan.
func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	defer r.lock()()
	cur, ok := r.s.st.invoices[inv.ID]
	if !ok {
		return domain.NotFound("factura", inv.ID)
	}
	c := cloneInvoice(inv)
	c.Items = cur.Items
	r.s.st.invoices[inv.ID] = c
	return nil
}

func (r *InvoiceRepo) UpdatePDFPath(_ context.Context, id, path string) error {
	defer r.lock()()
	inv, ok := r.s.st.invoices[id]
	if !ok {
		return domain.NotFound("factura", id)
	}
	inv.PDFPath = path
	return nil
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	defer r.lock()()
	var list []*entity.Invoice
	for _, inv := range r.s.st.invoices {
		if matchInvoice(inv, f) {
			list = append(list, cloneInvoice(inv))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].InvoiceNumber > list[j].InvoiceNumber })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func matchInvoice(inv *entity.Invoice, f repository.InvoiceFilter) bool {
	switch {
	case f.IssuerID != "" && inv.Issuer.ID != f.IssuerID:
		return false
	case f.RecipientID != "" && inv.Recipient.ID != f.RecipientID:
		return false
	case f.Status != "" && inv.Status != f.Status:
		return false
	case f.FinancialYear != "" && inv.FinancialYear != f.FinancialYear:
		return false
	case !f.DateFrom.IsZero() && inv.InvoiceDate.Before(f.DateFrom):
		return false
	case !f.DateTo.IsZero() && !inv.InvoiceDate.Before(f.DateTo):
		return false
	}
	return true
}

func (r *InvoiceRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, inv := range r.s.st.invoices {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) {
			n++
		}
	}
	return n, nil
}

func (r *InvoiceRepo) ListIssuedLines(_ context.Context, issuerType entity.LocationType, issuerID string, from, to time.Time) ([]entity.InvoiceLineItem, error) {
	defer r.lock()()
	var invs []*entity.Invoice
	for _, inv := range r.s.st.invoices {
		if inv.Status == entity.InvoiceIssued && inv.Issuer.Type == issuerType && inv.Issuer.ID == issuerID &&
			!inv.InvoiceDate.Before(from) && inv.InvoiceDate.Before(to) {
			invs = append(invs, inv)
		}
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].InvoiceNumber < invs[j].InvoiceNumber })
	var lines []entity.InvoiceLineItem
	for _, inv := range invs {
		lines = append(lines, inv.Items...)
	}
	return lines, nil
}
