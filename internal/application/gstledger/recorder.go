// Package gstledger registra los asientos del libro GST y consolida los períodos tributarios.
package gstledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/gst"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// SourceInvoice tipo de documento origen para facturas internas.
const SourceInvoice = "invoice"

// SourceDocument documento tributario del que deriva un asiento, visto desde la entidad que lo registra.
type SourceDocument struct {
	SourceType      string
	SourceID        string
	SourceNumber    string
	TransactionType entity.GSTTransactionType
	Date            time.Time
	Entity          entity.PartySnapshot
	Counterparty    entity.PartySnapshot
	IsInterState    bool
	TaxableAmount   decimal.Decimal
	CGST            decimal.Decimal
	SGST            decimal.Decimal
	IGST            decimal.Decimal
}

// Recorder escribe asientos dentro de la transacción del documento que los origina.
type Recorder struct {
	loc *time.Location
	now func() time.Time
}

// NewRecorder loc es la zona en la que se determina el período tributario.
func NewRecorder(loc *time.Location) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{loc: loc, now: time.Now}
}

// RecordEntry deriva un asiento del documento. Es idempotente: si ya existe un asiento
// original para (documento, entidad, tipo de transacción) lo devuelve sin duplicarlo.
func (r *Recorder) RecordEntry(ctx context.Context, repos repository.Repos, doc SourceDocument) (*entity.GSTLedgerEntry, error) {
	if doc.SourceID == "" || doc.Entity.ID == "" {
		return nil, domain.Validation("source", "documento y entidad son obligatorios")
	}
	existing, err := repos.Ledger.ListBySource(ctx, doc.SourceType, doc.SourceID)
	if err != nil {
		return nil, fmt.Errorf("gst: asientos de %s: %w", doc.SourceNumber, err)
	}
	for _, e := range existing {
		if e.EntityID == doc.Entity.ID && e.TransactionType == doc.TransactionType && e.OriginalEntryID == "" {
			return e, nil
		}
	}

	e := r.buildEntry(doc)
	if err := repos.Ledger.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("gst: crear asiento de %s: %w", doc.SourceNumber, err)
	}
	return e, nil
}

func (r *Recorder) buildEntry(doc SourceDocument) *entity.GSTLedgerEntry {
	now := r.now()
	e := &entity.GSTLedgerEntry{
		TaxPeriod:         gst.TaxPeriod(doc.Date.In(r.loc)),
		EntityType:        doc.Entity.Type,
		EntityID:          doc.Entity.ID,
		GSTIN:             doc.Entity.GSTIN,
		StateCode:         gst.StateOf(doc.Entity),
		TransactionType:   doc.TransactionType,
		Direction:         gst.DirectionOf(doc.TransactionType),
		SourceType:        doc.SourceType,
		SourceID:          doc.SourceID,
		SourceNumber:      doc.SourceNumber,
		TransactionDate:   doc.Date,
		CounterpartyGSTIN: doc.Counterparty.GSTIN,
		IsInterState:      doc.IsInterState,
		TaxableAmount:     doc.TaxableAmount,
		OutputCGST:        decimal.Zero,
		OutputSGST:        decimal.Zero,
		OutputIGST:        decimal.Zero,
		InputCGST:         decimal.Zero,
		InputSGST:         decimal.Zero,
		InputIGST:         decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if e.Direction == entity.GSTInput {
		e.InputCGST, e.InputSGST, e.InputIGST = doc.CGST, doc.SGST, doc.IGST
		// Solo un receptor registrado (con GSTIN) puede tomar crédito tributario.
		e.ITCEligible = doc.Entity.GSTIN != ""
	} else {
		e.OutputCGST, e.OutputSGST, e.OutputIGST = doc.CGST, doc.SGST, doc.IGST
	}
	return e
}

// InvoiceDocuments los dos efectos de una factura interna: impuesto generado para el emisor
// y crédito tributario para el receptor.
func InvoiceDocuments(inv *entity.Invoice) []SourceDocument {
	out, in := entity.GSTSale, entity.GSTPurchase
	if inv.InvoiceType == entity.InvoiceTypeTransfer {
		out, in = entity.GSTTransferOut, entity.GSTTransferIn
	}
	mk := func(t entity.GSTTransactionType, self, other entity.PartySnapshot) SourceDocument {
		return SourceDocument{
			SourceType:      SourceInvoice,
			SourceID:        inv.ID,
			SourceNumber:    inv.InvoiceNumber,
			TransactionType: t,
			Date:            inv.InvoiceDate,
			Entity:          self,
			Counterparty:    other,
			IsInterState:    inv.IsInterState,
			TaxableAmount:   inv.TaxableAmount,
			CGST:            inv.CGSTAmount,
			SGST:            inv.SGSTAmount,
			IGST:            inv.IGSTAmount,
		}
	}
	return []SourceDocument{
		mk(out, inv.Issuer, inv.Recipient),
		mk(in, inv.Recipient, inv.Issuer),
	}
}

// RecordInvoice registra los asientos de emisión de la factura.
func (r *Recorder) RecordInvoice(ctx context.Context, repos repository.Repos, inv *entity.Invoice) ([]*entity.GSTLedgerEntry, error) {
	var entries []*entity.GSTLedgerEntry
	for _, doc := range InvoiceDocuments(inv) {
		e, err := r.RecordEntry(ctx, repos, doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReverseSource anula el efecto tributario de un documento con asientos nuevos de signo
// contrario, enlazados al original y fechados en at (el período de la anulación).
// Un asiento ya revertido no se revierte dos veces.
func (r *Recorder) ReverseSource(ctx context.Context, repos repository.Repos, sourceType, sourceID string, at time.Time) ([]*entity.GSTLedgerEntry, error) {
	existing, err := repos.Ledger.ListBySource(ctx, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("gst: asientos de %s: %w", sourceID, err)
	}
	reversed := map[string]bool{}
	for _, e := range existing {
		if e.OriginalEntryID != "" {
			reversed[e.OriginalEntryID] = true
		}
	}

	var out []*entity.GSTLedgerEntry
	for _, orig := range existing {
		if orig.OriginalEntryID != "" || reversed[orig.ID] {
			continue
		}
		rev := *orig
		rev.ID = ""
		rev.OriginalEntryID = orig.ID
		rev.TaxPeriod = gst.TaxPeriod(at.In(r.loc))
		rev.TransactionDate = at
		rev.TaxableAmount = orig.TaxableAmount.Neg()
		rev.OutputCGST, rev.OutputSGST, rev.OutputIGST = orig.OutputCGST.Neg(), orig.OutputSGST.Neg(), orig.OutputIGST.Neg()
		rev.InputCGST, rev.InputSGST, rev.InputIGST = orig.InputCGST.Neg(), orig.InputSGST.Neg(), orig.InputIGST.Neg()
		rev.GSTR1Filed, rev.GSTR3BFiled, rev.IsReconciled, rev.ITCClaimed = false, false, false, false
		rev.CreatedAt, rev.UpdatedAt = r.now(), r.now()
		if err := repos.Ledger.Create(ctx, &rev); err != nil {
			return nil, fmt.Errorf("gst: revertir asiento %s: %w", orig.ID, err)
		}
		out = append(out, &rev)
	}
	return out, nil
}
