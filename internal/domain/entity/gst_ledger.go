package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTTransactionType origen tributario de un asiento.
type GSTTransactionType string

const (
	GSTSale        GSTTransactionType = "sale"
	GSTPurchase    GSTTransactionType = "purchase"
	GSTTransferOut GSTTransactionType = "transfer_out"
	GSTTransferIn  GSTTransactionType = "transfer_in"
	GSTCreditNote  GSTTransactionType = "credit_note"
	GSTDebitNote   GSTTransactionType = "debit_note"
)

// GSTDirection impuesto generado (output) o crédito tributario (input).
type GSTDirection string

const (
	GSTOutput GSTDirection = "output"
	GSTInput  GSTDirection = "input"
)

// GSTReturnType declaraciones periódicas.
type GSTReturnType string

const (
	ReturnGSTR1  GSTReturnType = "GSTR1"
	ReturnGSTR3B GSTReturnType = "GSTR3B"
)

// GSTLedgerEntry efecto tributario de una transacción para una entidad en un período.
// Los montos son inmutables: una corrección se registra como asiento nuevo enlazado (OriginalEntryID).
type GSTLedgerEntry struct {
	ID                string
	TaxPeriod         string // MMYYYY
	EntityType        LocationType
	EntityID          string
	GSTIN             string
	StateCode         string
	TransactionType   GSTTransactionType
	Direction         GSTDirection
	SourceType        string // invoice, credit_note...
	SourceID          string
	SourceNumber      string
	TransactionDate   time.Time
	CounterpartyGSTIN string
	IsInterState      bool
	TaxableAmount     decimal.Decimal
	OutputCGST        decimal.Decimal
	OutputSGST        decimal.Decimal
	OutputIGST        decimal.Decimal
	InputCGST         decimal.Decimal
	InputSGST         decimal.Decimal
	InputIGST         decimal.Decimal
	ITCEligible       bool
	ITCClaimed        bool
	GSTR1Filed        bool
	GSTR3BFiled       bool
	IsReconciled      bool
	OriginalEntryID   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalOutput suma del impuesto generado.
func (e *GSTLedgerEntry) TotalOutput() decimal.Decimal {
	return e.OutputCGST.Add(e.OutputSGST).Add(e.OutputIGST)
}

// TotalInput suma del crédito tributario.
func (e *GSTLedgerEntry) TotalInput() decimal.Decimal {
	return e.InputCGST.Add(e.InputSGST).Add(e.InputIGST)
}
