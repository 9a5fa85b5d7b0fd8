package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType clase de factura interna.
type InvoiceType string

const (
	InvoiceTypeTransfer     InvoiceType = "transfer"
	InvoiceTypeInternalSale InvoiceType = "internal_sale"
	InvoiceTypeInterBranch  InvoiceType = "inter_branch"
	InvoiceTypeAdjustment   InvoiceType = "adjustment"
)

// Valid indica si el tipo es uno de los soportados.
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeTransfer, InvoiceTypeInternalSale, InvoiceTypeInterBranch, InvoiceTypeAdjustment:
		return true
	}
	return false
}

// InvoiceStatus estado de emisión.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoiceCancelled InvoiceStatus = "cancelled"
	InvoiceRevised   InvoiceStatus = "revised"
)

// PaymentStatus subestado de pago, independiente de la emisión.
type PaymentStatus string

const (
	PaymentNotApplicable PaymentStatus = "not_applicable"
	PaymentPending       PaymentStatus = "pending"
	PaymentPartial       PaymentStatus = "partial"
	PaymentPaid          PaymentStatus = "paid"
)

// DiscountType descuento a nivel factura.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Charges cargos adicionales fuera de la base gravable.
type Charges struct {
	Transport decimal.Decimal
	Handling  decimal.Decimal
	Packaging decimal.Decimal
	Insurance decimal.Decimal
	Other     decimal.Decimal
}

// Total suma de todos los cargos.
func (c Charges) Total() decimal.Decimal {
	return c.Transport.Add(c.Handling).Add(c.Packaging).Add(c.Insurance).Add(c.Other)
}

// Invoice factura interna entre dos ubicaciones (registro legal, nunca se borra).
// Invariante: TotalAmount = round(TaxableAmount + TotalTax + TotalCharges) y
// RoundOff = TotalAmount - (TaxableAmount + TotalTax + TotalCharges).
type Invoice struct {
	ID            string
	InvoiceNumber string // {PREFIX}-{FY}-{WH|ST}-{000001}
	FinancialYear string
	InvoiceType   InvoiceType
	Issuer        PartySnapshot
	Recipient     PartySnapshot
	InvoiceDate   time.Time
	DueDate       *time.Time
	IsInterState  bool

	Subtotal          decimal.Decimal // Σ cantidad × precio
	LineDiscountTotal decimal.Decimal
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	DiscountAmount    decimal.Decimal // descuento a nivel factura ya calculado
	TaxableAmount     decimal.Decimal
	CGSTAmount        decimal.Decimal
	SGSTAmount        decimal.Decimal
	IGSTAmount        decimal.Decimal
	TotalTax          decimal.Decimal
	Charges           Charges
	TotalCharges      decimal.Decimal
	RoundOff          decimal.Decimal
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal

	Status           InvoiceStatus
	PaymentStatus    PaymentStatus
	PaymentMethod    string
	PaymentReference string
	PaidAt           *time.Time

	ReferenceType     string // "stock_transfer" cuando nace de un traslado
	ReferenceID       string
	OriginalInvoiceID string // factura reemplazada (revisiones)
	Notes             string
	PDFPath           string

	CreatedBy          string
	IssuedBy           string
	IssuedAt           *time.Time
	CancelledBy        string
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []InvoiceLineItem
}

// RemainingAmount saldo pendiente de pago (nunca negativo).
func (i *Invoice) RemainingAmount() decimal.Decimal {
	r := i.TotalAmount.Sub(i.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
