package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// ChargesDTO cargos adicionales de factura o traslado.
type ChargesDTO struct {
	Transport decimal.Decimal `json:"transport"`
	Handling  decimal.Decimal `json:"handling"`
	Packaging decimal.Decimal `json:"packaging"`
	Insurance decimal.Decimal `json:"insurance"`
	Other     decimal.Decimal `json:"other"`
}

// ToEntity convierte a entity.Charges.
func (c ChargesDTO) ToEntity() entity.Charges {
	return entity.Charges{Transport: c.Transport, Handling: c.Handling, Packaging: c.Packaging, Insurance: c.Insurance, Other: c.Other}
}

// CreateInvoiceRequest body para POST /api/invoices.
// Emisor y receptor son ubicaciones; sus datos fiscales se copian en la factura.
type CreateInvoiceRequest struct {
	InvoiceType   string               `json:"invoice_type" validate:"required,oneof=transfer internal_sale inter_branch adjustment"`
	IssuerID      string               `json:"issuer_id" validate:"required"`
	RecipientID   string               `json:"recipient_id" validate:"required"`
	InvoiceDate   string               `json:"invoice_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string               `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DiscountType  string               `json:"discount_type,omitempty" validate:"omitempty,oneof=none percentage fixed"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
	Charges       ChargesDTO           `json:"charges"`
	Notes         string               `json:"notes,omitempty" validate:"max=1000"`
	ReferenceType string               `json:"reference_type,omitempty"`
	ReferenceID   string               `json:"reference_id,omitempty"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// InvoiceItemRequest línea de factura. Sin precio o tasa se usan los del producto.
type InvoiceItemRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
}

// UpdateInvoiceRequest body para PATCH /api/invoices/:id. Solo campos editables.
type UpdateInvoiceRequest struct {
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	InvoiceType *string `json:"invoice_type,omitempty" validate:"omitempty,oneof=transfer internal_sale inter_branch adjustment"`
}

// RecordPaymentRequest body para POST /api/invoices/:id/payments.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=cash bank_transfer upi cheque adjustment"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
}

// CancelRequest body para anular o rechazar un documento.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ListInvoicesQuery filtros de GET /api/invoices.
type ListInvoicesQuery struct {
	PageRequest
	IssuerID      string `query:"issuer_id"`
	RecipientID   string `query:"recipient_id"`
	Status        string `query:"status" validate:"omitempty,oneof=draft issued cancelled revised"`
	FinancialYear string `query:"financial_year"`
}

// PartyResponse datos fiscales copiados en el documento.
type PartyResponse struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	GSTIN     string `json:"gstin,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	StateCode string `json:"state_code,omitempty"`
	Pincode   string `json:"pincode,omitempty"`
}

// NewPartyResponse mapea un snapshot.
func NewPartyResponse(p entity.PartySnapshot) PartyResponse {
	return PartyResponse{
		Type: string(p.Type), ID: p.ID, Name: p.Name, GSTIN: p.GSTIN, Address: p.Address,
		City: p.City, State: p.State, StateCode: p.StateCode, Pincode: p.Pincode,
	}
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID                 string                `json:"id"`
	InvoiceNumber      string                `json:"invoice_number"`
	FinancialYear      string                `json:"financial_year"`
	InvoiceType        string                `json:"invoice_type"`
	Issuer             PartyResponse         `json:"issuer"`
	Recipient          PartyResponse         `json:"recipient"`
	InvoiceDate        string                `json:"invoice_date"`
	DueDate            string                `json:"due_date,omitempty"`
	IsInterState       bool                  `json:"is_inter_state"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	LineDiscountTotal  decimal.Decimal       `json:"line_discount_total"`
	DiscountType       string                `json:"discount_type"`
	DiscountValue      decimal.Decimal       `json:"discount_value"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	TaxableAmount      decimal.Decimal       `json:"taxable_amount"`
	CGSTAmount         decimal.Decimal       `json:"cgst_amount"`
	SGSTAmount         decimal.Decimal       `json:"sgst_amount"`
	IGSTAmount         decimal.Decimal       `json:"igst_amount"`
	TotalTax           decimal.Decimal       `json:"total_tax"`
	Charges            ChargesDTO            `json:"charges"`
	TotalCharges       decimal.Decimal       `json:"total_charges"`
	RoundOff           decimal.Decimal       `json:"round_off"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	PaidAmount         decimal.Decimal       `json:"paid_amount"`
	RemainingAmount    decimal.Decimal       `json:"remaining_amount"`
	Status             string                `json:"status"`
	PaymentStatus      string                `json:"payment_status"`
	PaymentMethod      string                `json:"payment_method,omitempty"`
	PaymentReference   string                `json:"payment_reference,omitempty"`
	PaidAt             *time.Time            `json:"paid_at,omitempty"`
	ReferenceType      string                `json:"reference_type,omitempty"`
	ReferenceID        string                `json:"reference_id,omitempty"`
	OriginalInvoiceID  string                `json:"original_invoice_id,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	HasPDF             bool                  `json:"has_pdf"`
	IssuedBy           string                `json:"issued_by,omitempty"`
	IssuedAt           *time.Time            `json:"issued_at,omitempty"`
	CancelledBy        string                `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	CreatedBy          string                `json:"created_by"`
	CreatedAt          time.Time             `json:"created_at"`
	Items              []InvoiceLineResponse `json:"items,omitempty"`
}

// InvoiceLineResponse línea de factura en la respuesta.
type InvoiceLineResponse struct {
	LineNumber      int             `json:"line_number"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	SKU             string          `json:"sku"`
	HSNCode         string          `json:"hsn_code"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	TotalTaxAmount  decimal.Decimal `json:"total_tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// InvoiceListResponse página de facturas (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// NewInvoiceResponse mapea la entidad. Con withItems=false omite las líneas (listados).
func NewInvoiceResponse(inv *entity.Invoice, withItems bool) InvoiceResponse {
	r := InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		FinancialYear:      inv.FinancialYear,
		InvoiceType:        string(inv.InvoiceType),
		Issuer:             NewPartyResponse(inv.Issuer),
		Recipient:          NewPartyResponse(inv.Recipient),
		InvoiceDate:        inv.InvoiceDate.Format(DateLayout),
		IsInterState:       inv.IsInterState,
		Subtotal:           inv.Subtotal,
		LineDiscountTotal:  inv.LineDiscountTotal,
		DiscountType:       string(inv.DiscountType),
		DiscountValue:      inv.DiscountValue,
		DiscountAmount:     inv.DiscountAmount,
		TaxableAmount:      inv.TaxableAmount,
		CGSTAmount:         inv.CGSTAmount,
		SGSTAmount:         inv.SGSTAmount,
		IGSTAmount:         inv.IGSTAmount,
		TotalTax:           inv.TotalTax,
		Charges:            ChargesDTO{Transport: inv.Charges.Transport, Handling: inv.Charges.Handling, Packaging: inv.Charges.Packaging, Insurance: inv.Charges.Insurance, Other: inv.Charges.Other},
		TotalCharges:       inv.TotalCharges,
		RoundOff:           inv.RoundOff,
		TotalAmount:        inv.TotalAmount,
		PaidAmount:         inv.PaidAmount,
		RemainingAmount:    inv.RemainingAmount(),
		Status:             string(inv.Status),
		PaymentStatus:      string(inv.PaymentStatus),
		PaymentMethod:      inv.PaymentMethod,
		PaymentReference:   inv.PaymentReference,
		PaidAt:             inv.PaidAt,
		ReferenceType:      inv.ReferenceType,
		ReferenceID:        inv.ReferenceID,
		OriginalInvoiceID:  inv.OriginalInvoiceID,
		Notes:              inv.Notes,
		HasPDF:             inv.PDFPath != "",
		IssuedBy:           inv.IssuedBy,
		IssuedAt:           inv.IssuedAt,
		CancelledBy:        inv.CancelledBy,
		CancelledAt:        inv.CancelledAt,
		CancellationReason: inv.CancellationReason,
		CreatedBy:          inv.CreatedBy,
		CreatedAt:          inv.CreatedAt,
		Items:              []InvoiceLineResponse{},
	}
	if inv.DueDate != nil {
		r.DueDate = inv.DueDate.Format(DateLayout)
	}
	if !withItems {
		r.Items = nil
		return r
	}
	for _, it := range inv.Items {
		r.Items = append(r.Items, InvoiceLineResponse{
			LineNumber: it.LineNumber, ProductID: it.ProductID, ProductName: it.ProductName, SKU: it.SKU,
			HSNCode: it.HSNCode, Unit: it.Unit, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
			Subtotal: it.Subtotal, DiscountPercent: it.DiscountPercent, DiscountAmount: it.DiscountAmount,
			TaxableAmount: it.TaxableAmount, TaxRate: it.TaxRate, CGSTAmount: it.CGSTAmount,
			SGSTAmount: it.SGSTAmount, IGSTAmount: it.IGSTAmount, TotalTaxAmount: it.TotalTaxAmount,
			LineTotal: it.LineTotal,
		})
	}
	return r
}
