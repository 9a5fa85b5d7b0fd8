package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// TransferChargesDTO cargos del traslado (sin empaque).
type TransferChargesDTO struct {
	Transport decimal.Decimal `json:"transport"`
	Handling  decimal.Decimal `json:"handling"`
	Insurance decimal.Decimal `json:"insurance"`
	Other     decimal.Decimal `json:"other"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceID        string                `json:"source_id" validate:"required"`
	DestinationID   string                `json:"destination_id" validate:"required,nefield=SourceID"`
	Reason          string                `json:"reason,omitempty" validate:"max=500"`
	Notes           string                `json:"notes,omitempty" validate:"max=1000"`
	PricingType     string                `json:"pricing_type,omitempty" validate:"omitempty,oneof=cost cost_plus_gst"`
	GenerateInvoice bool                  `json:"generate_invoice"`
	Charges         TransferChargesDTO    `json:"charges"`
	Items           []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferItemRequest línea solicitada. Sin costo se usa el costo promedio del origen.
type TransferItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ApproveTransferRequest cantidades aprobadas por producto. Las omitidas se aprueban completas.
type ApproveTransferRequest struct {
	Items []ApprovedItemRequest `json:"items,omitempty" validate:"dive"`
}

// ApprovedItemRequest cantidad aprobada de una línea.
type ApprovedItemRequest struct {
	ProductID        string          `json:"product_id" validate:"required"`
	ApprovedQuantity decimal.Decimal `json:"approved_quantity"`
}

// ShipTransferRequest datos de despacho.
type ShipTransferRequest struct {
	TrackingNumber       string `json:"tracking_number,omitempty" validate:"max=100"`
	CarrierName          string `json:"carrier_name,omitempty" validate:"max=200"`
	VehicleNumber        string `json:"vehicle_number,omitempty" validate:"max=20"`
	EWayBillNumber       string `json:"eway_bill_number,omitempty" validate:"omitempty,len=12,numeric"`
	ExpectedDeliveryDate string `json:"expected_delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReceiveTransferRequest cantidades recibidas. Las líneas omitidas se reciben completas y sin averías.
type ReceiveTransferRequest struct {
	Items []ReceivedItemRequest `json:"items,omitempty" validate:"dive"`
}

// ReceivedItemRequest recepción de una línea.
type ReceivedItemRequest struct {
	ProductID        string          `json:"product_id" validate:"required"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	DamagedQuantity  decimal.Decimal `json:"damaged_quantity"`
}

// ListTransfersQuery filtros de GET /api/transfers.
type ListTransfersQuery struct {
	PageRequest
	LocationID    string `query:"location_id"`
	Status        string `query:"status" validate:"omitempty,oneof=pending approved in_transit received cancelled rejected"`
	FinancialYear string `query:"financial_year"`
}

// TransferLineResponse línea del traslado.
type TransferLineResponse struct {
	LineNumber        int             `json:"line_number"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	SKU               string          `json:"sku"`
	HSNCode           string          `json:"hsn_code"`
	Unit              string          `json:"unit"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	ApprovedQuantity  decimal.Decimal `json:"approved_quantity"`
	ShippedQuantity   decimal.Decimal `json:"shipped_quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	DamagedQuantity   decimal.Decimal `json:"damaged_quantity"`
	ShortageQuantity  decimal.Decimal `json:"shortage_quantity"`
	ExcessQuantity    decimal.Decimal `json:"excess_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxableAmount     decimal.Decimal `json:"taxable_amount"`
	TotalTaxAmount    decimal.Decimal `json:"total_tax_amount"`
	LineTotal         decimal.Decimal `json:"line_total"`
	HasDiscrepancy    bool            `json:"has_discrepancy"`
	DiscrepancyNotes  string          `json:"discrepancy_notes,omitempty"`
}

// TransferResponse traslado con detalle.
type TransferResponse struct {
	ID                 string                 `json:"id"`
	TransferNumber     string                 `json:"transfer_number"`
	FinancialYear      string                 `json:"financial_year"`
	TransferType       string                 `json:"transfer_type"`
	Source             PartyResponse          `json:"source"`
	Destination        PartyResponse          `json:"destination"`
	Status             string                 `json:"status"`
	Reason             string                 `json:"reason,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	PricingType        string                 `json:"pricing_type"`
	GenerateInvoice    bool                   `json:"generate_invoice"`
	IsInterState       bool                   `json:"is_inter_state"`
	Subtotal           decimal.Decimal        `json:"subtotal"`
	CGSTAmount         decimal.Decimal        `json:"cgst_amount"`
	SGSTAmount         decimal.Decimal        `json:"sgst_amount"`
	IGSTAmount         decimal.Decimal        `json:"igst_amount"`
	TotalTax           decimal.Decimal        `json:"total_tax"`
	TotalValue         decimal.Decimal        `json:"total_value"`
	Charges            TransferChargesDTO     `json:"charges"`
	TotalTransferCost  decimal.Decimal        `json:"total_transfer_cost"`
	EWayBillRequired   bool                   `json:"eway_bill_required"`
	TrackingNumber     string                 `json:"tracking_number,omitempty"`
	CarrierName        string                 `json:"carrier_name,omitempty"`
	VehicleNumber      string                 `json:"vehicle_number,omitempty"`
	EWayBillNumber     string                 `json:"eway_bill_number,omitempty"`
	InvoiceID          string                 `json:"invoice_id,omitempty"`
	HasDiscrepancy     bool                   `json:"has_discrepancy"`
	RequestedBy        string                 `json:"requested_by"`
	ApprovedBy         string                 `json:"approved_by,omitempty"`
	ShippedBy          string                 `json:"shipped_by,omitempty"`
	ReceivedBy         string                 `json:"received_by,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	RejectionReason    string                 `json:"rejection_reason,omitempty"`
	ShippedAt          *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt         *time.Time             `json:"received_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Items              []TransferLineResponse `json:"items,omitempty"`
}

// TransferListResponse página de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewTransferResponse mapea la entidad. Con withItems=false omite las líneas.
func NewTransferResponse(t *entity.StockTransfer, withItems bool) TransferResponse {
	r := TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FinancialYear:   t.FinancialYear,
		TransferType:    string(t.TransferType),
		Source:          NewPartyResponse(t.Source),
		Destination:     NewPartyResponse(t.Destination),
		Status:          string(t.Status),
		Reason:          t.Reason,
		Notes:           t.Notes,
		PricingType:     string(t.PricingType),
		GenerateInvoice: t.GenerateInvoice,
		IsInterState:    t.IsInterState,
		Subtotal:        t.Subtotal,
		CGSTAmount:      t.CGSTAmount,
		SGSTAmount:      t.SGSTAmount,
		IGSTAmount:      t.IGSTAmount,
		TotalTax:        t.TotalTax,
		TotalValue:      t.TotalValue,
		Charges: TransferChargesDTO{
			Transport: t.TransportCharges,
			Handling:  t.HandlingCharges,
			Insurance: t.InsuranceCharges,
			Other:     t.OtherCharges,
		},
		TotalTransferCost:  t.TotalTransferCost,
		EWayBillRequired:   t.EWayBillRequired,
		TrackingNumber:     t.Tracking.TrackingNumber,
		CarrierName:        t.Tracking.CarrierName,
		VehicleNumber:      t.Tracking.VehicleNumber,
		EWayBillNumber:     t.Tracking.EWayBillNumber,
		InvoiceID:          t.InvoiceID,
		HasDiscrepancy:     t.HasDiscrepancy,
		RequestedBy:        t.RequestedBy,
		ApprovedBy:         t.ApprovedBy,
		ShippedBy:          t.ShippedBy,
		ReceivedBy:         t.ReceivedBy,
		CancellationReason: t.CancellationReason,
		RejectionReason:    t.RejectionReason,
		ShippedAt:          t.ShippedAt,
		ReceivedAt:         t.ReceivedAt,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if !withItems {
		return r
	}
	r.Items = make([]TransferLineResponse, 0, len(t.Items))
	for _, it := range t.Items {
		r.Items = append(r.Items, TransferLineResponse{
			LineNumber:        it.LineNumber,
			ProductID:         it.ProductID,
			ProductName:       it.ProductName,
			SKU:               it.SKU,
			HSNCode:           it.HSNCode,
			Unit:              it.Unit,
			RequestedQuantity: it.RequestedQuantity,
			ApprovedQuantity:  it.ApprovedQuantity,
			ShippedQuantity:   it.ShippedQuantity,
			ReceivedQuantity:  it.ReceivedQuantity,
			DamagedQuantity:   it.DamagedQuantity,
			ShortageQuantity:  it.ShortageQuantity,
			ExcessQuantity:    it.ExcessQuantity,
			UnitCost:          it.UnitCost,
			TaxRate:           it.TaxRate,
			TaxableAmount:     it.TaxableAmount,
			TotalTaxAmount:    it.TotalTaxAmount,
			LineTotal:         it.LineTotal,
			HasDiscrepancy:    it.HasDiscrepancy,
			DiscrepancyNotes:  it.DiscrepancyNotes,
		})
	}
	return r
}
