package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType dirección del traslado.
type TransferType string

const (
	TransferWarehouseToStore     TransferType = "warehouse_to_store"
	TransferStoreToWarehouse     TransferType = "store_to_warehouse"
	TransferStoreToStore         TransferType = "store_to_store"
	TransferWarehouseToWarehouse TransferType = "warehouse_to_warehouse"
)

// TransferTypeFor deriva el tipo a partir de origen y destino.
func TransferTypeFor(source, destination LocationType) TransferType {
	return TransferType(string(source) + "_to_" + string(destination))
}

// TransferStatus estado del traslado.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferReceived  TransferStatus = "received"
	TransferCancelled TransferStatus = "cancelled"
	TransferRejected  TransferStatus = "rejected"
)

// PricingType cómo se valoriza el traslado.
type PricingType string

const (
	PricingCost        PricingType = "cost"          // solo costo, sin impuesto
	PricingCostPlusGST PricingType = "cost_plus_gst" // costo + GST calculado por línea
)

// TrackingInfo datos de despacho.
type TrackingInfo struct {
	TrackingNumber       string
	CarrierName          string
	VehicleNumber        string
	EWayBillNumber       string
	ExpectedDeliveryDate *time.Time
}

// StockTransfer movimiento de productos entre dos ubicaciones.
type StockTransfer struct {
	ID              string
	TransferNumber  string // {PREFIX}-{FY}-{0001}
	FinancialYear   string
	TransferType    TransferType
	Source          PartySnapshot
	Destination     PartySnapshot
	Status          TransferStatus
	Reason          string
	Notes           string
	PricingType     PricingType
	GenerateInvoice bool
	IsInterState    bool

	Subtotal          decimal.Decimal
	CGSTAmount        decimal.Decimal
	SGSTAmount        decimal.Decimal
	IGSTAmount        decimal.Decimal
	TotalTax          decimal.Decimal
	TotalValue        decimal.Decimal // mercancía + impuesto
	TransportCharges  decimal.Decimal
	HandlingCharges   decimal.Decimal
	InsuranceCharges  decimal.Decimal
	OtherCharges      decimal.Decimal
	TotalTransferCost decimal.Decimal
	EWayBillRequired  bool

	Tracking       TrackingInfo
	InvoiceID      string
	HasDiscrepancy bool

	RequestedBy        string
	ApprovedBy         string
	ApprovedAt         *time.Time
	ShippedBy          string
	ShippedAt          *time.Time
	ReceivedBy         string
	ReceivedAt         *time.Time
	CancelledBy        string
	CancelledAt        *time.Time
	CancellationReason string
	RejectedBy         string
	RejectedAt         *time.Time
	RejectionReason    string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []TransferLineItem
}

// TransferLineItem línea de un traslado con cantidades por etapa.
// Se espera ReceivedQuantity <= ShippedQuantity + ExcessQuantity; las diferencias se registran, no se rechazan.
type TransferLineItem struct {
	ID                string
	TransferID        string
	LineNumber        int
	ProductID         string
	ProductName       string
	SKU               string
	HSNCode           string
	Category          string
	Unit              string
	RequestedQuantity decimal.Decimal
	ApprovedQuantity  decimal.Decimal
	ShippedQuantity   decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	DamagedQuantity   decimal.Decimal
	ShortageQuantity  decimal.Decimal
	ExcessQuantity    decimal.Decimal
	UnitCost          decimal.Decimal
	TaxRate           decimal.Decimal
	TaxableAmount     decimal.Decimal
	CGSTAmount        decimal.Decimal
	SGSTAmount        decimal.Decimal
	IGSTAmount        decimal.Decimal
	TotalTaxAmount    decimal.Decimal
	LineTotal         decimal.Decimal
	HasDiscrepancy    bool
	DiscrepancyNotes  string
}
