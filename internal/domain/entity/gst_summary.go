package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FilingStatus estado de una declaración en el resumen.
type FilingStatus string

const (
	FilingPending FilingStatus = "pending"
	FilingFiled   FilingStatus = "filed"
)

// GSTSummary consolidado (entidad × período). Único por (EntityType, EntityID, TaxPeriod).
type GSTSummary struct {
	ID                  string
	EntityType          LocationType
	EntityID            string
	GSTIN               string
	TaxPeriod           string
	TotalOutputCGST     decimal.Decimal
	TotalOutputSGST     decimal.Decimal
	TotalOutputIGST     decimal.Decimal
	TotalOutputGST      decimal.Decimal
	TotalInputCGST      decimal.Decimal
	TotalInputSGST      decimal.Decimal
	TotalInputIGST      decimal.Decimal
	TotalInputGST       decimal.Decimal
	ITCAvailable        decimal.Decimal
	ITCUtilized         decimal.Decimal
	ITCBalance          decimal.Decimal
	NetLiability        decimal.Decimal
	TotalTaxableOutward decimal.Decimal
	TotalTaxableInward  decimal.Decimal
	EntryCount          int
	HSNSummary          []HSNSummaryRow
	GSTR1Status         FilingStatus
	GSTR3BStatus        FilingStatus
	GeneratedAt         time.Time
	UpdatedAt           time.Time
}

// HSNSummaryRow agrupación por (código HSN, tasa) para el reporte HSN.
type HSNSummaryRow struct {
	HSNCode       string          `json:"hsn_code"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalValue    decimal.Decimal `json:"total_value"`
}
