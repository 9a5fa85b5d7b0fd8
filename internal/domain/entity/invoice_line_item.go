package entity

import "github.com/shopspring/decimal"

// InvoiceLineItem línea de producto de una factura, con datos del producto congelados.
// Invariantes: TaxableAmount = Quantity×UnitPrice − DiscountAmount; LineTotal = TaxableAmount + TotalTaxAmount.
type InvoiceLineItem struct {
	ID              string
	InvoiceID       string
	LineNumber      int
	ProductID       string
	ProductName     string
	SKU             string
	HSNCode         string
	Category        string
	Unit            string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxableAmount   decimal.Decimal
	TaxRate         decimal.Decimal
	CGSTRate        decimal.Decimal
	CGSTAmount      decimal.Decimal
	SGSTRate        decimal.Decimal
	SGSTAmount      decimal.Decimal
	IGSTRate        decimal.Decimal
	IGSTAmount      decimal.Decimal
	TotalTaxAmount  decimal.Decimal
	LineTotal       decimal.Decimal
}
