package gst

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// SummarizeHSN agrupa líneas de factura por (código HSN, tasa) sumando cantidades, bases e impuestos.
// El resultado queda ordenado por HSN y luego por tasa.
func SummarizeHSN(items []entity.InvoiceLineItem) []entity.HSNSummaryRow {
	type key struct{ hsn, rate string }
	byKey := make(map[key]*entity.HSNSummaryRow)
	for _, it := range items {
		k := key{hsn: it.HSNCode, rate: it.TaxRate.StringFixed(2)}
		row, ok := byKey[k]
		if !ok {
			row = &entity.HSNSummaryRow{
				HSNCode:       it.HSNCode,
				TaxRate:       it.TaxRate,
				Unit:          it.Unit,
				TotalQuantity: decimal.Zero,
				TaxableAmount: decimal.Zero,
				CGSTAmount:    decimal.Zero,
				SGSTAmount:    decimal.Zero,
				IGSTAmount:    decimal.Zero,
				TotalTax:      decimal.Zero,
				TotalValue:    decimal.Zero,
			}
			byKey[k] = row
		}
		if row.Unit != it.Unit {
			row.Unit = "mixed"
		}
		row.TotalQuantity = row.TotalQuantity.Add(it.Quantity)
		row.TaxableAmount = row.TaxableAmount.Add(it.TaxableAmount)
		row.CGSTAmount = row.CGSTAmount.Add(it.CGSTAmount)
		row.SGSTAmount = row.SGSTAmount.Add(it.SGSTAmount)
		row.IGSTAmount = row.IGSTAmount.Add(it.IGSTAmount)
		row.TotalTax = row.TotalTax.Add(it.TotalTaxAmount)
		row.TotalValue = row.TotalValue.Add(it.LineTotal)
	}

	rows := make([]entity.HSNSummaryRow, 0, len(byKey))
	for _, r := range byKey {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].HSNCode != rows[j].HSNCode {
			return rows[i].HSNCode < rows[j].HSNCode
		}
		return rows[i].TaxRate.LessThan(rows[j].TaxRate)
	})
	return rows
}
