package gst

import (
	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// LineInput datos de entrada de una línea.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal // 0–100
	TaxRate         decimal.Decimal
}

// LineAmounts montos calculados de una línea.
type LineAmounts struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	Tax            Breakdown
	LineTotal      decimal.Decimal
}

// CalculateLine valida la línea y deriva base gravable, descuento e impuesto.
func CalculateLine(in LineInput, interState bool) (LineAmounts, error) {
	if !in.Quantity.IsPositive() {
		return LineAmounts{}, domain.Validation("quantity", "debe ser mayor a cero")
	}
	if in.UnitPrice.IsNegative() {
		return LineAmounts{}, domain.Validation("unit_price", "no puede ser negativo")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return LineAmounts{}, domain.Validation("discount_percent", "debe estar entre 0 y 100")
	}
	if err := ValidateTaxRate(in.TaxRate); err != nil {
		return LineAmounts{}, err
	}

	subtotal := Round2(in.Quantity.Mul(in.UnitPrice))
	discount := PercentOf(subtotal, in.DiscountPercent)
	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		return LineAmounts{}, domain.Validation("taxable_amount", "la base gravable no puede ser negativa")
	}
	tax := CalculateGST(taxable, in.TaxRate, interState)
	return LineAmounts{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		Tax:            tax,
		LineTotal:      taxable.Add(tax.TotalTax),
	}, nil
}

// ApplyTo copia los montos calculados en la línea de factura.
func (a LineAmounts) ApplyTo(item *entity.InvoiceLineItem) {
	item.Subtotal = a.Subtotal
	item.DiscountAmount = a.DiscountAmount
	item.TaxableAmount = a.TaxableAmount
	item.CGSTRate = a.Tax.CGSTRate
	item.SGSTRate = a.Tax.SGSTRate
	item.IGSTRate = a.Tax.IGSTRate
	item.CGSTAmount = a.Tax.CGSTAmount
	item.SGSTAmount = a.Tax.SGSTAmount
	item.IGSTAmount = a.Tax.IGSTAmount
	item.TotalTaxAmount = a.Tax.TotalTax
	item.LineTotal = a.LineTotal
}

// InvoiceDiscount descuento a nivel factura.
type InvoiceDiscount struct {
	Type  entity.DiscountType
	Value decimal.Decimal
}

// Totals totales de factura.
type Totals struct {
	Subtotal          decimal.Decimal
	LineDiscountTotal decimal.Decimal
	DiscountAmount    decimal.Decimal
	TaxableAmount     decimal.Decimal
	CGSTAmount        decimal.Decimal
	SGSTAmount        decimal.Decimal
	IGSTAmount        decimal.Decimal
	TotalTax          decimal.Decimal
	TotalCharges      decimal.Decimal
	RoundOff          decimal.Decimal
	TotalAmount       decimal.Decimal
}

// AggregateInvoice consolida las líneas.
//
// El descuento de factura se aplica después de sumar y reduce la base gravable de la factura,
// pero el impuesto de cada línea se mantiene calculado sobre la base de la línea: el total de
// impuesto es la suma de los impuestos por línea.
func AggregateInvoice(lines []LineAmounts, discount InvoiceDiscount, charges entity.Charges) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.Validation("items", "la factura requiere al menos una línea")
	}
	for _, c := range []struct {
		field  string
		amount decimal.Decimal
	}{
		{"transport_charges", charges.Transport},
		{"handling_charges", charges.Handling},
		{"packaging_charges", charges.Packaging},
		{"insurance_charges", charges.Insurance},
		{"other_charges", charges.Other},
	} {
		if c.amount.IsNegative() {
			return Totals{}, domain.Validation(c.field, "no puede ser negativo")
		}
	}

	t := Totals{
		Subtotal:          decimal.Zero,
		LineDiscountTotal: decimal.Zero,
		CGSTAmount:        decimal.Zero,
		SGSTAmount:        decimal.Zero,
		IGSTAmount:        decimal.Zero,
	}
	lineTaxable := decimal.Zero
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.LineDiscountTotal = t.LineDiscountTotal.Add(l.DiscountAmount)
		lineTaxable = lineTaxable.Add(l.TaxableAmount)
		t.CGSTAmount = t.CGSTAmount.Add(l.Tax.CGSTAmount)
		t.SGSTAmount = t.SGSTAmount.Add(l.Tax.SGSTAmount)
		t.IGSTAmount = t.IGSTAmount.Add(l.Tax.IGSTAmount)
	}

	amount, err := discountAmount(discount, lineTaxable)
	if err != nil {
		return Totals{}, err
	}
	t.DiscountAmount = amount
	t.TaxableAmount = lineTaxable.Sub(amount)
	t.TotalTax = t.CGSTAmount.Add(t.SGSTAmount).Add(t.IGSTAmount)
	t.TotalCharges = charges.Total()
	t.TotalAmount, t.RoundOff = RoundTotal(t.TaxableAmount.Add(t.TotalTax).Add(t.TotalCharges))
	return t, nil
}

func discountAmount(d InvoiceDiscount, base decimal.Decimal) (decimal.Decimal, error) {
	switch d.Type {
	case "", entity.DiscountNone:
		return decimal.Zero, nil
	case entity.DiscountPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return decimal.Zero, domain.Validation("discount_value", "el porcentaje debe estar entre 0 y 100")
		}
		return PercentOf(base, d.Value), nil
	case entity.DiscountFixed:
		if d.Value.IsNegative() {
			return decimal.Zero, domain.Validation("discount_value", "no puede ser negativo")
		}
		v := Round2(d.Value)
		if v.GreaterThan(base) {
			return decimal.Zero, domain.Validation("discount_value", "el descuento supera la base gravable "+base.StringFixed(2))
		}
		return v, nil
	default:
		return decimal.Zero, domain.Validation("discount_type", "tipo de descuento desconocido: "+string(d.Type))
	}
}

// RoundTotal redondea al rupee entero y devuelve el ajuste (total − sin redondear).
func RoundTotal(unrounded decimal.Decimal) (total, roundOff decimal.Decimal) {
	unrounded = Round2(unrounded)
	total = unrounded.Round(0)
	return total, total.Sub(unrounded)
}

// ApplyTo copia los totales en la cabecera de la factura.
func (t Totals) ApplyTo(inv *entity.Invoice) {
	inv.Subtotal = t.Subtotal
	inv.LineDiscountTotal = t.LineDiscountTotal
	inv.DiscountAmount = t.DiscountAmount
	inv.TaxableAmount = t.TaxableAmount
	inv.CGSTAmount = t.CGSTAmount
	inv.SGSTAmount = t.SGSTAmount
	inv.IGSTAmount = t.IGSTAmount
	inv.TotalTax = t.TotalTax
	inv.TotalCharges = t.TotalCharges
	inv.RoundOff = t.RoundOff
	inv.TotalAmount = t.TotalAmount
}
