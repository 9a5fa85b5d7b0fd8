// Package gst contiene el cálculo tributario puro: división CGST/SGST/IGST, líneas de factura,
// totales con redondeo, resumen HSN y consolidado de libro GST.
package gst

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/gstin"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// AllowedRates tasas GST vigentes (porcentaje).
var AllowedRates = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// Breakdown resultado del cálculo de impuesto sobre una base gravable.
type Breakdown struct {
	CGSTRate    decimal.Decimal
	SGSTRate    decimal.Decimal
	IGSTRate    decimal.Decimal
	CGSTAmount  decimal.Decimal
	SGSTAmount  decimal.Decimal
	IGSTAmount  decimal.Decimal
	TotalTax    decimal.Decimal
	TotalAmount decimal.Decimal
}

// CalculateGST divide el impuesto según el tipo de operación.
// Interestatal: todo IGST. Intraestatal: CGST = SGST = tasa/2.
// Los montos se redondean a 2 decimales (mitad hacia arriba, no bancario).
// La tasa se valida antes, en la capa de líneas (ValidateTaxRate).
func CalculateGST(taxable, rate decimal.Decimal, interState bool) Breakdown {
	b := Breakdown{
		CGSTRate:   decimal.Zero,
		SGSTRate:   decimal.Zero,
		IGSTRate:   decimal.Zero,
		CGSTAmount: decimal.Zero,
		SGSTAmount: decimal.Zero,
		IGSTAmount: decimal.Zero,
	}
	if interState {
		b.IGSTRate = rate
		b.IGSTAmount = PercentOf(taxable, rate)
	} else {
		half := rate.Div(two)
		b.CGSTRate = half
		b.SGSTRate = half
		b.CGSTAmount = PercentOf(taxable, half)
		b.SGSTAmount = PercentOf(taxable, half)
	}
	b.TotalTax = b.CGSTAmount.Add(b.SGSTAmount).Add(b.IGSTAmount)
	b.TotalAmount = Round2(taxable).Add(b.TotalTax)
	return b
}

// PercentOf calcula amount × rate / 100 redondeado a 2 decimales.
func PercentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(rate).Div(hundred))
}

// Round2 redondeo monetario estándar a 2 decimales.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsAllowedRate indica si la tasa pertenece al conjunto legal {0,5,12,18,28}.
func IsAllowedRate(rate decimal.Decimal) bool {
	for _, r := range AllowedRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// ValidateTaxRate rechaza tasas fuera del conjunto legal.
func ValidateTaxRate(rate decimal.Decimal) error {
	if !IsAllowedRate(rate) {
		return domain.Validation("tax_rate", "tasa GST "+rate.String()+"% no permitida (0, 5, 12, 18, 28)")
	}
	return nil
}

// StateOf devuelve el estado de una parte: prefijo del GSTIN, el código explícito o el código
// que corresponde al nombre del estado. Un nombre desconocido se devuelve en minúsculas.
func StateOf(p entity.PartySnapshot) string {
	if code, ok := stateCode(p); ok {
		return code
	}
	return strings.ToLower(strings.TrimSpace(p.State))
}

func stateCode(p entity.PartySnapshot) (string, bool) {
	if code, ok := gstin.StateCode(p.GSTIN); ok {
		return code, true
	}
	if code := strings.TrimSpace(p.StateCode); code != "" {
		return code, true
	}
	return gstin.CodeForState(p.State)
}

// IsInterState compara el estado de ambas partes. Se comparan códigos cuando ambas los tienen
// y nombres solo cuando a ninguna se le pudo resolver código. Sin información comparable se
// asume operación intraestatal.
func IsInterState(a, b entity.PartySnapshot) bool {
	ca, okA := stateCode(a)
	cb, okB := stateCode(b)
	switch {
	case okA && okB:
		return ca != cb
	case okA || okB:
		return false
	}
	na, nb := StateOf(a), StateOf(b)
	if na == "" || nb == "" {
		return false
	}
	return na != nb
}
