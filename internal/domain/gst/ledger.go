package gst

import (
	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// DirectionOf clasifica el tipo de transacción en impuesto generado o crédito.
// Las notas crédito se registran como output negativo (reducen el impuesto generado).
func DirectionOf(t entity.GSTTransactionType) entity.GSTDirection {
	switch t {
	case entity.GSTPurchase, entity.GSTTransferIn:
		return entity.GSTInput
	default:
		return entity.GSTOutput
	}
}

// SummaryTotals consolidado numérico de un conjunto de asientos.
type SummaryTotals struct {
	OutputCGST     decimal.Decimal
	OutputSGST     decimal.Decimal
	OutputIGST     decimal.Decimal
	InputCGST      decimal.Decimal
	InputSGST      decimal.Decimal
	InputIGST      decimal.Decimal
	ITCAvailable   decimal.Decimal
	TaxableOutward decimal.Decimal
	TaxableInward  decimal.Decimal
	Entries        int
}

// TotalOutput impuesto generado total.
func (s SummaryTotals) TotalOutput() decimal.Decimal {
	return s.OutputCGST.Add(s.OutputSGST).Add(s.OutputIGST)
}

// TotalInput crédito total (elegible o no).
func (s SummaryTotals) TotalInput() decimal.Decimal {
	return s.InputCGST.Add(s.InputSGST).Add(s.InputIGST)
}

// Accumulate suma los asientos. Es una función pura: recalcular sobre los mismos asientos
// produce siempre los mismos totales.
func Accumulate(entries []*entity.GSTLedgerEntry) SummaryTotals {
	s := SummaryTotals{
		OutputCGST: decimal.Zero, OutputSGST: decimal.Zero, OutputIGST: decimal.Zero,
		InputCGST: decimal.Zero, InputSGST: decimal.Zero, InputIGST: decimal.Zero,
		ITCAvailable: decimal.Zero, TaxableOutward: decimal.Zero, TaxableInward: decimal.Zero,
	}
	for _, e := range entries {
		s.Entries++
		s.OutputCGST = s.OutputCGST.Add(e.OutputCGST)
		s.OutputSGST = s.OutputSGST.Add(e.OutputSGST)
		s.OutputIGST = s.OutputIGST.Add(e.OutputIGST)
		s.InputCGST = s.InputCGST.Add(e.InputCGST)
		s.InputSGST = s.InputSGST.Add(e.InputSGST)
		s.InputIGST = s.InputIGST.Add(e.InputIGST)
		if e.Direction == entity.GSTInput {
			s.TaxableInward = s.TaxableInward.Add(e.TaxableAmount)
			if e.ITCEligible {
				s.ITCAvailable = s.ITCAvailable.Add(e.TotalInput())
			}
		} else {
			s.TaxableOutward = s.TaxableOutward.Add(e.TaxableAmount)
		}
	}
	return s
}

// ApplyTo escribe los totales en el resumen, incluido el uso de crédito tributario:
// el ITC se utiliza hasta cubrir el impuesto generado, el resto queda como saldo y
// la obligación neta nunca es negativa.
func (s SummaryTotals) ApplyTo(sum *entity.GSTSummary) {
	output := s.TotalOutput()
	sum.TotalOutputCGST = s.OutputCGST
	sum.TotalOutputSGST = s.OutputSGST
	sum.TotalOutputIGST = s.OutputIGST
	sum.TotalOutputGST = output
	sum.TotalInputCGST = s.InputCGST
	sum.TotalInputSGST = s.InputSGST
	sum.TotalInputIGST = s.InputIGST
	sum.TotalInputGST = s.TotalInput()
	sum.TotalTaxableOutward = s.TaxableOutward
	sum.TotalTaxableInward = s.TaxableInward
	sum.EntryCount = s.Entries

	utilizable := decimal.Max(output, decimal.Zero)
	sum.ITCAvailable = s.ITCAvailable
	sum.ITCUtilized = decimal.Min(s.ITCAvailable, utilizable)
	sum.ITCBalance = s.ITCAvailable.Sub(sum.ITCUtilized)
	sum.NetLiability = decimal.Max(output.Sub(sum.ITCUtilized), decimal.Zero)
}
