package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, entity.GSTOutput, DirectionOf(entity.GSTSale))
	assert.Equal(t, entity.GSTOutput, DirectionOf(entity.GSTTransferOut))
	assert.Equal(t, entity.GSTOutput, DirectionOf(entity.GSTCreditNote))
	assert.Equal(t, entity.GSTOutput, DirectionOf(entity.GSTDebitNote))
	assert.Equal(t, entity.GSTInput, DirectionOf(entity.GSTPurchase))
	assert.Equal(t, entity.GSTInput, DirectionOf(entity.GSTTransferIn))
}

func TestAccumulate_Idempotent(t *testing.T) {
	entries := []*entity.GSTLedgerEntry{
		{Direction: entity.GSTOutput, TaxableAmount: d("1000"), OutputCGST: d("90"), OutputSGST: d("90")},
		{Direction: entity.GSTOutput, TaxableAmount: d("500"), OutputIGST: d("90")},
		{Direction: entity.GSTInput, TaxableAmount: d("800"), InputIGST: d("144"), ITCEligible: true},
		{Direction: entity.GSTInput, TaxableAmount: d("100"), InputCGST: d("9"), InputSGST: d("9")},
	}

	first := Accumulate(entries)
	second := Accumulate(entries)
	assert.Equal(t, first.TotalOutput().String(), second.TotalOutput().String())
	assert.Equal(t, first.TotalInput().String(), second.TotalInput().String())
	assert.Equal(t, first.ITCAvailable.String(), second.ITCAvailable.String())
	assert.Equal(t, first.Entries, second.Entries)

	var sum entity.GSTSummary
	first.ApplyTo(&sum)
	assert.Equal(t, "270", sum.TotalOutputGST.String())
	assert.Equal(t, "162", sum.TotalInputGST.String())
	assert.Equal(t, "144", sum.ITCAvailable.String(), "solo el crédito elegible")
	assert.Equal(t, "144", sum.ITCUtilized.String())
	assert.Equal(t, "0", sum.ITCBalance.String())
	assert.Equal(t, "126", sum.NetLiability.String())
	assert.Equal(t, "1500", sum.TotalTaxableOutward.String())
	assert.Equal(t, "900", sum.TotalTaxableInward.String())
	assert.Equal(t, 4, sum.EntryCount)
}

func TestAccumulate_CreditExceedsOutput(t *testing.T) {
	entries := []*entity.GSTLedgerEntry{
		{Direction: entity.GSTOutput, OutputIGST: d("50")},
		{Direction: entity.GSTInput, InputIGST: d("80"), ITCEligible: true},
	}
	var sum entity.GSTSummary
	Accumulate(entries).ApplyTo(&sum)
	assert.Equal(t, "50", sum.ITCUtilized.String())
	assert.Equal(t, "30", sum.ITCBalance.String())
	assert.True(t, sum.NetLiability.IsZero())
}
