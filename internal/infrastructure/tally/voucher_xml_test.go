package tally

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intraInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-2526-WH-000001",
		InvoiceType:   entity.InvoiceTypeInternalSale,
		InvoiceDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		Recipient:     entity.PartySnapshot{Name: "Andheri Store", GSTIN: "27AAACF1234A1Z5", State: "Maharashtra"},
		TaxableAmount: d("1000.40"),
		CGSTAmount:    d("90.04"),
		SGSTAmount:    d("90.04"),
		TotalCharges:  d("50"),
		RoundOff:      d("-0.48"),
		TotalAmount:   d("1230"),
	}
}

func interTransferInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:            "inv-2",
		InvoiceNumber: "TRF-2526-WH-000001",
		InvoiceType:   entity.InvoiceTypeTransfer,
		InvoiceDate:   time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		IsInterState:  true,
		Recipient:     entity.PartySnapshot{Name: "Koramangala Store", State: "Karnataka"},
		TaxableAmount: d("2000"),
		IGSTAmount:    d("100"),
		TotalAmount:   d("2100"),
	}
}

func export(t *testing.T, e *Exporter, invoices ...*entity.Invoice) *etree.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, e.ExportVouchers(&buf, invoices))
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	return doc
}

// ledgerAmounts devuelve ledger → importe de cada ALLLEDGERENTRIES.LIST del comprobante.
func ledgerAmounts(t *testing.T, v *etree.Element) map[string]decimal.Decimal {
	t.Helper()
	out := map[string]decimal.Decimal{}
	for _, le := range v.SelectElements("ALLLEDGERENTRIES.LIST") {
		amt, err := decimal.NewFromString(le.SelectElement("AMOUNT").Text())
		require.NoError(t, err)
		out[le.SelectElement("LEDGERNAME").Text()] = amt
	}
	return out
}

func TestExportVouchers_Envelope(t *testing.T) {
	doc := export(t, NewExporter("FreshVilla Retail", Ledgers{}), intraInvoice(), interTransferInvoice())

	assert.Equal(t, "Import Data", doc.FindElement("/ENVELOPE/HEADER/TALLYREQUEST").Text())
	assert.Equal(t, "FreshVilla Retail", doc.FindElement("//SVCURRENTCOMPANY").Text())
	vouchers := doc.FindElements("//TALLYMESSAGE/VOUCHER")
	require.Len(t, vouchers, 2)

	v := vouchers[0]
	assert.Equal(t, "Create", v.SelectAttrValue("ACTION", ""))
	assert.Equal(t, "20250715", v.SelectElement("DATE").Text())
	assert.Equal(t, "INV-2526-WH-000001", v.SelectElement("VOUCHERNUMBER").Text())
	assert.Equal(t, "27AAACF1234A1Z5", v.SelectElement("PARTYGSTIN").Text())
	assert.Nil(t, vouchers[1].SelectElement("PARTYGSTIN"))
}

func TestExportVouchers_Balanced(t *testing.T) {
	for _, inv := range []*entity.Invoice{intraInvoice(), interTransferInvoice()} {
		doc := export(t, NewExporter("", Ledgers{}), inv)
		v := doc.FindElement("//VOUCHER")
		require.NotNil(t, v)

		sum := decimal.Zero
		for _, amt := range ledgerAmounts(t, v) {
			sum = sum.Add(amt)
		}
		assert.True(t, sum.IsZero(), "%s descuadrado: %s", inv.InvoiceNumber, sum)
	}
}

func TestExportVouchers_Ledgers(t *testing.T) {
	def := DefaultLedgers()

	intra := ledgerAmounts(t, export(t, NewExporter("", Ledgers{}), intraInvoice()).FindElement("//VOUCHER"))
	assert.True(t, intra["Andheri Store"].Equal(d("-1230")))
	assert.True(t, intra[def.Sales].Equal(d("1000.40")))
	assert.True(t, intra[def.CGST].Equal(d("90.04")))
	assert.True(t, intra[def.SGST].Equal(d("90.04")))
	assert.True(t, intra[def.Charges].Equal(d("50")))
	assert.True(t, intra[def.RoundOff].Equal(d("-0.48")))
	assert.NotContains(t, intra, def.IGST)

	custom := Ledgers{Transfer: "Stock Transfer Out", IGST: "IGST Payable"}
	inter := ledgerAmounts(t, export(t, NewExporter("", custom), interTransferInvoice()).FindElement("//VOUCHER"))
	assert.True(t, inter["Stock Transfer Out"].Equal(d("2000")))
	assert.True(t, inter["IGST Payable"].Equal(d("100")))
	assert.NotContains(t, inter, def.CGST)
	assert.NotContains(t, inter, def.RoundOff)
}

func TestExportVouchers_DebitFlags(t *testing.T) {
	v := export(t, NewExporter("", Ledgers{}), intraInvoice()).FindElement("//VOUCHER")
	for _, le := range v.SelectElements("ALLLEDGERENTRIES.LIST") {
		amt := decimal.RequireFromString(le.SelectElement("AMOUNT").Text())
		want := "No"
		if amt.IsNegative() {
			want = "Yes"
		}
		assert.Equal(t, want, le.SelectElement("ISDEEMEDPOSITIVE").Text(), le.SelectElement("LEDGERNAME").Text())
	}
}

func TestExportVouchers_Empty(t *testing.T) {
	doc := export(t, NewExporter("", Ledgers{}))
	assert.NotNil(t, doc.FindElement("/ENVELOPE/BODY/IMPORTDATA/REQUESTDATA"))
	assert.Empty(t, doc.FindElements("//VOUCHER"))
	assert.Nil(t, doc.FindElement("//STATICVARIABLES"))
}
