package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"7.5":        "7.50",
		"999":        "999.00",
		"1180":       "1,180.00",
		"100000":     "1,00,000.00",
		"12345678.9": "1,23,45,678.90",
		"-2500.456":  "-2,500.46",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatINR(d(in)), in)
	}
}

func TestAmountInWords(t *testing.T) {
	cases := map[string]string{
		"0":        "Rupees Zero Only",
		"1180":     "Rupees One Thousand One Hundred Eighty Only",
		"1180.50":  "Rupees One Thousand One Hundred Eighty And Fifty Paise Only",
		"250000":   "Rupees Two Lakh Fifty Thousand Only",
		"12345678": "Rupees One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Only",
		"41.07":    "Rupees Forty One And Seven Paise Only",
	}
	for in, want := range cases {
		assert.Equal(t, want, AmountInWords(d(in)), in)
	}
}

func TestRenderInvoice(t *testing.T) {
	date := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		InvoiceNumber: "INV-2025-26-WH-000001",
		InvoiceType:   entity.InvoiceTypeInternalSale,
		Issuer:        entity.PartySnapshot{Name: "Bodega Pune", GSTIN: "27AAACF1234A1Z5", State: "Maharashtra", StateCode: "27"},
		Recipient:     entity.PartySnapshot{Name: "Tienda Andheri", GSTIN: "27AAACF1234A2Z4", State: "Maharashtra", StateCode: "27"},
		InvoiceDate:   date,
		TaxableAmount: d("1000"), CGSTAmount: d("90"), SGSTAmount: d("90"), IGSTAmount: d("0"),
		TotalAmount: d("1180"),
		Items: []entity.InvoiceLineItem{{
			ProductName: "Jabón de tocador", HSNCode: "3401", Unit: "pcs",
			Quantity: d("10"), UnitPrice: d("100"), TaxableAmount: d("1000"),
			CGSTRate: d("9"), CGSTAmount: d("90"), SGSTRate: d("9"), SGSTAmount: d("90"),
			LineTotal: d("1180"),
		}},
	}

	for _, interState := range []bool{false, true} {
		inv.IsInterState = interState
		b, err := NewInvoiceRenderer("FreshVilla").RenderInvoice(context.Background(), inv)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	}
}
