// Package tally exporta facturas como comprobantes XML importables en Tally.
package tally

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// Ledgers nombres de las cuentas contables en la empresa Tally.
type Ledgers struct {
	Sales    string
	Transfer string
	CGST     string
	SGST     string
	IGST     string
	Charges  string
	RoundOff string
}

// DefaultLedgers nombres usados si no se configuran otros.
func DefaultLedgers() Ledgers {
	return Ledgers{
		Sales:    "Sales - Inter Branch",
		Transfer: "Branch Transfer Outward",
		CGST:     "Output CGST",
		SGST:     "Output SGST",
		IGST:     "Output IGST",
		Charges:  "Freight & Handling",
		RoundOff: "Round Off",
	}
}

// Exporter genera el sobre de importación de Tally.
type Exporter struct {
	company string
	ledgers Ledgers
}

// NewExporter company es el nombre de la empresa en Tally (SVCURRENTCOMPANY).
func NewExporter(company string, ledgers Ledgers) *Exporter {
	def := DefaultLedgers()
	if ledgers.Sales == "" {
		ledgers.Sales = def.Sales
	}
	if ledgers.Transfer == "" {
		ledgers.Transfer = def.Transfer
	}
	if ledgers.CGST == "" {
		ledgers.CGST = def.CGST
	}
	if ledgers.SGST == "" {
		ledgers.SGST = def.SGST
	}
	if ledgers.IGST == "" {
		ledgers.IGST = def.IGST
	}
	if ledgers.Charges == "" {
		ledgers.Charges = def.Charges
	}
	if ledgers.RoundOff == "" {
		ledgers.RoundOff = def.RoundOff
	}
	return &Exporter{company: company, ledgers: ledgers}
}

// ExportVouchers implementa ports.VoucherExporter. Cada factura es un VOUCHER de venta cuadrado:
// el receptor va al débito por el total y base, impuestos, cargos y redondeo al crédito.
func (e *Exporter) ExportVouchers(w io.Writer, invoices []*entity.Invoice) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("ENVELOPE")
	env.CreateElement("HEADER").CreateElement("TALLYREQUEST").SetText("Import Data")
	imp := env.CreateElement("BODY").CreateElement("IMPORTDATA")
	desc := imp.CreateElement("REQUESTDESC")
	desc.CreateElement("REPORTNAME").SetText("Vouchers")
	if e.company != "" {
		desc.CreateElement("STATICVARIABLES").CreateElement("SVCURRENTCOMPANY").SetText(e.company)
	}
	data := imp.CreateElement("REQUESTDATA")

	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		msg := data.CreateElement("TALLYMESSAGE")
		msg.CreateAttr("xmlns:UDF", "TallyUDF")
		e.voucher(msg, inv)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("tally: escribir XML: %w", err)
	}
	return nil
}

func (e *Exporter) voucher(parent *etree.Element, inv *entity.Invoice) {
	v := parent.CreateElement("VOUCHER")
	v.CreateAttr("VCHTYPE", "Sales")
	v.CreateAttr("ACTION", "Create")
	v.CreateAttr("REMOTEID", inv.ID)

	v.CreateElement("DATE").SetText(inv.InvoiceDate.Format("20060102"))
	v.CreateElement("VOUCHERTYPENAME").SetText("Sales")
	v.CreateElement("VOUCHERNUMBER").SetText(inv.InvoiceNumber)
	v.CreateElement("REFERENCE").SetText(inv.InvoiceNumber)
	v.CreateElement("PARTYLEDGERNAME").SetText(inv.Recipient.Name)
	if inv.Recipient.GSTIN != "" {
		v.CreateElement("PARTYGSTIN").SetText(inv.Recipient.GSTIN)
	}
	v.CreateElement("PLACEOFSUPPLY").SetText(inv.Recipient.State)
	v.CreateElement("STATENAME").SetText(inv.Recipient.State)
	if inv.Notes != "" {
		v.CreateElement("NARRATION").SetText(inv.Notes)
	} else {
		v.CreateElement("NARRATION").SetText(fmt.Sprintf("%s %s", inv.InvoiceType, inv.InvoiceNumber))
	}

	// Débito: importes negativos con ISDEEMEDPOSITIVE=Yes (convención de Tally).
	ledgerEntry(v, inv.Recipient.Name, inv.TotalAmount.Neg(), true)

	sales := e.ledgers.Sales
	if inv.InvoiceType == entity.InvoiceTypeTransfer {
		sales = e.ledgers.Transfer
	}
	ledgerEntry(v, sales, inv.TaxableAmount, false)
	if inv.IsInterState {
		ledgerEntry(v, e.ledgers.IGST, inv.IGSTAmount, false)
	} else {
		ledgerEntry(v, e.ledgers.CGST, inv.CGSTAmount, false)
		ledgerEntry(v, e.ledgers.SGST, inv.SGSTAmount, false)
	}
	if !inv.TotalCharges.IsZero() {
		ledgerEntry(v, e.ledgers.Charges, inv.TotalCharges, false)
	}
	if !inv.RoundOff.IsZero() {
		ledgerEntry(v, e.ledgers.RoundOff, inv.RoundOff, !inv.RoundOff.IsPositive())
	}
}

func ledgerEntry(v *etree.Element, ledger string, amount decimal.Decimal, debit bool) {
	le := v.CreateElement("ALLLEDGERENTRIES.LIST")
	le.CreateElement("LEDGERNAME").SetText(ledger)
	le.CreateElement("ISDEEMEDPOSITIVE").SetText(yesNo(debit))
	le.CreateElement("AMOUNT").SetText(amount.StringFixed(2))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var _ ports.VoucherExporter = (*Exporter)(nil)
