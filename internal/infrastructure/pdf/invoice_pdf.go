// Package pdf genera la representación impresa de la factura tributaria (Tax Invoice) GST.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + GSTIN      │  N° Factura + Fecha + Tipo    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR / RECEPTOR: dirección, GSTIN, estado (código)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | HSN | Cant | Precio | Base | GST | Total│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Base / CGST / SGST / IGST / Cargos / Redondeo      │
//	│  MONTO EN LETRAS                                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con datos de la factura + leyenda                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

var _ ports.InvoicePDFRenderer = (*InvoiceRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// InvoiceRenderer implementa ports.InvoicePDFRenderer usando Maroto v2.
type InvoiceRenderer struct {
	company string // razón social impresa como autor del documento
}

// NewInvoiceRenderer construye el generador.
func NewInvoiceRenderer(company string) *InvoiceRenderer {
	return &InvoiceRenderer{company: company}
}

// RenderInvoice genera el PDF y devuelve sus bytes.
func (g *InvoiceRenderer) RenderInvoice(_ context.Context, inv *entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tax Invoice "+inv.InvoiceNumber, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(inv.IsInterState))
	m.AddRows(tableDetailRows(inv)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(inv)...)
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Monto en letras: "+AmountInWords(inv.TotalAmount), props.Text{
			Style: fontstyle.Italic, Size: 8, Top: 2,
		}),
	)))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor + GSTIN (izq) y N° factura + fecha (der).
func headerRow(inv *entity.Invoice) core.Row {
	title := "TAX INVOICE"
	if inv.InvoiceType == entity.InvoiceTypeTransfer {
		title = "TAX INVOICE / TRASLADO DE STOCK"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.Issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("GSTIN: "+nonEmpty(inv.Issuer.GSTIN, "no registrado"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.InvoiceDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func partyBlock(label string, p entity.PartySnapshot) core.Col {
	return col.New(6).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
		text.New(fmt.Sprintf("%s, %s %s", nonEmpty(p.Address, "—"), p.City, p.Pincode), props.Text{
			Size: 8, Top: 11, Color: colorGray,
		}),
		text.New(fmt.Sprintf("GSTIN: %s   |   Estado: %s (%s)", nonEmpty(p.GSTIN, "—"), nonEmpty(p.State, "—"), p.StateCode), props.Text{
			Size: 8, Top: 15, Color: colorGray,
		}),
	)
}

// partiesRow: emisor y receptor lado a lado; el lugar de suministro es el estado del receptor.
func partiesRow(inv *entity.Invoice) core.Row {
	return row.New(22).Add(
		partyBlock("EMISOR", inv.Issuer),
		partyBlock("RECEPTOR / LUGAR DE SUMINISTRO", inv.Recipient),
	)
}

// tableHeaderRow: cabecera de la tabla; una columna IGST o dos columnas CGST/SGST.
func tableHeaderRow(interState bool) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	r := row.New(8).Add(
		h("Producto", 3, align.Left),
		h("HSN", 1, align.Center),
		h("Cant.", 1, align.Center),
		h("Precio", 1, align.Right),
		h("Base", 2, align.Right),
	)
	if interState {
		r.Add(h("IGST", 2, align.Right))
	} else {
		r.Add(h("CGST", 1, align.Right), h("SGST", 1, align.Right))
	}
	r.Add(h("Total", 2, align.Right))
	r.WithStyle(&props.Cell{BackgroundColor: colorPrimary})
	return r
}

// tableDetailRows: una fila por línea con la tasa junto al monto del impuesto.
func tableDetailRows(inv *entity.Invoice) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	out := make([]core.Row, 0, len(inv.Items))
	for _, it := range inv.Items {
		r := row.New(7).Add(
			cell(it.ProductName, 3, align.Left),
			cell(it.HSNCode, 1, align.Center),
			cell(it.Quantity.String()+" "+it.Unit, 1, align.Center),
			cell(FormatINR(it.UnitPrice), 1, align.Right),
			cell(FormatINR(it.TaxableAmount), 2, align.Right),
		)
		if inv.IsInterState {
			r.Add(cell(fmt.Sprintf("%s (%s%%)", FormatINR(it.IGSTAmount), it.IGSTRate.String()), 2, align.Right))
		} else {
			r.Add(
				cell(fmt.Sprintf("%s (%s%%)", FormatINR(it.CGSTAmount), it.CGSTRate.String()), 1, align.Right),
				cell(fmt.Sprintf("%s (%s%%)", FormatINR(it.SGSTAmount), it.SGSTRate.String()), 1, align.Right),
			)
		}
		r.Add(cell(FormatINR(it.LineTotal), 2, align.Right))
		out = append(out, r)
	}
	return out
}

// totalsRows: bloque de totales alineado a la derecha; omite los renglones en cero.
func totalsRows(inv *entity.Invoice) []core.Row {
	type entry struct {
		label, value string
		grand        bool
	}
	entries := []entry{{label: "Base gravable:", value: FormatINR(inv.TaxableAmount)}}
	if inv.DiscountAmount.IsPositive() {
		entries = append(entries, entry{label: "Descuento:", value: "-" + FormatINR(inv.DiscountAmount)})
	}
	if inv.IsInterState {
		entries = append(entries, entry{label: "IGST:", value: FormatINR(inv.IGSTAmount)})
	} else {
		entries = append(entries,
			entry{label: "CGST:", value: FormatINR(inv.CGSTAmount)},
			entry{label: "SGST:", value: FormatINR(inv.SGSTAmount)},
		)
	}
	if inv.TotalCharges.IsPositive() {
		entries = append(entries, entry{label: "Cargos:", value: FormatINR(inv.TotalCharges)})
	}
	if !inv.RoundOff.IsZero() {
		entries = append(entries, entry{label: "Redondeo:", value: inv.RoundOff.StringFixed(2)})
	}
	entries = append(entries, entry{label: "TOTAL:", value: "₹ " + FormatINR(inv.TotalAmount), grand: true})

	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		style := props.Text{Size: 9, Align: align.Right, Right: 1}
		if e.grand {
			style = props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}
		}
		labelStyle := style
		labelStyle.Style = fontstyle.Bold
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(e.label, labelStyle)),
			col.New(3).Add(text.New(e.value, style)),
		))
	}
	return rows
}

// footerRows: QR con los datos clave de la factura + leyenda.
func footerRows(inv *entity.Invoice) []core.Row {
	qr := fmt.Sprintf("SellerGstin:%s|BuyerGstin:%s|DocNo:%s|DocDt:%s|TotInvVal:%s|ItemCnt:%d",
		inv.Issuer.GSTIN, inv.Recipient.GSTIN, inv.InvoiceNumber,
		inv.InvoiceDate.Format("02/01/2006"), inv.TotalAmount.StringFixed(2), len(inv.Items))

	legend := "Factura interna entre ubicaciones de la misma empresa."
	if inv.ReferenceType != "" {
		legend += fmt.Sprintf(" Referencia: %s %s.", inv.ReferenceType, inv.ReferenceID)
	}
	return []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New(legend, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Documento generado electrónicamente; no requiere firma.", props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 18, Left: 3, Color: colorPrimary,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
