// Package report genera hojas de cálculo del consolidado GST.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

const (
	SheetSummary = "Summary"
	SheetHSN     = "HSN"
	SheetEntries = "Ledger"
)

// ContentType tipo MIME del archivo generado.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	hsnHeadings = []string{
		"HSN", "Rate %", "UQC", "Quantity", "Taxable Value",
		"CGST", "SGST", "IGST", "Total Tax", "Total Value",
	}
	entryHeadings = []string{
		"Date", "Document", "Type", "Direction", "Counterparty GSTIN", "Inter-State",
		"Taxable", "Output CGST", "Output SGST", "Output IGST",
		"Input CGST", "Input SGST", "Input IGST", "Reversal Of", "GSTR-1", "GSTR-3B",
	}
)

// ExcelExporter escribe el consolidado en un libro con tres hojas: totales, HSN y asientos.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

// ExportSummary implementa ports.SummaryExporter.
func (e *ExcelExporter) ExportSummary(w io.Writer, s *entity.GSTSummary, entries []*entity.GSTLedgerEntry) error {
	if s == nil {
		return fmt.Errorf("report: resumen nulo")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("report: hoja resumen: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: estilo: %w", err)
	}

	if err := writeSummary(f, s, bold); err != nil {
		return err
	}
	if err := writeHSN(f, s.HSNSummary, bold); err != nil {
		return err
	}
	if err := writeEntries(f, entries, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: escribir xlsx: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s *entity.GSTSummary, bold int) error {
	rows := [][]any{
		{"Entity", fmt.Sprintf("%s %s", s.EntityType, s.EntityID)},
		{"GSTIN", s.GSTIN},
		{"Tax Period", s.TaxPeriod},
		{"Generated At", s.GeneratedAt.Format("2006-01-02 15:04")},
		{},
		{"", "CGST", "SGST", "IGST", "Total"},
		{"Output Tax", num(s.TotalOutputCGST), num(s.TotalOutputSGST), num(s.TotalOutputIGST), num(s.TotalOutputGST)},
		{"Input Tax", num(s.TotalInputCGST), num(s.TotalInputSGST), num(s.TotalInputIGST), num(s.TotalInputGST)},
		{},
		{"Taxable Outward", num(s.TotalTaxableOutward)},
		{"Taxable Inward", num(s.TotalTaxableInward)},
		{"ITC Available", num(s.ITCAvailable)},
		{"ITC Utilized", num(s.ITCUtilized)},
		{"ITC Balance", num(s.ITCBalance)},
		{"Net Liability", num(s.NetLiability)},
		{"Entries", s.EntryCount},
		{"GSTR-1", string(s.GSTR1Status)},
		{"GSTR-3B", string(s.GSTR3BStatus)},
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return fmt.Errorf("report: fila resumen %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A18", bold); err != nil {
		return fmt.Errorf("report: estilo resumen: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "A", 20)
}

func writeHSN(f *excelize.File, rows []entity.HSNSummaryRow, bold int) error {
	if _, err := f.NewSheet(SheetHSN); err != nil {
		return fmt.Errorf("report: hoja HSN: %w", err)
	}
	if err := header(f, SheetHSN, hsnHeadings, bold); err != nil {
		return err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.HSNCode, r.TaxRate.InexactFloat64(), r.Unit, r.TotalQuantity.InexactFloat64(), num(r.TaxableAmount),
			num(r.CGSTAmount), num(r.SGSTAmount), num(r.IGSTAmount), num(r.TotalTax), num(r.TotalValue),
		}
		if err := f.SetSheetRow(SheetHSN, cell, &values); err != nil {
			return fmt.Errorf("report: fila HSN %s: %w", r.HSNCode, err)
		}
	}
	return nil
}

func writeEntries(f *excelize.File, entries []*entity.GSTLedgerEntry, bold int) error {
	if _, err := f.NewSheet(SheetEntries); err != nil {
		return fmt.Errorf("report: hoja asientos: %w", err)
	}
	if err := header(f, SheetEntries, entryHeadings, bold); err != nil {
		return err
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			e.TransactionDate.Format("2006-01-02"), e.SourceNumber, string(e.TransactionType), string(e.Direction),
			e.CounterpartyGSTIN, yesNo(e.IsInterState), num(e.TaxableAmount),
			num(e.OutputCGST), num(e.OutputSGST), num(e.OutputIGST),
			num(e.InputCGST), num(e.InputSGST), num(e.InputIGST),
			e.OriginalEntryID, yesNo(e.GSTR1Filed), yesNo(e.GSTR3BFiled),
		}
		if err := f.SetSheetRow(SheetEntries, cell, &values); err != nil {
			return fmt.Errorf("report: fila asiento %s: %w", e.ID, err)
		}
	}
	return nil
}

func header(f *excelize.File, sheet string, headings []string, bold int) error {
	row := make([]any, len(headings))
	for i, h := range headings {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("report: encabezado %s: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("report: estilo %s: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// num convierte a float64 para que la hoja trate el valor como número.
func num(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

var _ ports.SummaryExporter = (*ExcelExporter)(nil)
