// Package numbering define el año fiscal y el formato de los números de documento.
package numbering

import (
	"fmt"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// Anchos de secuencia por tipo de documento.
const (
	InvoiceSequenceWidth  = 6
	TransferSequenceWidth = 4
)

// FinancialYear año fiscal indio (1 de abril – 31 de marzo): "2025-26".
func FinancialYear(t time.Time) string {
	y := t.Year()
	if t.Month() < time.April {
		y--
	}
	return fmt.Sprintf("%d-%02d", y, (y+1)%100)
}

// IssuerTypeCode código del tipo de emisor en el número de factura.
func IssuerTypeCode(t entity.LocationType) string {
	switch t {
	case entity.LocationWarehouse:
		return "WH"
	case entity.LocationStore:
		return "ST"
	default:
		return "XX"
	}
}

// InvoiceScope prefijo común de todas las facturas de un ámbito: INV-2025-26-WH-.
func InvoiceScope(prefix, fy string, issuer entity.LocationType) string {
	return fmt.Sprintf("%s-%s-%s-", prefix, fy, IssuerTypeCode(issuer))
}

// TransferScope prefijo común de los traslados de un año fiscal: STR-2025-26-.
func TransferScope(prefix, fy string) string {
	return fmt.Sprintf("%s-%s-", prefix, fy)
}

// Format concatena el ámbito con la secuencia rellenada con ceros.
func Format(scope string, seq int64, width int) string {
	return fmt.Sprintf("%s%0*d", scope, width, seq)
}
