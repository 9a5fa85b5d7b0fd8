package gst

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
)

// TaxPeriod período tributario MMYYYY de una fecha.
func TaxPeriod(t time.Time) string {
	return fmt.Sprintf("%02d%04d", int(t.Month()), t.Year())
}

// PeriodBounds devuelve [inicio, fin) del período MMYYYY en la zona de loc.
func PeriodBounds(period string, loc *time.Location) (time.Time, time.Time, error) {
	if len(period) != 6 {
		return time.Time{}, time.Time{}, domain.Validation("tax_period", "formato esperado MMYYYY")
	}
	month, errM := strconv.Atoi(period[:2])
	year, errY := strconv.Atoi(period[2:])
	if errM != nil || errY != nil || month < 1 || month > 12 || year < 2017 {
		return time.Time{}, time.Time{}, domain.Validation("tax_period", "período inválido "+period)
	}
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0), nil
}
