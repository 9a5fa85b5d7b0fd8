// Package numbering asigna números de documento únicos y consecutivos por ámbito
// (prefijo, año fiscal, tipo de emisor).
package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	docnumber "github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// Authority genera los números dentro de la transacción del documento.
// El contador del ámbito se incrementa de forma atómica en la base; la restricción única
// sobre el número es la segunda barrera: si salta, la transacción entera se reintenta (WithRetry).
type Authority struct {
	invoicePrefix  string
	transferPrefix string
}

// NewAuthority construye la autoridad con los prefijos configurados (INV, STR).
func NewAuthority(invoicePrefix, transferPrefix string) *Authority {
	if invoicePrefix == "" {
		invoicePrefix = "INV"
	}
	if transferPrefix == "" {
		transferPrefix = "STR"
	}
	return &Authority{invoicePrefix: invoicePrefix, transferPrefix: transferPrefix}
}

// NextInvoiceNumber devuelve {PREFIX}-{FY}-{WH|ST}-{000001} y el año fiscal de date.
func (a *Authority) NextInvoiceNumber(ctx context.Context, repos repository.Repos, issuer entity.LocationType, date time.Time) (number, fy string, err error) {
	fy = docnumber.FinancialYear(date)
	scope := docnumber.InvoiceScope(a.invoicePrefix, fy, issuer)
	floor, err := repos.Invoices.CountByNumberPrefix(ctx, scope)
	if err != nil {
		return "", "", fmt.Errorf("numbering: contar facturas de %s: %w", scope, err)
	}
	seq, err := repos.Sequences.Next(ctx, scope, floor)
	if err != nil {
		return "", "", fmt.Errorf("numbering: secuencia %s: %w", scope, err)
	}
	return docnumber.Format(scope, seq, docnumber.InvoiceSequenceWidth), fy, nil
}

// NextTransferNumber devuelve {PREFIX}-{FY}-{0001} y el año fiscal de date.
func (a *Authority) NextTransferNumber(ctx context.Context, repos repository.Repos, date time.Time) (number, fy string, err error) {
	fy = docnumber.FinancialYear(date)
	scope := docnumber.TransferScope(a.transferPrefix, fy)
	floor, err := repos.Transfers.CountByNumberPrefix(ctx, scope)
	if err != nil {
		return "", "", fmt.Errorf("numbering: contar traslados de %s: %w", scope, err)
	}
	seq, err := repos.Sequences.Next(ctx, scope, floor)
	if err != nil {
		return "", "", fmt.Errorf("numbering: secuencia %s: %w", scope, err)
	}
	return docnumber.Format(scope, seq, docnumber.TransferSequenceWidth), fy, nil
}

// WithRetry ejecuta fn (normalmente una transacción completa) y la repite mientras falle
// por número duplicado, hasta maxAttempts veces. Agotados los intentos devuelve ConcurrencyConflict.
func WithRetry(ctx context.Context, log *logger.Logger, maxAttempts int, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", maxAttempts).
			Msg("colisión de numeración, reintentando")
	}
	return fmt.Errorf("%w (último error: %v)",
		domain.ConcurrencyConflict(fmt.Sprintf("no se pudo asignar un número único tras %d intentos", maxAttempts)), err)
}
