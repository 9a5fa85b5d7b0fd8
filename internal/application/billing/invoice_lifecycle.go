package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/gstledger"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/lifecycle"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

func (uc *InvoiceUseCase) lockInvoice(ctx context.Context, repos repository.Repos, id string) (*entity.Invoice, error) {
	inv, err := repos.Invoices.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("billing: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("factura", id)
	}
	return inv, nil
}

// IssueInTx emite la factura y registra sus asientos GST en la misma transacción.
func (uc *InvoiceUseCase) IssueInTx(ctx context.Context, repos repository.Repos, inv *entity.Invoice, userID string) error {
	if err := lifecycle.IssueInvoice(inv, userID, uc.now()); err != nil {
		return err
	}
	if err := repos.Invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("billing: actualizar factura %s: %w", inv.InvoiceNumber, err)
	}
	if _, err := uc.Ledger.RecordInvoice(ctx, repos, inv); err != nil {
		return err
	}
	return nil
}

// AfterIssue genera y guarda el PDF y publica el evento. Se llama después del commit;
// si el PDF falla queda sin ruta y se regenera al descargarlo.
func (uc *InvoiceUseCase) AfterIssue(ctx context.Context, inv *entity.Invoice) {
	if _, err := uc.storePDF(ctx, inv); err != nil {
		uc.Log.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("no se pudo generar el PDF de la factura")
	}
	uc.publish(ctx, ports.EventInvoiceIssued, inv.ID, dto.NewInvoiceResponse(inv, false))
}

// IssueInvoice draft → issued.
func (uc *InvoiceUseCase) IssueInvoice(ctx context.Context, id, userID string) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if inv, err = uc.lockInvoice(ctx, repos, id); err != nil {
			return err
		}
		return uc.IssueInTx(ctx, repos, inv, userID)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("invoice_number", inv.InvoiceNumber).Str("issued_by", userID).Msg("factura emitida")
	uc.AfterIssue(ctx, inv)
	return inv, nil
}

// Estados de una clave de idempotencia de pago. La reserva "pending" vive poco: si el proceso
// cae antes del commit, la clave expira y el cliente puede reintentar.
const (
	idemPending    = "pending"
	idemDone       = "done"
	idemPendingTTL = time.Minute
)

// RecordPayment registra un pago. Con idempotencyKey, repetir la misma solicitud no vuelve a
// sumar el pago: devuelve la factura tal como quedó. Una repetición mientras el primer intento
// sigue en curso recibe un conflicto de concurrencia.
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, id, userID string, p lifecycle.Payment, idempotencyKey string) (inv *entity.Invoice, err error) {
	if idempotencyKey == "" || uc.Idempotency == nil {
		return uc.recordPayment(ctx, id, p)
	}

	key := "idem:payment:" + id + ":" + idempotencyKey
	claimed, err := uc.Idempotency.SetNX(ctx, key, idemPending, idemPendingTTL)
	if err != nil {
		return nil, fmt.Errorf("billing: clave de idempotencia: %w", err)
	}
	if !claimed {
		state, ok, err := uc.Idempotency.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("billing: clave de idempotencia: %w", err)
		}
		if !ok || state != idemDone {
			return nil, domain.ConcurrencyConflict("el pago con clave " + idempotencyKey + " está en curso, reintente")
		}
		uc.Log.Info().Str("invoice_id", id).Str("idempotency_key", idempotencyKey).Msg("pago repetido ignorado")
		return uc.GetInvoice(ctx, id)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Sin commit (rechazo, error o pánico) la clave se libera para reintentar.
		if delErr := uc.Idempotency.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			uc.Log.Warn().Err(delErr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
		}
	}()

	inv, err = uc.recordPayment(ctx, id, p)
	if err != nil {
		return nil, err
	}
	committed = true
	if err := uc.Idempotency.Set(context.WithoutCancel(ctx), key, idemDone, uc.cfg.IdempotencyTTL); err != nil {
		uc.Log.Warn().Err(err).Str("key", key).Msg("no se pudo marcar la clave de idempotencia como completada")
	}
	return inv, nil
}

func (uc *InvoiceUseCase) recordPayment(ctx context.Context, id string, p lifecycle.Payment) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if inv, err = uc.lockInvoice(ctx, repos, id); err != nil {
			return err
		}
		if err := lifecycle.ApplyPayment(inv, p, uc.now()); err != nil {
			return err
		}
		return repos.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("invoice_number", inv.InvoiceNumber).Str("amount", p.Amount.StringFixed(2)).
		Str("payment_status", string(inv.PaymentStatus)).Msg("pago registrado")
	if inv.PaymentStatus == entity.PaymentPaid {
		uc.publish(ctx, ports.EventInvoicePaid, inv.ID, dto.NewInvoiceResponse(inv, false))
	}
	return inv, nil
}

// CancelInvoice anula la factura. Si estaba emitida, sus asientos GST se revierten en la misma transacción.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, id, userID, reason string) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if inv, err = uc.lockInvoice(ctx, repos, id); err != nil {
			return err
		}
		return uc.CancelInTx(ctx, repos, inv, userID, reason)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("invoice_number", inv.InvoiceNumber).Str("reason", reason).Msg("factura anulada")
	uc.publish(ctx, ports.EventInvoiceCancelled, inv.ID, dto.NewInvoiceResponse(inv, false))
	return inv, nil
}

// CancelInTx anula una factura ya bloqueada por el llamador.
func (uc *InvoiceUseCase) CancelInTx(ctx context.Context, repos repository.Repos, inv *entity.Invoice, userID, reason string) error {
	wasIssued := inv.Status == entity.InvoiceIssued
	now := uc.now()
	if err := lifecycle.CancelInvoice(inv, userID, reason, now); err != nil {
		return err
	}
	if err := repos.Invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("billing: actualizar factura %s: %w", inv.InvoiceNumber, err)
	}
	if wasIssued {
		if _, err := uc.Ledger.ReverseSource(ctx, repos, gstledger.SourceInvoice, inv.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// UpdateInvoice modifica vencimiento, notas o tipo. Los montos son inmutables.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*entity.Invoice, error) {
	var u lifecycle.InvoiceUpdate
	if in.DueDate != nil {
		d, err := time.ParseInLocation(dto.DateLayout, *in.DueDate, uc.cfg.Location)
		if err != nil {
			return nil, domain.Validation("due_date", "formato esperado "+dto.DateLayout)
		}
		u.DueDate = &d
	}
	u.Notes = in.Notes
	if in.InvoiceType != nil {
		t := entity.InvoiceType(*in.InvoiceType)
		u.InvoiceType = &t
	}

	var inv *entity.Invoice
	err := uc.Tx.Run(ctx, func(repos repository.Repos) error {
		var err error
		if inv, err = uc.lockInvoice(ctx, repos, id); err != nil {
			return err
		}
		if err := lifecycle.ApplyUpdate(inv, u, uc.now()); err != nil {
			return err
		}
		return repos.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ReviseInvoice reemplaza una factura sin pagos por una nueva en borrador con los datos corregidos.
// La original queda en estado revised (sus asientos se revierten si estaba emitida) y la nueva
// la referencia en OriginalInvoiceID. Todo ocurre en una transacción.
func (uc *InvoiceUseCase) ReviseInvoice(ctx context.Context, id, userID string, in dto.CreateInvoiceRequest) (original, replacement *entity.Invoice, err error) {
	draft, err := uc.resolveDraft(ctx, userID, in)
	if err != nil {
		return nil, nil, err
	}
	draft.OriginalInvoiceID = id

	err = numbering.WithRetry(ctx, uc.Log, uc.cfg.MaxRetries, func() error {
		return uc.Tx.Run(ctx, func(repos repository.Repos) error {
			orig, err := uc.lockInvoice(ctx, repos, id)
			if err != nil {
				return err
			}
			wasIssued := orig.Status == entity.InvoiceIssued
			now := uc.now()
			if err := lifecycle.MarkRevised(orig, now); err != nil {
				return err
			}
			if err := repos.Invoices.Update(ctx, orig); err != nil {
				return fmt.Errorf("billing: actualizar factura %s: %w", orig.InvoiceNumber, err)
			}
			if wasIssued {
				if _, err := uc.Ledger.ReverseSource(ctx, repos, gstledger.SourceInvoice, orig.ID, now); err != nil {
					return err
				}
			}
			if draft.ReferenceType == "" {
				draft.ReferenceType, draft.ReferenceID = orig.ReferenceType, orig.ReferenceID
			}
			repl, err := uc.CreateInTx(ctx, repos, draft)
			if err != nil {
				return err
			}
			original, replacement = orig, repl
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	uc.Log.Info().Str("original", original.InvoiceNumber).Str("replacement", replacement.InvoiceNumber).
		Msg("factura revisada")
	return original, replacement, nil
}
