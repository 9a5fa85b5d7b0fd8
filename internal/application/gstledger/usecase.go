package gstledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/gst"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

// Config parámetros del consolidado.
type Config struct {
	Location *time.Location // zona de los períodos tributarios
	LockTTL  time.Duration
}

// UseCase consolida y consulta el libro GST.
type UseCase struct {
	tx       ports.TxRunner
	repos    repository.Repos
	locker   ports.Locker
	events   ports.EventPublisher
	exporter ports.SummaryExporter
	log      *logger.Logger
	cfg      Config
	now      func() time.Time
}

// NewUseCase construye el caso de uso. locker puede ser nil (una sola instancia).
func NewUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	locker ports.Locker,
	events ports.EventPublisher,
	exporter ports.SummaryExporter,
	log *logger.Logger,
	cfg Config,
) *UseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if events == nil {
		events = ports.NopPublisher{}
	}
	return &UseCase{
		tx:       tx,
		repos:    repos,
		locker:   locker,
		events:   events,
		exporter: exporter,
		log:      log.Component("gst"),
		cfg:      cfg,
		now:      time.Now,
	}
}

func validateScope(entityType entity.LocationType, entityID string) error {
	if !entityType.Valid() {
		return domain.Validation("entity_type", "debe ser warehouse o store")
	}
	if entityID == "" {
		return domain.Validation("entity_id", "es obligatorio")
	}
	return nil
}

// SummarizePeriod recalcula el consolidado de (entidad, período) a partir de los asientos y lo
// guarda con semántica upsert: ejecutarlo dos veces deja los mismos totales. Los estados de
// declaración ya registrados se conservan.
func (uc *UseCase) SummarizePeriod(ctx context.Context, entityType entity.LocationType, entityID, period string) (*entity.GSTSummary, error) {
	if err := validateScope(entityType, entityID); err != nil {
		return nil, err
	}
	from, to, err := gst.PeriodBounds(period, uc.cfg.Location)
	if err != nil {
		return nil, err
	}

	if uc.locker != nil {
		release, err := uc.locker.Obtain(ctx, fmt.Sprintf("gst:summary:%s:%s:%s", entityType, entityID, period), uc.cfg.LockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				uc.log.Warn().Err(err).Str("entity_id", entityID).Str("period", period).Msg("no se pudo liberar el candado")
			}
		}()
	}

	var summary *entity.GSTSummary
	err = uc.tx.Run(ctx, func(repos repository.Repos) error {
		entries, err := repos.Ledger.ListByEntityPeriod(ctx, entityType, entityID, period)
		if err != nil {
			return fmt.Errorf("gst: listar asientos: %w", err)
		}
		lines, err := repos.Invoices.ListIssuedLines(ctx, entityType, entityID, from, to)
		if err != nil {
			return fmt.Errorf("gst: líneas emitidas: %w", err)
		}
		existing, err := repos.Summaries.Get(ctx, entityType, entityID, period)
		if err != nil {
			return fmt.Errorf("gst: resumen existente: %w", err)
		}

		now := uc.now()
		summary = &entity.GSTSummary{
			EntityType:   entityType,
			EntityID:     entityID,
			TaxPeriod:    period,
			GSTR1Status:  entity.FilingPending,
			GSTR3BStatus: entity.FilingPending,
			GeneratedAt:  now,
		}
		if existing != nil {
			summary.ID = existing.ID
			summary.GSTIN = existing.GSTIN
			summary.GSTR1Status = existing.GSTR1Status
			summary.GSTR3BStatus = existing.GSTR3BStatus
			summary.GeneratedAt = existing.GeneratedAt
		}
		if loc, err := repos.Locations.GetByID(ctx, entityID); err != nil {
			return fmt.Errorf("gst: ubicación: %w", err)
		} else if loc != nil {
			summary.GSTIN = loc.GSTIN
		}
		if summary.GSTIN == "" && len(entries) > 0 {
			summary.GSTIN = entries[0].GSTIN
		}

		gst.Accumulate(entries).ApplyTo(summary)
		summary.HSNSummary = gst.SummarizeHSN(lines)
		summary.UpdatedAt = now
		return repos.Summaries.Upsert(ctx, summary)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("entity_id", entityID).Str("period", period).
		Str("net_liability", summary.NetLiability.StringFixed(2)).Int("entries", summary.EntryCount).
		Msg("período GST consolidado")
	uc.publish(ctx, ports.EventGSTSummarized, entityID+":"+period, summary)
	return summary, nil
}

// SummarizeAll consolida el período para todas las entidades con asientos.
// Sigue con las demás si una falla y devuelve los errores combinados.
func (uc *UseCase) SummarizeAll(ctx context.Context, period string) ([]*entity.GSTSummary, error) {
	if _, _, err := gst.PeriodBounds(period, uc.cfg.Location); err != nil {
		return nil, err
	}
	entities, err := uc.repos.Ledger.ListEntities(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("gst: entidades del período: %w", err)
	}
	var (
		out  []*entity.GSTSummary
		errs []error
	)
	for _, e := range entities {
		s, err := uc.SummarizePeriod(ctx, e.Type, e.ID, period)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", e.Type, e.ID, err))
			continue
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

// GetSummary devuelve el consolidado guardado.
func (uc *UseCase) GetSummary(ctx context.Context, entityType entity.LocationType, entityID, period string) (*entity.GSTSummary, error) {
	if err := validateScope(entityType, entityID); err != nil {
		return nil, err
	}
	s, err := uc.repos.Summaries.Get(ctx, entityType, entityID, period)
	if err != nil {
		return nil, fmt.Errorf("gst: obtener resumen: %w", err)
	}
	if s == nil {
		return nil, domain.NotFound("resumen GST", entityID+"/"+period)
	}
	return s, nil
}

// ListEntries asientos de la entidad en el período.
func (uc *UseCase) ListEntries(ctx context.Context, entityType entity.LocationType, entityID, period string) ([]*entity.GSTLedgerEntry, error) {
	if err := validateScope(entityType, entityID); err != nil {
		return nil, err
	}
	if _, _, err := gst.PeriodBounds(period, uc.cfg.Location); err != nil {
		return nil, err
	}
	return uc.repos.Ledger.ListByEntityPeriod(ctx, entityType, entityID, period)
}

// HSNSummary agrupa por (HSN, tasa) las líneas de facturas emitidas por la entidad en el período.
func (uc *UseCase) HSNSummary(ctx context.Context, entityType entity.LocationType, entityID, period string) ([]entity.HSNSummaryRow, error) {
	if err := validateScope(entityType, entityID); err != nil {
		return nil, err
	}
	from, to, err := gst.PeriodBounds(period, uc.cfg.Location)
	if err != nil {
		return nil, err
	}
	lines, err := uc.repos.Invoices.ListIssuedLines(ctx, entityType, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("gst: líneas emitidas: %w", err)
	}
	return gst.SummarizeHSN(lines), nil
}

// MarkFiled registra la presentación de una declaración para el período consolidado.
func (uc *UseCase) MarkFiled(ctx context.Context, entityType entity.LocationType, entityID, period string, rt entity.GSTReturnType) (*entity.GSTSummary, error) {
	if err := validateScope(entityType, entityID); err != nil {
		return nil, err
	}
	if rt != entity.ReturnGSTR1 && rt != entity.ReturnGSTR3B {
		return nil, domain.Validation("return_type", "debe ser GSTR1 o GSTR3B")
	}
	var summary *entity.GSTSummary
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		s, err := repos.Summaries.Get(ctx, entityType, entityID, period)
		if err != nil {
			return fmt.Errorf("gst: obtener resumen: %w", err)
		}
		if s == nil {
			return domain.NotFound("resumen GST", entityID+"/"+period)
		}
		if err := repos.Ledger.MarkFiled(ctx, entityType, entityID, period, rt); err != nil {
			return fmt.Errorf("gst: marcar asientos: %w", err)
		}
		if rt == entity.ReturnGSTR1 {
			s.GSTR1Status = entity.FilingFiled
		} else {
			s.GSTR3BStatus = entity.FilingFiled
		}
		s.UpdatedAt = uc.now()
		summary = s
		return repos.Summaries.Upsert(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ExportSummary escribe el consolidado guardado y sus asientos en w.
func (uc *UseCase) ExportSummary(ctx context.Context, entityType entity.LocationType, entityID, period string, w io.Writer) error {
	if uc.exporter == nil {
		return fmt.Errorf("gst: exportador no configurado")
	}
	s, err := uc.GetSummary(ctx, entityType, entityID, period)
	if err != nil {
		return err
	}
	entries, err := uc.repos.Ledger.ListByEntityPeriod(ctx, entityType, entityID, period)
	if err != nil {
		return fmt.Errorf("gst: listar asientos: %w", err)
	}
	return uc.exporter.ExportSummary(w, s, entries)
}

func (uc *UseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if err := uc.events.Publish(ctx, eventType, key, payload); err != nil {
		uc.log.Warn().Err(err).Str("event", eventType).Str("key", key).Msg("no se pudo publicar el evento")
	}
}
