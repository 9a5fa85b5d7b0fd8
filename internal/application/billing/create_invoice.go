package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/gst"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// DraftLine línea con el producto ya resuelto.
type DraftLine struct {
	Product         *entity.Product
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// InvoiceDraft datos resueltos para construir una factura (emisor, receptor y productos ya leídos).
type InvoiceDraft struct {
	Type              entity.InvoiceType
	Issuer            entity.PartySnapshot
	Recipient         entity.PartySnapshot
	InvoiceDate       time.Time
	DueDate           *time.Time
	Discount          gst.InvoiceDiscount
	Charges           entity.Charges
	Notes             string
	ReferenceType     string
	ReferenceID       string
	OriginalInvoiceID string
	CreatedBy         string
	Lines             []DraftLine
}

// BuildInvoice calcula líneas y totales. No asigna número ni persiste.
func BuildInvoice(d InvoiceDraft) (*entity.Invoice, error) {
	if !d.Type.Valid() {
		return nil, domain.Validation("invoice_type", "tipo de factura desconocido: "+string(d.Type))
	}
	if d.Issuer.ID == "" || d.Recipient.ID == "" {
		return nil, domain.Validation("issuer_id", "emisor y receptor son obligatorios")
	}
	if d.Issuer.ID == d.Recipient.ID {
		return nil, domain.Validation("recipient_id", "el receptor debe ser distinto del emisor")
	}
	if d.DueDate != nil && d.DueDate.Before(startOfDay(d.InvoiceDate)) {
		return nil, domain.Validation("due_date", "no puede ser anterior a la fecha de factura")
	}

	interState := gst.IsInterState(d.Issuer, d.Recipient)
	inv := &entity.Invoice{
		InvoiceType:       d.Type,
		Issuer:            d.Issuer,
		Recipient:         d.Recipient,
		InvoiceDate:       d.InvoiceDate,
		DueDate:           d.DueDate,
		IsInterState:      interState,
		DiscountType:      d.Discount.Type,
		DiscountValue:     d.Discount.Value,
		Charges:           d.Charges,
		PaidAmount:        decimal.Zero,
		Status:            entity.InvoiceDraft,
		PaymentStatus:     entity.PaymentPending,
		ReferenceType:     d.ReferenceType,
		ReferenceID:       d.ReferenceID,
		OriginalInvoiceID: d.OriginalInvoiceID,
		Notes:             d.Notes,
		CreatedBy:         d.CreatedBy,
	}
	if inv.DiscountType == "" {
		inv.DiscountType = entity.DiscountNone
	}

	amounts := make([]gst.LineAmounts, 0, len(d.Lines))
	for i, l := range d.Lines {
		if l.Product == nil {
			return nil, domain.Validation(fmt.Sprintf("items[%d].product_id", i), "producto no resuelto")
		}
		if strings.TrimSpace(l.Product.HSNCode) == "" {
			return nil, domain.Validation(fmt.Sprintf("items[%d].hsn_code", i), "el producto "+l.Product.SKU+" no tiene código HSN")
		}
		a, err := gst.CalculateLine(gst.LineInput{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxRate:         l.TaxRate,
		}, interState)
		if err != nil {
			return nil, err
		}
		item := entity.InvoiceLineItem{
			LineNumber:      i + 1,
			ProductID:       l.Product.ID,
			ProductName:     l.Product.Name,
			SKU:             l.Product.SKU,
			HSNCode:         l.Product.HSNCode,
			Category:        l.Product.Category,
			Unit:            l.Product.Unit,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxRate:         l.TaxRate,
		}
		a.ApplyTo(&item)
		inv.Items = append(inv.Items, item)
		amounts = append(amounts, a)
	}

	totals, err := gst.AggregateInvoice(amounts, d.Discount, d.Charges)
	if err != nil {
		return nil, err
	}
	totals.ApplyTo(inv)
	return inv, nil
}

// CreateInTx construye, numera y guarda la factura en borrador usando los repos de la transacción.
func (uc *InvoiceUseCase) CreateInTx(ctx context.Context, repos repository.Repos, d InvoiceDraft) (*entity.Invoice, error) {
	inv, err := BuildInvoice(d)
	if err != nil {
		return nil, err
	}
	number, fy, err := uc.Numbers.NextInvoiceNumber(ctx, repos, d.Issuer.Type, d.InvoiceDate.In(uc.cfg.Location))
	if err != nil {
		return nil, err
	}
	now := uc.now()
	inv.ID = uuid.New().String()
	inv.InvoiceNumber = number
	inv.FinancialYear = fy
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if err := repos.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("billing: guardar factura %s: %w", number, err)
	}
	return inv, nil
}

// CreateInvoice crea una factura en borrador a partir del request.
// La numeración se reintenta completa si otra transacción tomó el mismo número.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	draft, err := uc.resolveDraft(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	var inv *entity.Invoice
	err = numbering.WithRetry(ctx, uc.Log, uc.cfg.MaxRetries, func() error {
		return uc.Tx.Run(ctx, func(repos repository.Repos) error {
			var err error
			inv, err = uc.CreateInTx(ctx, repos, draft)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("invoice_number", inv.InvoiceNumber).Str("issuer_id", inv.Issuer.ID).
		Str("total", inv.TotalAmount.StringFixed(2)).Msg("factura creada")
	return inv, nil
}

// resolveDraft lee ubicaciones y productos (solo lectura, fuera de la transacción).
func (uc *InvoiceUseCase) resolveDraft(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (InvoiceDraft, error) {
	if len(in.Items) == 0 {
		return InvoiceDraft{}, domain.Validation("items", "la factura requiere al menos una línea")
	}
	issuer, err := uc.activeLocation(ctx, "issuer_id", in.IssuerID)
	if err != nil {
		return InvoiceDraft{}, err
	}
	recipient, err := uc.activeLocation(ctx, "recipient_id", in.RecipientID)
	if err != nil {
		return InvoiceDraft{}, err
	}

	invoiceDate := uc.now().In(uc.cfg.Location)
	if in.InvoiceDate != "" {
		if invoiceDate, err = time.ParseInLocation(dto.DateLayout, in.InvoiceDate, uc.cfg.Location); err != nil {
			return InvoiceDraft{}, domain.Validation("invoice_date", "formato esperado "+dto.DateLayout)
		}
	}
	var due *time.Time
	switch {
	case in.DueDate != "":
		d, err := time.ParseInLocation(dto.DateLayout, in.DueDate, uc.cfg.Location)
		if err != nil {
			return InvoiceDraft{}, domain.Validation("due_date", "formato esperado "+dto.DateLayout)
		}
		due = &d
	case uc.cfg.DefaultDueDays > 0:
		d := invoiceDate.AddDate(0, 0, uc.cfg.DefaultDueDays)
		due = &d
	}

	draft := InvoiceDraft{
		Type:          entity.InvoiceType(in.InvoiceType),
		Issuer:        issuer.Snapshot(),
		Recipient:     recipient.Snapshot(),
		InvoiceDate:   invoiceDate,
		DueDate:       due,
		Discount:      gst.InvoiceDiscount{Type: entity.DiscountType(in.DiscountType), Value: in.DiscountValue},
		Charges:       in.Charges.ToEntity(),
		Notes:         in.Notes,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedBy:     userID,
	}
	for i, it := range in.Items {
		p, err := uc.Repos.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return InvoiceDraft{}, fmt.Errorf("billing: obtener producto: %w", err)
		}
		if p == nil {
			return InvoiceDraft{}, domain.NotFound("producto", it.ProductID)
		}
		line := DraftLine{
			Product:         p,
			Quantity:        it.Quantity,
			UnitPrice:       p.SellingPrice,
			DiscountPercent: it.DiscountPercent,
			TaxRate:         p.GSTRate,
		}
		if it.UnitPrice != nil {
			line.UnitPrice = *it.UnitPrice
		}
		if it.TaxRate != nil {
			line.TaxRate = *it.TaxRate
		}
		if !line.Quantity.IsPositive() {
			return InvoiceDraft{}, domain.Validation(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor a cero")
		}
		draft.Lines = append(draft.Lines, line)
	}
	return draft, nil
}

func (uc *InvoiceUseCase) activeLocation(ctx context.Context, field, id string) (*entity.Location, error) {
	if id == "" {
		return nil, domain.Validation(field, "es obligatorio")
	}
	loc, err := uc.Repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("billing: obtener ubicación: %w", err)
	}
	if loc == nil {
		return nil, domain.NotFound("ubicación", id)
	}
	if !loc.IsActive {
		return nil, domain.Validation(field, "la ubicación "+loc.Code+" está inactiva")
	}
	return loc, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
