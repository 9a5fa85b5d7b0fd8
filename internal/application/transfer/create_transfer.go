package transfer

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/numbering"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/gst"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/lifecycle"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/stock"
)

// CreateTransfer valida, valoriza y reserva en origen las cantidades solicitadas.
// Si alguna línea no tiene disponible suficiente no se guarda nada.
func (uc *UseCase) CreateTransfer(ctx context.Context, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, error) {
	t, products, err := uc.resolve(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	err = numbering.WithRetry(ctx, uc.Log, uc.cfg.MaxRetries, func() error {
		return uc.Tx.Run(ctx, func(repos repository.Repos) error {
			// Cantidades y costos se recalculan en cada intento a partir del request.
			draft := cloneDraft(t)
			if err := uc.reserveAndPrice(ctx, repos, draft, products); err != nil {
				return err
			}
			now := uc.now()
			number, fy, err := uc.Numbers.NextTransferNumber(ctx, repos, now.In(uc.cfg.Location))
			if err != nil {
				return err
			}
			draft.ID = uuid.New().String()
			draft.TransferNumber = number
			draft.FinancialYear = fy
			draft.CreatedAt = now
			draft.UpdatedAt = now
			for i := range draft.Items {
				draft.Items[i].TransferID = draft.ID
			}
			if err := repos.Transfers.Create(ctx, draft); err != nil {
				return fmt.Errorf("transfer: guardar traslado %s: %w", number, err)
			}
			t = draft
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("transfer_number", t.TransferNumber).Str("source", t.Source.ID).
		Str("destination", t.Destination.ID).Str("total_value", t.TotalValue.StringFixed(2)).
		Bool("eway_bill_required", t.EWayBillRequired).Msg("traslado creado")
	uc.publish(ctx, ports.EventTransferCreated, t.ID, dto.NewTransferResponse(t, false))
	return t, nil
}

// resolve valida el request y arma el traslado pendiente sin tocar inventario.
func (uc *UseCase) resolve(ctx context.Context, userID string, in dto.CreateTransferRequest) (*entity.StockTransfer, map[string]*entity.Product, error) {
	if len(in.Items) == 0 {
		return nil, nil, domain.Validation("items", "el traslado requiere al menos una línea")
	}
	source, err := uc.activeLocation(ctx, "source_id", in.SourceID)
	if err != nil {
		return nil, nil, err
	}
	dest, err := uc.activeLocation(ctx, "destination_id", in.DestinationID)
	if err != nil {
		return nil, nil, err
	}
	if source.ID == dest.ID {
		return nil, nil, domain.Validation("destination_id", "el destino debe ser distinto del origen")
	}

	pricing := entity.PricingType(in.PricingType)
	switch pricing {
	case "":
		pricing = entity.PricingCost
	case entity.PricingCost, entity.PricingCostPlusGST:
	default:
		return nil, nil, domain.Validation("pricing_type", "tipo de valorización desconocido: "+in.PricingType)
	}
	for name, v := range map[string]decimal.Decimal{
		"charges.transport": in.Charges.Transport,
		"charges.handling":  in.Charges.Handling,
		"charges.insurance": in.Charges.Insurance,
		"charges.other":     in.Charges.Other,
	} {
		if v.IsNegative() {
			return nil, nil, domain.Validation(name, "no puede ser negativo")
		}
	}

	t := &entity.StockTransfer{
		TransferType:     entity.TransferTypeFor(source.Type, dest.Type),
		Source:           source.Snapshot(),
		Destination:      dest.Snapshot(),
		Status:           entity.TransferPending,
		Reason:           in.Reason,
		Notes:            in.Notes,
		PricingType:      pricing,
		GenerateInvoice:  in.GenerateInvoice,
		TransportCharges: in.Charges.Transport,
		HandlingCharges:  in.Charges.Handling,
		InsuranceCharges: in.Charges.Insurance,
		OtherCharges:     in.Charges.Other,
		RequestedBy:      userID,
	}
	t.IsInterState = gst.IsInterState(t.Source, t.Destination)

	products := make(map[string]*entity.Product, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if _, dup := products[it.ProductID]; dup {
			return nil, nil, domain.Validation(field+".product_id", "producto repetido en el traslado")
		}
		if !it.Quantity.IsPositive() {
			return nil, nil, domain.Validation(field+".quantity", "debe ser mayor a cero")
		}
		if it.UnitCost != nil && it.UnitCost.IsNegative() {
			return nil, nil, domain.Validation(field+".unit_cost", "no puede ser negativo")
		}
		p, err := uc.Repos.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("transfer: obtener producto: %w", err)
		}
		if p == nil {
			return nil, nil, domain.NotFound("producto", it.ProductID)
		}
		if t.GenerateInvoice && p.HSNCode == "" {
			return nil, nil, domain.Validation(field+".hsn_code", "el producto "+p.SKU+" no tiene código HSN")
		}
		products[p.ID] = p
		item := entity.TransferLineItem{
			LineNumber:        i + 1,
			ProductID:         p.ID,
			ProductName:       p.Name,
			SKU:               p.SKU,
			HSNCode:           p.HSNCode,
			Category:          p.Category,
			Unit:              p.Unit,
			RequestedQuantity: it.Quantity,
			ApprovedQuantity:  decimal.Zero,
			ShippedQuantity:   decimal.Zero,
			ReceivedQuantity:  decimal.Zero,
			DamagedQuantity:   decimal.Zero,
			ShortageQuantity:  decimal.Zero,
			ExcessQuantity:    decimal.Zero,
			TaxRate:           p.GSTRate,
		}
		if it.UnitCost != nil {
			item.UnitCost = *it.UnitCost
		}
		t.Items = append(t.Items, item)
	}
	return t, products, nil
}

// reserveAndPrice bloquea los registros de origen en orden de producto, reserva lo solicitado y
// completa costos e importes. Una línea sin costo (o con costo cero) toma el costo promedio del origen
// redondeado a centavos.
func (uc *UseCase) reserveAndPrice(ctx context.Context, repos repository.Repos, t *entity.StockTransfer, products map[string]*entity.Product) error {
	now := uc.now()
	for _, i := range lockOrder(t.Items) {
		item := &t.Items[i]
		rec, err := repos.Inventory.GetForUpdate(ctx, t.Source.Type, t.Source.ID, item.ProductID)
		if err != nil {
			return fmt.Errorf("transfer: bloquear inventario de %s: %w", item.SKU, err)
		}
		if rec == nil {
			return domain.InsufficientStock(item.SKU, item.RequestedQuantity, decimal.Zero)
		}
		if err := stock.Reserve(rec, item.RequestedQuantity, item.SKU); err != nil {
			return err
		}
		rec.LastMovementAt = &now
		rec.UpdatedAt = now
		if err := repos.Inventory.Save(ctx, rec); err != nil {
			return fmt.Errorf("transfer: guardar inventario de %s: %w", item.SKU, err)
		}
		if item.UnitCost.IsZero() {
			item.UnitCost = rec.AverageCost
			if item.UnitCost.IsZero() {
				item.UnitCost = products[item.ProductID].CostPrice
			}
		}
		// El costo promedio lleva 4 decimales; la factura del traslado lo cobra a 2.
		item.UnitCost = gst.Round2(item.UnitCost)
	}
	price(t, requestedQty)
	t.EWayBillRequired = lifecycle.EWayBillRequired(t.TotalValue, uc.cfg.EWayBillThreshold)
	return nil
}

// price recalcula importes de líneas y totales con la cantidad que devuelve qty.
// Con valorización cost_plus_gst cada línea lleva su impuesto; con cost el impuesto es cero.
func price(t *entity.StockTransfer, qty func(entity.TransferLineItem) decimal.Decimal) {
	t.Subtotal, t.CGSTAmount, t.SGSTAmount, t.IGSTAmount, t.TotalTax =
		decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i := range t.Items {
		item := &t.Items[i]
		taxable := gst.Round2(qty(*item).Mul(item.UnitCost))
		item.TaxableAmount = taxable
		item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.TotalTaxAmount =
			decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		if t.PricingType == entity.PricingCostPlusGST {
			b := gst.CalculateGST(taxable, item.TaxRate, t.IsInterState)
			item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.TotalTaxAmount =
				b.CGSTAmount, b.SGSTAmount, b.IGSTAmount, b.TotalTax
		}
		item.LineTotal = taxable.Add(item.TotalTaxAmount)

		t.Subtotal = t.Subtotal.Add(taxable)
		t.CGSTAmount = t.CGSTAmount.Add(item.CGSTAmount)
		t.SGSTAmount = t.SGSTAmount.Add(item.SGSTAmount)
		t.IGSTAmount = t.IGSTAmount.Add(item.IGSTAmount)
		t.TotalTax = t.TotalTax.Add(item.TotalTaxAmount)
	}
	t.TotalValue = t.Subtotal.Add(t.TotalTax)
	t.TotalTransferCost = t.TotalValue.Add(t.TransportCharges).Add(t.HandlingCharges).
		Add(t.InsuranceCharges).Add(t.OtherCharges)
}

// lockOrder índices de las líneas ordenados por producto: todos los traslados bloquean
// los registros de inventario en el mismo orden.
func lockOrder(items []entity.TransferLineItem) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return items[idx[a]].ProductID < items[idx[b]].ProductID })
	return idx
}

func requestedQty(it entity.TransferLineItem) decimal.Decimal { return it.RequestedQuantity }

func approvedQty(it entity.TransferLineItem) decimal.Decimal { return it.ApprovedQuantity }

func shippedQty(it entity.TransferLineItem) decimal.Decimal { return it.ShippedQuantity }

func cloneDraft(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Items = append([]entity.TransferLineItem(nil), t.Items...)
	return &c
}

func (uc *UseCase) activeLocation(ctx context.Context, field, id string) (*entity.Location, error) {
	if id == "" {
		return nil, domain.Validation(field, "es obligatorio")
	}
	loc, err := uc.Repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transfer: obtener ubicación: %w", err)
	}
	if loc == nil {
		return nil, domain.NotFound("ubicación", id)
	}
	if !loc.IsActive {
		return nil, domain.Validation(field, "la ubicación "+loc.Code+" está inactiva")
	}
	return loc, nil
}
