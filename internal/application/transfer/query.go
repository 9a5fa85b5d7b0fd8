package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/dto"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/repository"
)

// GetTransfer devuelve el traslado con sus líneas.
func (uc *UseCase) GetTransfer(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := uc.Repos.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transfer: obtener traslado: %w", err)
	}
	if t == nil {
		return nil, domain.NotFound("traslado", id)
	}
	return t, nil
}

// ListTransfers lista traslados paginados y el total sin paginar.
func (uc *UseCase) ListTransfers(ctx context.Context, q dto.ListTransfersQuery) ([]*entity.StockTransfer, int, error) {
	q.DefaultPage()
	list, total, err := uc.Repos.Transfers.List(ctx, repository.TransferFilter{
		LocationID:    q.LocationID,
		Status:        entity.TransferStatus(q.Status),
		FinancialYear: q.FinancialYear,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("transfer: listar traslados: %w", err)
	}
	return list, total, nil
}

// ApprovedQuantities convierte el request de aprobación.
func ApprovedQuantities(in dto.ApproveTransferRequest) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(in.Items))
	for _, it := range in.Items {
		if _, dup := out[it.ProductID]; dup {
			return nil, domain.Validation("items.product_id", "producto repetido: "+it.ProductID)
		}
		out[it.ProductID] = it.ApprovedQuantity
	}
	return out, nil
}

// Receipts convierte el request de recepción.
func Receipts(in dto.ReceiveTransferRequest) (map[string]Receipt, error) {
	out := make(map[string]Receipt, len(in.Items))
	for _, it := range in.Items {
		if _, dup := out[it.ProductID]; dup {
			return nil, domain.Validation("items.product_id", "producto repetido: "+it.ProductID)
		}
		out[it.ProductID] = Receipt{Received: it.ReceivedQuantity, Damaged: it.DamagedQuantity}
	}
	return out, nil
}

// Tracking convierte el request de despacho; la fecha esperada se interpreta en loc.
func Tracking(in dto.ShipTransferRequest, loc *time.Location) (entity.TrackingInfo, error) {
	ti := entity.TrackingInfo{
		TrackingNumber: in.TrackingNumber,
		CarrierName:    in.CarrierName,
		VehicleNumber:  in.VehicleNumber,
		EWayBillNumber: in.EWayBillNumber,
	}
	if in.ExpectedDeliveryDate != "" {
		if loc == nil {
			loc = time.UTC
		}
		d, err := time.ParseInLocation(dto.DateLayout, in.ExpectedDeliveryDate, loc)
		if err != nil {
			return ti, domain.Validation("expected_delivery_date", "formato esperado "+dto.DateLayout)
		}
		ti.ExpectedDeliveryDate = &d
	}
	return ti, nil
}
