package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

// GSTScopeQuery entidad y período de las consultas GST.
type GSTScopeQuery struct {
	EntityType string `query:"entity_type" validate:"required,oneof=warehouse store"`
	EntityID   string `query:"entity_id" validate:"required"`
	Period     string `query:"period" validate:"required,len=6,numeric"`
}

// SummarizeRequest body para POST /api/gst/summaries.
type SummarizeRequest struct {
	EntityType string `json:"entity_type" validate:"required,oneof=warehouse store"`
	EntityID   string `json:"entity_id" validate:"required"`
	Period     string `json:"period" validate:"required,len=6,numeric"`
}

// MarkFiledRequest body para POST /api/gst/summaries/filed.
type MarkFiledRequest struct {
	SummarizeRequest
	ReturnType string `json:"return_type" validate:"required,oneof=GSTR1 GSTR3B"`
}

// GSTSummaryResponse consolidado del período.
type GSTSummaryResponse struct {
	ID                  string                 `json:"id"`
	EntityType          string                 `json:"entity_type"`
	EntityID            string                 `json:"entity_id"`
	GSTIN               string                 `json:"gstin"`
	TaxPeriod           string                 `json:"tax_period"`
	TotalOutputCGST     decimal.Decimal        `json:"total_output_cgst"`
	TotalOutputSGST     decimal.Decimal        `json:"total_output_sgst"`
	TotalOutputIGST     decimal.Decimal        `json:"total_output_igst"`
	TotalOutputGST      decimal.Decimal        `json:"total_output_gst"`
	TotalInputCGST      decimal.Decimal        `json:"total_input_cgst"`
	TotalInputSGST      decimal.Decimal        `json:"total_input_sgst"`
	TotalInputIGST      decimal.Decimal        `json:"total_input_igst"`
	TotalInputGST       decimal.Decimal        `json:"total_input_gst"`
	ITCAvailable        decimal.Decimal        `json:"itc_available"`
	ITCUtilized         decimal.Decimal        `json:"itc_utilized"`
	ITCBalance          decimal.Decimal        `json:"itc_balance"`
	NetLiability        decimal.Decimal        `json:"net_liability"`
	TotalTaxableOutward decimal.Decimal        `json:"total_taxable_outward"`
	TotalTaxableInward  decimal.Decimal        `json:"total_taxable_inward"`
	EntryCount          int                    `json:"entry_count"`
	HSNSummary          []entity.HSNSummaryRow `json:"hsn_summary"`
	GSTR1Status         string                 `json:"gstr1_status"`
	GSTR3BStatus        string                 `json:"gstr3b_status"`
	GeneratedAt         time.Time              `json:"generated_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewGSTSummaryResponse mapea el consolidado.
func NewGSTSummaryResponse(s *entity.GSTSummary) GSTSummaryResponse {
	hsn := s.HSNSummary
	if hsn == nil {
		hsn = []entity.HSNSummaryRow{}
	}
	return GSTSummaryResponse{
		ID:                  s.ID,
		EntityType:          string(s.EntityType),
		EntityID:            s.EntityID,
		GSTIN:               s.GSTIN,
		TaxPeriod:           s.TaxPeriod,
		TotalOutputCGST:     s.TotalOutputCGST,
		TotalOutputSGST:     s.TotalOutputSGST,
		TotalOutputIGST:     s.TotalOutputIGST,
		TotalOutputGST:      s.TotalOutputGST,
		TotalInputCGST:      s.TotalInputCGST,
		TotalInputSGST:      s.TotalInputSGST,
		TotalInputIGST:      s.TotalInputIGST,
		TotalInputGST:       s.TotalInputGST,
		ITCAvailable:        s.ITCAvailable,
		ITCUtilized:         s.ITCUtilized,
		ITCBalance:          s.ITCBalance,
		NetLiability:        s.NetLiability,
		TotalTaxableOutward: s.TotalTaxableOutward,
		TotalTaxableInward:  s.TotalTaxableInward,
		EntryCount:          s.EntryCount,
		HSNSummary:          hsn,
		GSTR1Status:         string(s.GSTR1Status),
		GSTR3BStatus:        string(s.GSTR3BStatus),
		GeneratedAt:         s.GeneratedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// GSTLedgerEntryResponse asiento del libro GST.
type GSTLedgerEntryResponse struct {
	ID                string          `json:"id"`
	TaxPeriod         string          `json:"tax_period"`
	TransactionType   string          `json:"transaction_type"`
	Direction         string          `json:"direction"`
	SourceType        string          `json:"source_type"`
	SourceID          string          `json:"source_id"`
	SourceNumber      string          `json:"source_number"`
	TransactionDate   time.Time       `json:"transaction_date"`
	CounterpartyGSTIN string          `json:"counterparty_gstin,omitempty"`
	IsInterState      bool            `json:"is_inter_state"`
	TaxableAmount     decimal.Decimal `json:"taxable_amount"`
	OutputCGST        decimal.Decimal `json:"output_cgst"`
	OutputSGST        decimal.Decimal `json:"output_sgst"`
	OutputIGST        decimal.Decimal `json:"output_igst"`
	InputCGST         decimal.Decimal `json:"input_cgst"`
	InputSGST         decimal.Decimal `json:"input_sgst"`
	InputIGST         decimal.Decimal `json:"input_igst"`
	ITCEligible       bool            `json:"itc_eligible"`
	GSTR1Filed        bool            `json:"gstr1_filed"`
	GSTR3BFiled       bool            `json:"gstr3b_filed"`
	OriginalEntryID   string          `json:"original_entry_id,omitempty"`
}

// NewGSTLedgerEntryResponses mapea los asientos.
func NewGSTLedgerEntryResponses(entries []*entity.GSTLedgerEntry) []GSTLedgerEntryResponse {
	out := make([]GSTLedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, GSTLedgerEntryResponse{
			ID:                e.ID,
			TaxPeriod:         e.TaxPeriod,
			TransactionType:   string(e.TransactionType),
			Direction:         string(e.Direction),
			SourceType:        e.SourceType,
			SourceID:          e.SourceID,
			SourceNumber:      e.SourceNumber,
			TransactionDate:   e.TransactionDate,
			CounterpartyGSTIN: e.CounterpartyGSTIN,
			IsInterState:      e.IsInterState,
			TaxableAmount:     e.TaxableAmount,
			OutputCGST:        e.OutputCGST,
			OutputSGST:        e.OutputSGST,
			OutputIGST:        e.OutputIGST,
			InputCGST:         e.InputCGST,
			InputSGST:         e.InputSGST,
			InputIGST:         e.InputIGST,
			ITCEligible:       e.ITCEligible,
			GSTR1Filed:        e.GSTR1Filed,
			GSTR3BFiled:       e.GSTR3BFiled,
			OriginalEntryID:   e.OriginalEntryID,
		})
	}
	return out
}

// VoucherExportQuery rango de GET /api/gst/tally (fechas inclusivas).
type VoucherExportQuery struct {
	IssuerID string `query:"issuer_id" validate:"required"`
	From     string `query:"from" validate:"required,datetime=2006-01-02"`
	To       string `query:"to" validate:"required,datetime=2006-01-02"`
}
