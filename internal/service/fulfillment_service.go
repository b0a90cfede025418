package service

import (
	"context"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FulfillmentResult menggabungkan hasil ledger dan tagihan.
// Status "partial" berarti ledger sudah commit tetapi tagihan gagal.
type FulfillmentResult struct {
	ActivityResult
	TrxID            string           `json:"trx_id,omitempty"`
	TotalHarga       *decimal.Decimal `json:"total_harga,omitempty"`
	SisaDeposit      *decimal.Decimal `json:"sisa_deposit,omitempty"`
	TabungDetails    []BillingLine    `json:"tabung_details,omitempty"`
	TransactionError string           `json:"transaction_error,omitempty"`
}

func (r *FulfillmentResult) Partial() bool {
	return r.Status == ResultPartial
}

type FulfillmentService interface {
	Record(ctx context.Context, req *ActivityRequest, actor Actor) (*FulfillmentResult, error)
}

type fulfillmentService struct {
	ledger  LedgerService
	billing BillingService
	log     *zap.Logger
}

func NewFulfillmentService(ledger LedgerService, billing BillingService, log *zap.Logger) FulfillmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &fulfillmentService{ledger: ledger, billing: billing, log: log}
}

// Record mencatat aktivitas lalu, bila status bukan Kosong, menagih pelanggan tujuan.
// Ledger dan tagihan adalah dua transaksi terpisah.
func (s *fulfillmentService) Record(ctx context.Context, req *ActivityRequest, actor Actor) (*FulfillmentResult, error) {
	if err := ValidateActivity(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		errs := []*validator.ErrorResponse{{FailedField: "ActivityRequest.Status", Tag: "required"}}
		return nil, apperror.Validation(validator.Message(errs)).WithDetail("errors", errs)
	}

	billable := req.Status != model.StatusKosong
	if billable {
		// pelanggan harus ada sebelum apa pun ditulis
		if _, err := s.billing.LookupPrice(ctx, req.Tujuan); err != nil {
			return nil, err
		}
	}

	ledger, err := s.ledger.RecordActivity(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	result := &FulfillmentResult{ActivityResult: *ledger}
	if !billable {
		return result, nil
	}

	billing, err := s.billing.DeriveBilling(ctx, BillingRequest{
		AktivitasID:   ledger.ID,
		KodePelanggan: req.Tujuan,
		Tabung:        req.Tabung,
	}, actor)
	if err != nil {
		s.log.Warn("billing failed after ledger commit",
			zap.String("aktivitas_id", ledger.ID.String()),
			zap.String("kode_pelanggan", req.Tujuan),
			zap.Error(err))
		result.Status = ResultPartial
		result.Message = "Aktivitas tersimpan, tetapi transaksi gagal dibuat"
		result.TransactionError = err.Error()
		return result, nil
	}

	result.Message = "Aktivitas dan transaksi berhasil dicatat"
	result.TrxID = billing.TrxID
	result.TotalHarga = &billing.TotalHarga
	result.SisaDeposit = &billing.SisaDeposit
	result.TabungDetails = billing.TabungDetails
	return result, nil
}
