package service

import (
	"context"
	"strings"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/metrics"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BillingLine adalah rincian tagihan satu tabung.
type BillingLine struct {
	KodeTabung string          `json:"kode_tabung"`
	Volume     decimal.Decimal `json:"volume"`
	HargaPerM3 decimal.Decimal `json:"harga_per_m3"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type BillingRequest struct {
	AktivitasID   uuid.UUID
	KodePelanggan string
	Tabung        []string
}

type BillingResult struct {
	TrxID         string          `json:"trx_id"`
	KodePelanggan string          `json:"kode_pelanggan"`
	TotalHarga    decimal.Decimal `json:"total_harga"`
	SisaDeposit   decimal.Decimal `json:"sisa_deposit"`
	TabungDetails []BillingLine   `json:"tabung_details"`
}

type BillingService interface {
	LookupPrice(ctx context.Context, kodePelanggan string) (*model.Pelanggan, error)
	DeriveBilling(ctx context.Context, req BillingRequest, actor Actor) (*BillingResult, error)
}

type BillingRepos struct {
	Pelanggan   repository.PelangganRepository
	Stok        repository.StokRepository
	Transaction repository.TransactionRepository
	Saldo       repository.SaldoRepository
	Laporan     repository.LaporanRepository
}

type billingService struct {
	db      Transactor
	repos   BillingRepos
	ids     IDGenerator
	hub     EventPublisher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewBillingService(db Transactor, repos BillingRepos, ids IDGenerator, hub EventPublisher, m *metrics.Metrics, log *zap.Logger) BillingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &billingService{db: db, repos: repos, ids: ids, hub: hub, metrics: m, log: log, now: time.Now}
}

// ComputeBilling menghitung subtotal = volume x harga per tabung (urutan input),
// tabung tanpa stok dihitung volume 0. Grand total = Σ(volume x harga) tanpa
// pembulatan per baris, baru dibulatkan 2 desimal di akhir. Subtotal per baris
// dibulatkan hanya untuk tampilan.
func ComputeBilling(price decimal.Decimal, kodes []string, volumes map[string]decimal.Decimal) ([]BillingLine, decimal.Decimal) {
	lines := make([]BillingLine, 0, len(kodes))
	total := decimal.Zero
	for _, kode := range kodes {
		volume := volumes[kode]
		amount := volume.Mul(price)
		lines = append(lines, BillingLine{
			KodeTabung: kode,
			Volume:     volume,
			HargaPerM3: price,
			Subtotal:   amount.Round(2),
		})
		total = total.Add(amount)
	}
	return lines, total.Round(2)
}

func (s *billingService) LookupPrice(ctx context.Context, kodePelanggan string) (*model.Pelanggan, error) {
	kodePelanggan = strings.TrimSpace(kodePelanggan)
	if kodePelanggan == "" {
		return nil, apperror.Validation("kode_pelanggan is required")
	}
	pelanggan, err := s.repos.Pelanggan.FindByKode(ctx, kodePelanggan)
	if err != nil {
		return nil, lookupError(err, "Customer tidak ditemukan")
	}
	return pelanggan, nil
}

// DeriveBilling membuat transaksi, detail, potongan saldo dan baris laporan
// dalam satu transaksi database. Tidak idempoten.
func (s *billingService) DeriveBilling(ctx context.Context, req BillingRequest, actor Actor) (*BillingResult, error) {
	pelanggan, err := s.LookupPrice(ctx, req.KodePelanggan)
	if err != nil {
		return nil, err
	}
	if len(req.Tabung) == 0 {
		return nil, apperror.Validation("tabung is required")
	}

	trxID := s.ids.NextTrxID()
	now := s.now()
	result := &BillingResult{TrxID: trxID, KodePelanggan: pelanggan.KodePelanggan}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		volumes, err := s.repos.Stok.FindVolumes(ctx, tx, req.Tabung)
		if err != nil {
			return err
		}
		lines, total := ComputeBilling(pelanggan.HargaTabung, req.Tabung, volumes)
		result.TabungDetails = lines
		result.TotalHarga = total

		trx := &model.Transaction{
			TrxID:         trxID,
			AktivitasID:   req.AktivitasID,
			KodePelanggan: pelanggan.KodePelanggan,
			TotalHarga:    total,
			JumlahTabung:  len(req.Tabung),
			Type:          model.TrxTypePurchase,
			PaymentMethod: model.PaymentMethodCash,
			Status:        model.TrxStatusPaid,
		}
		trx.CreatedBy = actor.ID
		if err := s.repos.Transaction.Create(ctx, tx, trx); err != nil {
			return err
		}

		snapshot := make([]model.TabungVolume, 0, len(lines))
		for _, line := range lines {
			snapshot = append(snapshot, model.TabungVolume{KodeTabung: line.KodeTabung, Volume: line.Volume})
		}
		detail := &model.DetailTransaksi{TrxID: trxID, Tabung: snapshot, FormatVersion: model.TabungListVersion}
		detail.CreatedBy = actor.ID
		if err := s.repos.Transaction.CreateDetail(ctx, tx, detail); err != nil {
			return err
		}

		saldo, err := s.repos.Saldo.Decrement(ctx, tx, pelanggan.KodePelanggan, total, actor.ID)
		if err != nil {
			return err
		}
		result.SisaDeposit = saldo

		invoice := trxID
		line := &model.LaporanPelanggan{
			KodePelanggan:      pelanggan.KodePelanggan,
			Tanggal:            dateOnly(now),
			Keterangan:         model.LaporanTagihan,
			JumlahTabung:       len(req.Tabung),
			Harga:              total,
			TambahanDeposit:    decimal.Zero,
			PenguranganDeposit: total,
			SisaDeposit:        saldo,
			Tabung:             append([]string(nil), req.Tabung...),
			FormatVersion:      model.TabungListVersion,
			IDBastInvoice:      &invoice,
		}
		line.CreatedBy = actor.ID
		return s.repos.Laporan.Create(ctx, tx, line)
	})
	if err != nil {
		s.metrics.BillingRun("error", 0)
		s.log.Error("derive billing failed",
			zap.String("kode_pelanggan", pelanggan.KodePelanggan),
			zap.String("trx_id", trxID),
			zap.Error(err))
		return nil, apperror.Storage("Gagal membuat transaksi", err)
	}

	amount, _ := result.TotalHarga.Float64()
	s.metrics.BillingRun(ResultCommitted, amount)
	if s.hub != nil {
		s.hub.Publish(EventBillingRecorded, map[string]interface{}{
			"trx_id":         trxID,
			"kode_pelanggan": pelanggan.KodePelanggan,
			"total_harga":    result.TotalHarga,
			"sisa_deposit":   result.SisaDeposit,
		})
	}
	return result, nil
}
