package service

import (
	"context"
	"errors"
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

// Aktivitas penerimaan yang bisa menghasilkan BAST.
const (
	ActivityTerimaDariPelanggan = "Terima Tabung Dari Pelanggan"
	ActivityTerimaDariAgen      = "Terima Tabung Dari Agen"
)

const maxBastAttempts = 5

var errBastExhausted = errors.New("bast_id: no free id after retries")

type ActivityRequest struct {
	Dari       string             `json:"dari" validate:"required"`
	Tujuan     string             `json:"tujuan" validate:"required"`
	Tabung     []string           `json:"tabung" validate:"required,min=1,unique,dive,kode"`
	Keterangan string             `json:"keterangan"`
	Activity   string             `json:"activity" validate:"required"`
	Status     model.StatusTabung `json:"status" validate:"omitempty,oneof=Kosong Isi Rusak"`
	Refund     bool               `json:"refund"`
}

func (r *ActivityRequest) normalize() {
	r.Dari = strings.TrimSpace(r.Dari)
	r.Tujuan = strings.TrimSpace(r.Tujuan)
	r.Activity = strings.TrimSpace(r.Activity)
	r.Status = model.StatusTabung(strings.TrimSpace(string(r.Status)))
	for i := range r.Tabung {
		r.Tabung[i] = strings.TrimSpace(r.Tabung[i])
	}
}

// resultingStatus: default Kosong.
func (r *ActivityRequest) resultingStatus() model.StatusTabung {
	if r.Status == "" {
		return model.StatusKosong
	}
	return r.Status
}

// ValidateActivity menormalkan lalu memvalidasi request aktivitas.
func ValidateActivity(req *ActivityRequest) error {
	if req == nil {
		return apperror.Validation("Request body is required")
	}
	req.normalize()
	return validateRequest(req)
}

type ActivityResult struct {
	Message     string                   `json:"message"`
	ID          uuid.UUID                `json:"id"`
	Status      string                   `json:"status"`
	TotalTabung int                      `json:"total_tabung"`
	StokResults []StokResult             `json:"stok_results"`
	StokSummary StokSummary              `json:"stok_summary"`
	SerahTerima *model.SerahTerimaTabung `json:"serah_terima,omitempty"`
	Aktivitas   *model.AktivitasTabung   `json:"-"`
}

type ReturnRequest struct {
	Dari   string             `json:"dari" validate:"required"`
	Tujuan string             `json:"tujuan" validate:"required"`
	Tabung []string           `json:"tabung" validate:"required,min=1,unique,dive,kode"`
	Status model.StatusTabung `json:"status" validate:"omitempty,oneof=Kosong Isi Rusak"`
}

type ReturnResult struct {
	Message     string          `json:"message"`
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	TotalTabung int             `json:"total_tabung"`
	SisaDeposit decimal.Decimal `json:"sisa_deposit"`
	StokResults []StokResult    `json:"stok_results"`
	StokSummary StokSummary     `json:"stok_summary"`
}

type VolumeItem struct {
	KodeTabung string          `json:"kode_tabung" validate:"kode"`
	Volume     decimal.Decimal `json:"volume"`
}

type VolumeRequest struct {
	Tanggal    string       `json:"tanggal" validate:"omitempty,datetime=2006-01-02"`
	Lokasi     string       `json:"lokasi" validate:"required"`
	Nama       string       `json:"nama" validate:"required"`
	Keterangan string       `json:"keterangan"`
	Tabung     []VolumeItem `json:"tabung" validate:"required,min=1,dive"`
}

type VolumeResult struct {
	Message     string          `json:"message"`
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	TotalTabung int             `json:"total_tabung"`
	TotalVolume decimal.Decimal `json:"total_volume"`
	StokResults []StokResult    `json:"stok_results"`
	StokSummary StokSummary     `json:"stok_summary"`
}

type AuditItemRequest struct {
	KodeTabung string             `json:"kode_tabung" validate:"kode"`
	Status     model.StatusTabung `json:"status" validate:"omitempty,oneof=Kosong Isi Rusak"`
}

type AuditRequest struct {
	Tanggal    string             `json:"tanggal" validate:"omitempty,datetime=2006-01-02"`
	Lokasi     string             `json:"lokasi" validate:"required"`
	Keterangan string             `json:"keterangan"`
	Tabung     []AuditItemRequest `json:"tabung" validate:"required,min=1,dive"`
}

type AuditResult struct {
	Message        string    `json:"message"`
	ID             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	TotalTabung    int       `json:"total_tabung"`
	Diperbarui     int       `json:"diperbarui"`
	TidakDitemukan []string  `json:"tidak_ditemukan"`
}

type LedgerService interface {
	RecordActivity(ctx context.Context, req *ActivityRequest, actor Actor) (*ActivityResult, error)
	RecordCustomerReturn(ctx context.Context, req *ReturnRequest, actor Actor) (*ReturnResult, error)
	RecordVolume(ctx context.Context, req *VolumeRequest, actor Actor) (*VolumeResult, error)
	RecordAudit(ctx context.Context, req *AuditRequest, actor Actor) (*AuditResult, error)
	SearchAudit(ctx context.Context, kode string) ([]model.Audit, error)
}

type LedgerRepos struct {
	Tabung      repository.TabungRepository
	Stok        repository.StokRepository
	Aktivitas   repository.AktivitasRepository
	SerahTerima repository.SerahTerimaRepository
	Saldo       repository.SaldoRepository
	Laporan     repository.LaporanRepository
	Volume      repository.VolumeRepository
	Audit       repository.AuditRepository
}

type ledgerService struct {
	db      Transactor
	repos   LedgerRepos
	ids     IDGenerator
	hub     EventPublisher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewLedgerService(db Transactor, repos LedgerRepos, ids IDGenerator, hub EventPublisher, m *metrics.Metrics, log *zap.Logger) LedgerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ledgerService{
		db:      db,
		repos:   repos,
		ids:     ids,
		hub:     hub,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// isReceiveActivity: penerimaan dari pelanggan/agen, tidak peka huruf besar.
func isReceiveActivity(activity string) bool {
	a := strings.ToLower(strings.TrimSpace(activity))
	return a == strings.ToLower(ActivityTerimaDariPelanggan) || a == strings.ToLower(ActivityTerimaDariAgen)
}

// needsHandover: BAST dibuat untuk penerimaan tabung rusak atau refund.
func needsHandover(activity string, status model.StatusTabung, refund bool) bool {
	return isReceiveActivity(activity) && (status == model.StatusRusak || refund)
}

// checkReferences memastikan semua kode terdaftar di master tabung.
func (s *ledgerService) checkReferences(ctx context.Context, kodes []string) error {
	existing, err := s.repos.Tabung.FindExistingCodes(ctx, kodes)
	if err != nil {
		return apperror.Storage("Gagal memeriksa kode tabung", err)
	}
	return referenceError(kodes, existing)
}

func referenceError(kodes, existing []string) error {
	known := make(map[string]struct{}, len(existing))
	for _, k := range existing {
		known[k] = struct{}{}
	}

	invalid := []string{}
	valid := []string{}
	for _, k := range kodes {
		if _, ok := known[k]; ok {
			valid = append(valid, k)
		} else {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return apperror.InvalidReference("Beberapa kode tabung tidak terdaftar").
		WithDetail("invalid_codes", invalid).
		WithDetail("valid_codes", valid)
}

type stockTarget struct {
	Kodes   []string
	Status  model.StatusTabung
	Lokasi  string
	Volumes map[string]decimal.Decimal
	At      time.Time
	By      string
}

// writeStock meng-upsert stok per kode dalam urutan terurut (urutan lock stabil),
// hasil dikembalikan dalam urutan input. Gagal satu kode tidak menghentikan yang lain.
func (s *ledgerService) writeStock(ctx context.Context, tx *gorm.DB, t stockTarget) []StokResult {
	byKode := make(map[string]StokResult, len(t.Kodes))
	for _, kode := range sortedCopy(t.Kodes) {
		in := repository.StokUpsert{
			KodeTabung: kode,
			Status:     t.Status,
			Lokasi:     t.Lokasi,
			At:         t.At,
			By:         t.By,
		}
		if v, ok := t.Volumes[kode]; ok {
			in.Volume = &v
		}

		action, err := s.repos.Stok.Upsert(ctx, tx, in)
		if err != nil {
			s.log.Warn("stok upsert failed", zap.String("kode_tabung", kode), zap.Error(err))
			byKode[kode] = StokResult{KodeTabung: kode, Action: model.StokError, Error: err.Error()}
			continue
		}
		byKode[kode] = StokResult{KodeTabung: kode, Action: action, Success: true}
	}

	results := make([]StokResult, 0, len(t.Kodes))
	for _, kode := range t.Kodes {
		results = append(results, byKode[kode])
	}
	return results
}

func skippedResults(kodes []string) []StokResult {
	results := make([]StokResult, 0, len(kodes))
	for _, kode := range kodes {
		results = append(results, StokResult{KodeTabung: kode, Action: model.StokSkipped, Success: true})
	}
	return results
}

func (s *ledgerService) recordStockMetrics(results []StokResult) {
	for _, r := range results {
		s.metrics.StockUpsert(string(r.Action))
	}
}

func (s *ledgerService) publish(eventType string, data interface{}) {
	if s.hub != nil {
		s.hub.Publish(eventType, data)
	}
}

func (s *ledgerService) createHandover(ctx context.Context, tx *gorm.DB, a *model.AktivitasTabung, refund bool) (*model.SerahTerimaTabung, error) {
	for attempt := 0; attempt < maxBastAttempts; attempt++ {
		bastID := s.ids.NextBastID()
		exists, err := s.repos.SerahTerima.ExistsBastID(ctx, tx, bastID)
		if err != nil {
			return nil, err
		}
		if exists {
			s.log.Debug("bast_id collision, retrying", zap.String("bast_id", bastID))
			continue
		}

		record := &model.SerahTerimaTabung{
			BastID:        bastID,
			AktivitasID:   a.ID,
			KodePelanggan: a.Dari,
			Tabung:        append([]string(nil), a.Tabung...),
			FormatVersion: model.TabungListVersion,
			Status:        a.Status,
			Refund:        refund,
		}
		record.CreatedBy = a.CreatedBy
		if err := s.repos.SerahTerima.Create(ctx, tx, record); err != nil {
			return nil, err
		}
		return record, nil
	}
	return nil, errBastExhausted
}

func (s *ledgerService) RecordActivity(ctx context.Context, req *ActivityRequest, actor Actor) (*ActivityResult, error) {
	if err := ValidateActivity(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.Tabung); err != nil {
		return nil, err
	}

	status := req.resultingStatus()
	// refund hanya berlaku untuk aktivitas penerimaan
	refund := req.Refund && isReceiveActivity(req.Activity)
	now := s.now()

	var result *ActivityResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		aktivitas := &model.AktivitasTabung{
			Dari:          req.Dari,
			Tujuan:        req.Tujuan,
			Tabung:        append([]string(nil), req.Tabung...),
			FormatVersion: model.TabungListVersion,
			Keterangan:    req.Keterangan,
			IDUser:        actor.ID,
			NamaPetugas:   actor.Name,
			TotalTabung:   len(req.Tabung),
			Tanggal:       now.In(jakartaLoc).Format(TanggalLayout),
			Waktu:         now,
			NamaAktivitas: req.Activity,
			Status:        status,
		}
		aktivitas.CreatedBy = actor.ID
		if err := s.repos.Aktivitas.Create(ctx, tx, aktivitas); err != nil {
			return err
		}

		result = &ActivityResult{
			ID:          aktivitas.ID,
			Status:      ResultCommitted,
			TotalTabung: aktivitas.TotalTabung,
			Aktivitas:   aktivitas,
		}

		if needsHandover(req.Activity, status, refund) {
			record, err := s.createHandover(ctx, tx, aktivitas, refund)
			if err != nil {
				return err
			}
			result.SerahTerima = record
		}

		if refund {
			result.StokResults = skippedResults(req.Tabung)
			return nil
		}
		result.StokResults = s.writeStock(ctx, tx, stockTarget{
			Kodes:  req.Tabung,
			Status: status,
			Lokasi: req.Tujuan,
			At:     now,
			By:     actor.ID,
		})
		return nil
	})
	if err != nil {
		s.metrics.ActivityRecorded("error")
		s.log.Error("record activity failed", zap.String("activity", req.Activity), zap.Error(err))
		return nil, apperror.Storage("Gagal menyimpan aktivitas tabung", err)
	}

	result.Message = "Aktivitas tabung berhasil dicatat"
	result.StokSummary = summarize(result.StokResults)
	s.metrics.ActivityRecorded(ResultCommitted)
	s.recordStockMetrics(result.StokResults)
	if result.StokSummary.Failed > 0 {
		s.log.Warn("activity committed with stock failures",
			zap.String("aktivitas_id", result.ID.String()),
			zap.Int("failed", result.StokSummary.Failed))
	}

	s.publish(EventActivityRecorded, map[string]interface{}{
		"id":           result.ID,
		"activity":     req.Activity,
		"dari":         req.Dari,
		"tujuan":       req.Tujuan,
		"status":       status,
		"total_tabung": result.TotalTabung,
	})
	if !refund {
		s.publish(EventStokUpdate, map[string]interface{}{
			"lokasi":      req.Tujuan,
			"status":      status,
			"kode_tabung": req.Tabung,
		})
	}
	return result, nil
}

func (s *ledgerService) RecordCustomerReturn(ctx context.Context, req *ReturnRequest, actor Actor) (*ReturnResult, error) {
	if req == nil {
		return nil, apperror.Validation("Request body is required")
	}
	req.Dari = strings.TrimSpace(req.Dari)
	req.Tujuan = strings.TrimSpace(req.Tujuan)
	for i := range req.Tabung {
		req.Tabung[i] = strings.TrimSpace(req.Tabung[i])
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.Tabung); err != nil {
		return nil, err
	}

	saldo, err := s.repos.Saldo.FindByKode(ctx, req.Dari)
	if err != nil {
		return nil, lookupError(err, "Customer tidak ditemukan")
	}

	status := req.Status
	if status == "" {
		status = model.StatusIsi
	}
	now := s.now()

	result := &ReturnResult{Status: ResultCommitted, TotalTabung: len(req.Tabung), SisaDeposit: saldo.Saldo}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		line := &model.LaporanPelanggan{
			KodePelanggan:      req.Dari,
			Tanggal:            dateOnly(now),
			Keterangan:         model.LaporanKembali,
			JumlahTabung:       len(req.Tabung),
			Harga:              decimal.Zero,
			TambahanDeposit:    decimal.Zero,
			PenguranganDeposit: decimal.Zero,
			SisaDeposit:        saldo.Saldo,
			Tabung:             append([]string(nil), req.Tabung...),
			FormatVersion:      model.TabungListVersion,
		}
		line.CreatedBy = actor.ID
		if err := s.repos.Laporan.Create(ctx, tx, line); err != nil {
			return err
		}
		result.ID = line.ID

		result.StokResults = s.writeStock(ctx, tx, stockTarget{
			Kodes:  req.Tabung,
			Status: status,
			Lokasi: req.Tujuan,
			At:     now,
			By:     actor.ID,
		})
		return nil
	})
	if err != nil {
		s.log.Error("record customer return failed", zap.String("kode_pelanggan", req.Dari), zap.Error(err))
		return nil, apperror.Storage("Gagal menyimpan pengembalian tabung", err)
	}

	result.Message = "Pengembalian tabung berhasil dicatat"
	result.StokSummary = summarize(result.StokResults)
	s.recordStockMetrics(result.StokResults)
	s.publish(EventStokUpdate, map[string]interface{}{
		"lokasi":      req.Tujuan,
		"status":      status,
		"kode_tabung": req.Tabung,
	})
	return result, nil
}

func (s *ledgerService) RecordVolume(ctx context.Context, req *VolumeRequest, actor Actor) (*VolumeResult, error) {
	if req == nil {
		return nil, apperror.Validation("Request body is required")
	}
	req.Lokasi = strings.TrimSpace(req.Lokasi)
	req.Nama = strings.TrimSpace(req.Nama)
	for i := range req.Tabung {
		req.Tabung[i].KodeTabung = strings.TrimSpace(req.Tabung[i].KodeTabung)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	kodes := make([]string, 0, len(req.Tabung))
	volumes := make(map[string]decimal.Decimal, len(req.Tabung))
	total := decimal.Zero
	for _, item := range req.Tabung {
		if _, dup := volumes[item.KodeTabung]; dup {
			return nil, apperror.Validation("Kode tabung duplikat").WithDetail("kode_tabung", item.KodeTabung)
		}
		if item.Volume.IsNegative() {
			return nil, apperror.Validation("Volume tidak boleh negatif").WithDetail("kode_tabung", item.KodeTabung)
		}
		v := item.Volume.Round(2)
		kodes = append(kodes, item.KodeTabung)
		volumes[item.KodeTabung] = v
		total = total.Add(v)
	}

	tanggal, err := parseDate(req.Tanggal)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, kodes); err != nil {
		return nil, err
	}

	now := s.now()
	if tanggal == nil {
		t := dateOnly(now)
		tanggal = &t
	}

	result := &VolumeResult{Status: ResultCommitted, TotalTabung: len(kodes), TotalVolume: total}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		snapshot := make([]model.TabungVolume, 0, len(kodes))
		for _, kode := range kodes {
			snapshot = append(snapshot, model.TabungVolume{KodeTabung: kode, Volume: volumes[kode]})
		}
		fill := &model.VolumeTabung{
			Tanggal:       *tanggal,
			Lokasi:        req.Lokasi,
			Tabung:        snapshot,
			FormatVersion: model.TabungListVersion,
			TotalVolume:   total,
			Nama:          req.Nama,
			Keterangan:    req.Keterangan,
			IDUser:        actor.ID,
		}
		fill.CreatedBy = actor.ID
		if err := s.repos.Volume.Create(ctx, tx, fill); err != nil {
			return err
		}
		result.ID = fill.ID

		result.StokResults = s.writeStock(ctx, tx, stockTarget{
			Kodes:   kodes,
			Status:  model.StatusIsi,
			Lokasi:  req.Lokasi,
			Volumes: volumes,
			At:      now,
			By:      actor.ID,
		})
		return nil
	})
	if err != nil {
		s.log.Error("record volume failed", zap.String("lokasi", req.Lokasi), zap.Error(err))
		return nil, apperror.Storage("Gagal menyimpan data volume", err)
	}

	result.Message = "Data volume berhasil disimpan"
	result.StokSummary = summarize(result.StokResults)
	s.recordStockMetrics(result.StokResults)
	s.publish(EventStokUpdate, map[string]interface{}{
		"lokasi":       req.Lokasi,
		"status":       model.StatusIsi,
		"kode_tabung":  kodes,
		"total_volume": total,
	})
	return result, nil
}

func (s *ledgerService) RecordAudit(ctx context.Context, req *AuditRequest, actor Actor) (*AuditResult, error) {
	if req == nil {
		return nil, apperror.Validation("Request body is required")
	}
	req.Lokasi = strings.TrimSpace(req.Lokasi)
	for i := range req.Tabung {
		req.Tabung[i].KodeTabung = strings.TrimSpace(req.Tabung[i].KodeTabung)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Tabung))
	for _, item := range req.Tabung {
		if _, dup := seen[item.KodeTabung]; dup {
			return nil, apperror.Validation("Kode tabung duplikat").WithDetail("kode_tabung", item.KodeTabung)
		}
		seen[item.KodeTabung] = struct{}{}
	}

	tanggal, err := parseDate(req.Tanggal)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if tanggal == nil {
		t := dateOnly(now)
		tanggal = &t
	}

	result := &AuditResult{Status: ResultCommitted, TotalTabung: len(req.Tabung), TidakDitemukan: []string{}}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		items := make([]model.AuditItem, 0, len(req.Tabung))
		for _, item := range req.Tabung {
			items = append(items, model.AuditItem{KodeTabung: item.KodeTabung, Status: item.Status})
		}
		audit := &model.Audit{
			Tanggal:       *tanggal,
			Lokasi:        req.Lokasi,
			Tabung:        items,
			FormatVersion: model.TabungListVersion,
			Keterangan:    req.Keterangan,
			IDUser:        actor.ID,
			NamaPetugas:   actor.Name,
		}
		audit.CreatedBy = actor.ID
		if err := s.repos.Audit.Create(ctx, tx, audit); err != nil {
			return err
		}
		result.ID = audit.ID

		for _, item := range req.Tabung {
			found, err := s.repos.Stok.Relocate(ctx, tx, item.KodeTabung, req.Lokasi, item.Status, now, actor.ID)
			if err != nil {
				return err
			}
			if found {
				result.Diperbarui++
			} else {
				result.TidakDitemukan = append(result.TidakDitemukan, item.KodeTabung)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("record audit failed", zap.String("lokasi", req.Lokasi), zap.Error(err))
		return nil, apperror.Storage("Gagal menyimpan audit", err)
	}

	result.Message = "Audit berhasil disimpan"
	if result.Diperbarui > 0 {
		s.publish(EventStokUpdate, map[string]interface{}{
			"lokasi":     req.Lokasi,
			"diperbarui": result.Diperbarui,
		})
	}
	return result, nil
}

func (s *ledgerService) SearchAudit(ctx context.Context, kode string) ([]model.Audit, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, apperror.Validation("kode_tabung is required")
	}
	audits, err := s.repos.Audit.SearchByKode(ctx, kode)
	if err != nil {
		return nil, apperror.Storage("Gagal mencari audit", err)
	}
	if audits == nil {
		audits = []model.Audit{}
	}
	return audits, nil
}
