package service

import (
	"context"
	"strings"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var aktivitasSort = pagination.Sort{
	Allowed:      []string{"waktu", "created_at", "nama_aktivitas", "total_tabung", "dari", "tujuan", "status"},
	DefaultField: "waktu",
	DefaultOrder: "DESC",
}

var volumeSort = pagination.Sort{
	Allowed:      []string{"tanggal", "created_at", "lokasi", "total_volume", "nama"},
	DefaultField: "created_at",
	DefaultOrder: "DESC",
}

// HistoryRequest adalah parameter query riwayat aktivitas/volume.
type HistoryRequest struct {
	Search        string
	Status        string
	Activity      string
	KodeTabung    string
	Lokasi        string
	TanggalDari   string
	TanggalSampai string
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

type AktivitasListResponse struct {
	Data       []model.AktivitasTabung `json:"data"`
	Pagination pagination.Meta         `json:"pagination"`
	Filters    map[string]string       `json:"filters"`
}

type VolumeListResponse struct {
	Data       []model.VolumeTabung `json:"data"`
	Pagination pagination.Meta      `json:"pagination"`
	Filters    map[string]string    `json:"filters"`
}

type VolumeDetailItem struct {
	KodeTabung string            `json:"kode_tabung"`
	Volume     decimal.Decimal   `json:"volume"`
	Tabung     *model.Tabung     `json:"tabung"`
	Stok       *model.StokTabung `json:"stok"`
}

type VolumeDetailResponse struct {
	Volume        *model.VolumeTabung `json:"volume"`
	TabungDetails []VolumeDetailItem  `json:"tabung_details"`
}

type HistoryService interface {
	ListAktivitas(ctx context.Context, req HistoryRequest) (*AktivitasListResponse, error)
	AktivitasDetail(ctx context.Context, id string) (*model.AktivitasTabung, error)
	AktivitasStats(ctx context.Context) (*repository.AktivitasStats, error)
	ExportAktivitas(ctx context.Context, req HistoryRequest) ([]model.AktivitasTabung, error)

	ListVolume(ctx context.Context, req HistoryRequest) (*VolumeListResponse, error)
	VolumeDetail(ctx context.Context, id string) (*VolumeDetailResponse, error)
	VolumeStats(ctx context.Context, req HistoryRequest) (*repository.VolumeStats, error)
	ExportVolume(ctx context.Context, req HistoryRequest) ([]model.VolumeTabung, error)
}

type historyService struct {
	aktivitasRepo repository.AktivitasRepository
	volumeRepo    repository.VolumeRepository
	tabungRepo    repository.TabungRepository
	stokRepo      repository.StokRepository
	now           func() time.Time
}

func NewHistoryService(aktivitasRepo repository.AktivitasRepository, volumeRepo repository.VolumeRepository, tabungRepo repository.TabungRepository, stokRepo repository.StokRepository) HistoryService {
	return &historyService{
		aktivitasRepo: aktivitasRepo,
		volumeRepo:    volumeRepo,
		tabungRepo:    tabungRepo,
		stokRepo:      stokRepo,
		now:           time.Now,
	}
}

func parseRange(dariStr, sampaiStr string) (*time.Time, *time.Time, error) {
	dari, err := parseDate(dariStr)
	if err != nil {
		return nil, nil, err
	}
	sampai, err := parseDate(sampaiStr)
	if err != nil {
		return nil, nil, err
	}
	if dari != nil && sampai != nil && sampai.Before(*dari) {
		return nil, nil, apperror.Validation("tanggal_sampai tidak boleh sebelum tanggal_dari")
	}
	return dari, sampai, nil
}

func (s *historyService) aktivitasFilter(req HistoryRequest) (repository.AktivitasFilter, error) {
	dari, sampai, err := parseRange(req.TanggalDari, req.TanggalSampai)
	if err != nil {
		return repository.AktivitasFilter{}, err
	}
	if req.Status != "" && !model.StatusTabung(req.Status).Valid() {
		return repository.AktivitasFilter{}, apperror.Validation("status harus Kosong, Isi, atau Rusak")
	}

	f := repository.AktivitasFilter{
		Search:     strings.TrimSpace(req.Search),
		Status:     req.Status,
		Aktivitas:  strings.TrimSpace(req.Activity),
		KodeTabung: strings.TrimSpace(req.KodeTabung),
	}
	// waktu disimpan sebagai timestamp; batas tanggal dihitung dalam WIB
	if dari != nil {
		t := time.Date(dari.Year(), dari.Month(), dari.Day(), 0, 0, 0, 0, jakartaLoc)
		f.Dari = &t
	}
	if sampai != nil {
		t := time.Date(sampai.Year(), sampai.Month(), sampai.Day(), 0, 0, 0, 0, jakartaLoc).AddDate(0, 0, 1)
		f.Sampai = &t
	}
	return f, nil
}

func (s *historyService) ListAktivitas(ctx context.Context, req HistoryRequest) (*AktivitasListResponse, error) {
	f, err := s.aktivitasFilter(req)
	if err != nil {
		return nil, err
	}

	page := pagination.New(req.Page, req.Limit)
	order := aktivitasSort.Clause(req.SortBy, req.SortOrder)
	rows, total, err := s.aktivitasRepo.List(ctx, repository.AktivitasQuery{AktivitasFilter: f, Order: order, Page: page})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca riwayat aktivitas", err)
	}

	sortBy, sortOrder, _ := strings.Cut(order, " ")
	return &AktivitasListResponse{
		Data:       rows,
		Pagination: pagination.NewMeta(page, total),
		Filters: map[string]string{
			"search":         req.Search,
			"status":         req.Status,
			"activity":       req.Activity,
			"kode_tabung":    req.KodeTabung,
			"tanggal_dari":   req.TanggalDari,
			"tanggal_sampai": req.TanggalSampai,
			"sort_by":        sortBy,
			"sort_order":     sortOrder,
		},
	}, nil
}

func (s *historyService) AktivitasDetail(ctx context.Context, id string) (*model.AktivitasTabung, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.Validation("ID aktivitas tidak valid")
	}
	aktivitas, err := s.aktivitasRepo.FindByID(ctx, parsed)
	if err != nil {
		return nil, lookupError(err, "Aktivitas tidak ditemukan")
	}
	return aktivitas, nil
}

func (s *historyService) AktivitasStats(ctx context.Context) (*repository.AktivitasStats, error) {
	stats, err := s.aktivitasRepo.Stats(ctx, s.now().In(jakartaLoc).Format(TanggalLayout))
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung statistik aktivitas", err)
	}
	return stats, nil
}

func (s *historyService) ExportAktivitas(ctx context.Context, req HistoryRequest) ([]model.AktivitasTabung, error) {
	f, err := s.aktivitasFilter(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.aktivitasRepo.ListAll(ctx, f, aktivitasSort.Clause(req.SortBy, req.SortOrder))
	if err != nil {
		return nil, apperror.Storage("Gagal export aktivitas", err)
	}
	return rows, nil
}

func volumeFilter(req HistoryRequest) (repository.VolumeFilter, error) {
	dari, sampai, err := parseRange(req.TanggalDari, req.TanggalSampai)
	if err != nil {
		return repository.VolumeFilter{}, err
	}
	return repository.VolumeFilter{
		Search: strings.TrimSpace(req.Search),
		Lokasi: strings.TrimSpace(req.Lokasi),
		Dari:   dari,
		Sampai: sampai,
	}, nil
}

func (s *historyService) ListVolume(ctx context.Context, req HistoryRequest) (*VolumeListResponse, error) {
	f, err := volumeFilter(req)
	if err != nil {
		return nil, err
	}

	page := pagination.New(req.Page, req.Limit)
	order := volumeSort.Clause(req.SortBy, req.SortOrder)
	rows, total, err := s.volumeRepo.List(ctx, repository.VolumeQuery{VolumeFilter: f, Order: order, Page: page})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca riwayat volume", err)
	}

	sortBy, sortOrder, _ := strings.Cut(order, " ")
	return &VolumeListResponse{
		Data:       rows,
		Pagination: pagination.NewMeta(page, total),
		Filters: map[string]string{
			"search":         req.Search,
			"lokasi":         req.Lokasi,
			"tanggal_dari":   req.TanggalDari,
			"tanggal_sampai": req.TanggalSampai,
			"sort_by":        sortBy,
			"sort_order":     sortOrder,
		},
	}, nil
}

// VolumeDetail menggabungkan catatan volume dengan master tabung dan stok terkini.
func (s *historyService) VolumeDetail(ctx context.Context, id string) (*VolumeDetailResponse, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.Validation("ID volume tidak valid")
	}
	v, err := s.volumeRepo.FindByID(ctx, parsed)
	if err != nil {
		return nil, lookupError(err, "Data volume tidak ditemukan")
	}

	kodes := make([]string, 0, len(v.Tabung))
	for _, item := range v.Tabung {
		kodes = append(kodes, item.KodeTabung)
	}

	tabungs, err := s.tabungRepo.FindByKodes(ctx, kodes)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca data tabung", err)
	}
	stoks, err := s.stokRepo.FindByKodes(ctx, kodes)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca stok tabung", err)
	}

	tabungByKode := make(map[string]*model.Tabung, len(tabungs))
	for i := range tabungs {
		tabungByKode[tabungs[i].KodeTabung] = &tabungs[i]
	}
	stokByKode := make(map[string]*model.StokTabung, len(stoks))
	for i := range stoks {
		stokByKode[stoks[i].KodeTabung] = &stoks[i]
	}

	details := make([]VolumeDetailItem, 0, len(v.Tabung))
	for _, item := range v.Tabung {
		details = append(details, VolumeDetailItem{
			KodeTabung: item.KodeTabung,
			Volume:     item.Volume,
			Tabung:     tabungByKode[item.KodeTabung],
			Stok:       stokByKode[item.KodeTabung],
		})
	}
	return &VolumeDetailResponse{Volume: v, TabungDetails: details}, nil
}

func (s *historyService) VolumeStats(ctx context.Context, req HistoryRequest) (*repository.VolumeStats, error) {
	f, err := volumeFilter(req)
	if err != nil {
		return nil, err
	}
	stats, err := s.volumeRepo.Stats(ctx, f)
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung statistik volume", err)
	}
	return stats, nil
}

func (s *historyService) ExportVolume(ctx context.Context, req HistoryRequest) ([]model.VolumeTabung, error) {
	f, err := volumeFilter(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.volumeRepo.ListAll(ctx, f, volumeSort.Clause(req.SortBy, req.SortOrder))
	if err != nil {
		return nil, apperror.Storage("Gagal export volume", err)
	}
	return rows, nil
}
