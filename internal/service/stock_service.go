package service

import (
	"context"
	"strings"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/pkg/pagination"

	"github.com/shopspring/decimal"
)

var stokSort = pagination.Sort{
	Allowed:      []string{"kode_tabung", "status", "volume", "tanggal_update"},
	DefaultField: "kode_tabung",
	DefaultOrder: "ASC",
}

type StokListRequest struct {
	Lokasi    string
	Status    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type StokListResponse struct {
	Lokasi     string                   `json:"lokasi"`
	Data       []model.StokTabung       `json:"data"`
	Statistik  repository.LokasiSummary `json:"statistik"`
	Pagination pagination.Meta          `json:"pagination"`
	Filters    map[string]string        `json:"filters"`
}

type RingkasanResponse struct {
	PerLokasi []repository.LokasiSummary `json:"per_lokasi"`
	Total     repository.LokasiSummary   `json:"total"`
}

type CariTabungResponse struct {
	Stok   *model.StokTabung `json:"stok"`
	Tabung *model.Tabung     `json:"tabung"`
}

type CekTabungResponse struct {
	KodeTabung string            `json:"kode_tabung"`
	Terdaftar  bool              `json:"terdaftar"`
	Tabung     *model.Tabung     `json:"tabung,omitempty"`
	Stok       *model.StokTabung `json:"stok,omitempty"`
}

type GudangResponse struct {
	Gudang *model.Gudang            `json:"gudang"`
	Stok   repository.LokasiSummary `json:"stok"`
}

type StockService interface {
	ListByLokasi(ctx context.Context, req StokListRequest) (*StokListResponse, error)
	Ringkasan(ctx context.Context) (*RingkasanResponse, error)
	Cari(ctx context.Context, kode string) (*CariTabungResponse, error)
	CekTabung(ctx context.Context, kode string) (*CekTabungResponse, error)
	Gudang(ctx context.Context, kodeGudang string) (*GudangResponse, error)
}

type stockService struct {
	stokRepo   repository.StokRepository
	tabungRepo repository.TabungRepository
	gudangRepo repository.GudangRepository
}

func NewStockService(stokRepo repository.StokRepository, tabungRepo repository.TabungRepository, gudangRepo repository.GudangRepository) StockService {
	return &stockService{stokRepo: stokRepo, tabungRepo: tabungRepo, gudangRepo: gudangRepo}
}

// persentaseIsi = isi / total * 100, dua desimal.
func persentaseIsi(isi, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(isi).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2).
		InexactFloat64()
}

// summarizeLokasi mengisi persentase_isi per lokasi dan menjumlahkan semuanya.
func summarizeLokasi(rows []repository.LokasiSummary) repository.LokasiSummary {
	total := repository.LokasiSummary{Lokasi: "Semua", TotalVolume: decimal.Zero}
	for i := range rows {
		rows[i].PersentaseIsi = persentaseIsi(rows[i].Isi, rows[i].Total)
		total.Total += rows[i].Total
		total.Isi += rows[i].Isi
		total.Kosong += rows[i].Kosong
		total.Rusak += rows[i].Rusak
		total.TotalVolume = total.TotalVolume.Add(rows[i].TotalVolume)
	}
	total.PersentaseIsi = persentaseIsi(total.Isi, total.Total)
	return total
}

func (s *stockService) ListByLokasi(ctx context.Context, req StokListRequest) (*StokListResponse, error) {
	lokasi := strings.TrimSpace(req.Lokasi)
	if lokasi == "" {
		return nil, apperror.Validation("lokasi is required")
	}
	if req.Status != "" && !model.StatusTabung(req.Status).Valid() {
		return nil, apperror.Validation("status harus Kosong, Isi, atau Rusak").WithDetail("value", req.Status)
	}

	page := pagination.New(req.Page, req.Limit)
	order := stokSort.Clause(req.SortBy, req.SortOrder)
	sortBy, sortOrder, _ := strings.Cut(order, " ")
	rows, total, err := s.stokRepo.FindByLokasi(ctx, repository.StokQuery{
		Lokasi: lokasi,
		Status: req.Status,
		Search: strings.TrimSpace(req.Search),
		Order:  order,
		Page:   page,
	})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca stok tabung", err)
	}

	summary, err := s.stokRepo.SummaryByLokasi(ctx, lokasi)
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung statistik stok", err)
	}
	summary.PersentaseIsi = persentaseIsi(summary.Isi, summary.Total)

	return &StokListResponse{
		Lokasi:     lokasi,
		Data:       rows,
		Statistik:  *summary,
		Pagination: pagination.NewMeta(page, total),
		Filters: map[string]string{
			"status":     req.Status,
			"search":     req.Search,
			"sort_by":    sortBy,
			"sort_order": sortOrder,
		},
	}, nil
}

func (s *stockService) Ringkasan(ctx context.Context) (*RingkasanResponse, error) {
	rows, err := s.stokRepo.SummaryPerLokasi(ctx)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca ringkasan stok", err)
	}

	total := summarizeLokasi(rows)
	return &RingkasanResponse{PerLokasi: rows, Total: total}, nil
}

func (s *stockService) Cari(ctx context.Context, kode string) (*CariTabungResponse, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, apperror.Validation("kode_tabung is required")
	}

	stok, err := s.stokRepo.FindByKode(ctx, kode)
	if err != nil {
		return nil, lookupError(err, "Tabung tidak ditemukan di stok")
	}

	resp := &CariTabungResponse{Stok: stok}
	tabung, err := s.tabungRepo.FindByKode(ctx, kode)
	switch {
	case err == nil:
		resp.Tabung = tabung
	case !isNotFound(err):
		return nil, apperror.Storage("Gagal membaca data tabung", err)
	}
	return resp, nil
}

func (s *stockService) CekTabung(ctx context.Context, kode string) (*CekTabungResponse, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, apperror.Validation("kode_tabung is required")
	}

	resp := &CekTabungResponse{KodeTabung: kode}
	tabung, err := s.tabungRepo.FindByKode(ctx, kode)
	if err != nil {
		if isNotFound(err) {
			return resp, nil
		}
		return nil, apperror.Storage("Gagal membaca data tabung", err)
	}
	resp.Terdaftar = true
	resp.Tabung = tabung

	stok, err := s.stokRepo.FindByKode(ctx, kode)
	switch {
	case err == nil:
		resp.Stok = stok
	case !isNotFound(err):
		return nil, apperror.Storage("Gagal membaca stok tabung", err)
	}
	return resp, nil
}

func (s *stockService) Gudang(ctx context.Context, kodeGudang string) (*GudangResponse, error) {
	gudang, err := s.gudangRepo.FindByKode(ctx, strings.TrimSpace(kodeGudang))
	if err != nil {
		return nil, lookupError(err, "Gudang tidak ditemukan")
	}

	summary, err := s.stokRepo.SummaryByLokasi(ctx, gudang.KodeGudang)
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung stok gudang", err)
	}
	summary.PersentaseIsi = persentaseIsi(summary.Isi, summary.Total)
	return &GudangResponse{Gudang: gudang, Stok: *summary}, nil
}
