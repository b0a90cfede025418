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

const (
	minTahun       = 2020
	maxTahun       = 2030
	defaultPeriode = 30
	maxPeriode     = 365
	trendDays      = 7
)

var namaBulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var laporanSort = pagination.Sort{
	Allowed:      []string{"tanggal", "harga", "sisa_deposit", "jumlah_tabung", "created_at"},
	DefaultField: "created_at",
	DefaultOrder: "DESC",
}

// laporan semua pelanggan juga boleh diurut per kode_pelanggan
var laporanSemuaSort = pagination.Sort{
	Allowed:      []string{"tanggal", "kode_pelanggan", "harga", "sisa_deposit", "jumlah_tabung", "created_at"},
	DefaultField: "created_at",
	DefaultOrder: "DESC",
}

type LaporanListRequest struct {
	KodePelanggan string
	// Search hanya dipakai ListAll
	Search        string
	StartDate     string
	EndDate       string
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

type LaporanListResponse struct {
	KodePelanggan string                   `json:"kode_pelanggan"`
	NamaPelanggan string                   `json:"nama_pelanggan"`
	Saldo         decimal.Decimal          `json:"saldo"`
	Data          []model.LaporanPelanggan `json:"data"`
	Pagination    pagination.Meta          `json:"pagination"`
	Filters       map[string]string        `json:"filters"`
}

type LaporanRow struct {
	model.LaporanPelanggan
	NamaPelanggan string `json:"nama_pelanggan"`
}

type LaporanSemuaResponse struct {
	Data       []LaporanRow      `json:"data"`
	Pagination pagination.Meta   `json:"pagination"`
	Filters    map[string]string `json:"filters"`
}

type Periode struct {
	Tahun     int    `json:"tahun"`
	Bulan     int    `json:"bulan"`
	NamaBulan string `json:"nama_bulan"`
}

type LaporanHarian struct {
	Tanggal string                   `json:"tanggal"`
	Items   []model.LaporanPelanggan `json:"items"`
}

type LaporanSummary struct {
	TotalTransaksi          int              `json:"total_transaksi"`
	TotalTabung             int              `json:"total_tabung"`
	TotalHarga              decimal.Decimal  `json:"total_harga"`
	TotalTambahanDeposit    decimal.Decimal  `json:"total_tambahan_deposit"`
	TotalPenguranganDeposit decimal.Decimal  `json:"total_pengurangan_deposit"`
	SisaDepositTerakhir     *decimal.Decimal `json:"sisa_deposit_terakhir"`
}

type LaporanBulananResponse struct {
	KodePelanggan string          `json:"kode_pelanggan"`
	NamaPelanggan string          `json:"nama_pelanggan"`
	Periode       Periode         `json:"periode"`
	Data          []LaporanHarian `json:"data"`
	Summary       LaporanSummary  `json:"summary"`
}

type LaporanStatistikResponse struct {
	KodePelanggan string                      `json:"kode_pelanggan"`
	Periode       int                         `json:"periode"`
	Saldo         decimal.Decimal             `json:"saldo"`
	PerKeterangan []repository.KeteranganStat `json:"per_keterangan"`
	Trend         []repository.DailyStat      `json:"trend_7_hari"`
}

type ReportService interface {
	List(ctx context.Context, req LaporanListRequest) (*LaporanListResponse, error)
	ListAll(ctx context.Context, req LaporanListRequest) (*LaporanSemuaResponse, error)
	Monthly(ctx context.Context, kodePelanggan string, tahun, bulan int) (*LaporanBulananResponse, error)
	Detail(ctx context.Context, id string) (*model.LaporanPelanggan, error)
	Statistik(ctx context.Context, kodePelanggan string, periode int) (*LaporanStatistikResponse, error)
}

type reportService struct {
	laporanRepo   repository.LaporanRepository
	pelangganRepo repository.PelangganRepository
	saldoRepo     repository.SaldoRepository
	now           func() time.Time
}

func NewReportService(laporanRepo repository.LaporanRepository, pelangganRepo repository.PelangganRepository, saldoRepo repository.SaldoRepository) ReportService {
	return &reportService{
		laporanRepo:   laporanRepo,
		pelangganRepo: pelangganRepo,
		saldoRepo:     saldoRepo,
		now:           time.Now,
	}
}

func (s *reportService) pelanggan(ctx context.Context, kode string) (*model.Pelanggan, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, apperror.Validation("kode_pelanggan is required")
	}
	p, err := s.pelangganRepo.FindByKode(ctx, kode)
	if err != nil {
		return nil, lookupError(err, "Customer tidak ditemukan")
	}
	return p, nil
}

// currentSaldo: 0 bila baris saldo belum ada.
func (s *reportService) currentSaldo(ctx context.Context, kode string) (decimal.Decimal, error) {
	saldo, err := s.saldoRepo.FindByKode(ctx, kode)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperror.Storage("Gagal membaca saldo", err)
	}
	return saldo.Saldo, nil
}

func (s *reportService) List(ctx context.Context, req LaporanListRequest) (*LaporanListResponse, error) {
	p, err := s.pelanggan(ctx, req.KodePelanggan)
	if err != nil {
		return nil, err
	}

	dari, sampai, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	page := pagination.New(req.Page, req.Limit)
	order := laporanSort.Clause(req.SortBy, req.SortOrder)
	rows, total, err := s.laporanRepo.List(ctx, repository.LaporanQuery{
		KodePelanggan: p.KodePelanggan,
		Dari:          dari,
		Sampai:        sampai,
		Order:         order,
		Page:          page,
	})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca laporan pelanggan", err)
	}

	saldo, err := s.currentSaldo(ctx, p.KodePelanggan)
	if err != nil {
		return nil, err
	}

	sortBy, sortOrder, _ := strings.Cut(order, " ")
	return &LaporanListResponse{
		KodePelanggan: p.KodePelanggan,
		NamaPelanggan: p.NamaPelanggan,
		Saldo:         saldo,
		Data:          rows,
		Pagination:    pagination.NewMeta(page, total),
		Filters: map[string]string{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"sort_by":    sortBy,
			"sort_order": sortOrder,
		},
	}, nil
}

// ListAll: laporan seluruh pelanggan untuk staf, dengan pencarian kode/nama/keterangan.
func (s *reportService) ListAll(ctx context.Context, req LaporanListRequest) (*LaporanSemuaResponse, error) {
	dari, sampai, err := dateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	search := strings.TrimSpace(req.Search)
	page := pagination.New(req.Page, req.Limit)
	order := laporanSemuaSort.Clause(req.SortBy, req.SortOrder)
	rows, total, err := s.laporanRepo.List(ctx, repository.LaporanQuery{
		Search: search,
		Dari:   dari,
		Sampai: sampai,
		Order:  order,
		Page:   page,
	})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca laporan pelanggan", err)
	}

	kodes := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.KodePelanggan] {
			seen[row.KodePelanggan] = true
			kodes = append(kodes, row.KodePelanggan)
		}
	}
	nama, err := s.pelangganRepo.NamaByKodes(ctx, kodes)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca data pelanggan", err)
	}

	data := make([]LaporanRow, 0, len(rows))
	for _, row := range rows {
		data = append(data, LaporanRow{LaporanPelanggan: row, NamaPelanggan: nama[row.KodePelanggan]})
	}

	sortBy, sortOrder, _ := strings.Cut(order, " ")
	return &LaporanSemuaResponse{
		Data:       data,
		Pagination: pagination.NewMeta(page, total),
		Filters: map[string]string{
			"search":     search,
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"sort_by":    sortBy,
			"sort_order": sortOrder,
		},
	}, nil
}

func dateRange(start, end string) (*time.Time, *time.Time, error) {
	dari, err := parseDate(start)
	if err != nil {
		return nil, nil, err
	}
	sampai, err := parseDate(end)
	if err != nil {
		return nil, nil, err
	}
	if dari != nil && sampai != nil && sampai.Before(*dari) {
		return nil, nil, apperror.Validation("end_date tidak boleh sebelum start_date")
	}
	return dari, sampai, nil
}

// validPeriode memeriksa tahun 2020..2030 dan bulan 1..12.
func validPeriode(tahun, bulan int) error {
	if tahun < minTahun || tahun > maxTahun {
		return apperror.Validation("Tahun harus antara 2020 dan 2030").WithDetail("tahun", tahun)
	}
	if bulan < 1 || bulan > 12 {
		return apperror.Validation("Bulan harus antara 1 dan 12").WithDetail("bulan", bulan)
	}
	return nil
}

func (s *reportService) Monthly(ctx context.Context, kodePelanggan string, tahun, bulan int) (*LaporanBulananResponse, error) {
	if err := validPeriode(tahun, bulan); err != nil {
		return nil, err
	}

	p, err := s.pelanggan(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}

	dari := time.Date(tahun, time.Month(bulan), 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.laporanRepo.ListRange(ctx, p.KodePelanggan, dari, dari.AddDate(0, 1, 0))
	if err != nil {
		return nil, apperror.Storage("Gagal membaca laporan bulanan", err)
	}

	return &LaporanBulananResponse{
		KodePelanggan: p.KodePelanggan,
		NamaPelanggan: p.NamaPelanggan,
		Periode:       Periode{Tahun: tahun, Bulan: bulan, NamaBulan: namaBulan[bulan-1]},
		Data:          groupByTanggal(rows),
		Summary:       summarizeLaporan(rows),
	}, nil
}

// groupByTanggal mengelompokkan baris (sudah urut tanggal DESC) per tanggal.
func groupByTanggal(rows []model.LaporanPelanggan) []LaporanHarian {
	groups := []LaporanHarian{}
	for _, row := range rows {
		key := row.Tanggal.Format(DateLayout)
		if n := len(groups); n > 0 && groups[n-1].Tanggal == key {
			groups[n-1].Items = append(groups[n-1].Items, row)
			continue
		}
		groups = append(groups, LaporanHarian{Tanggal: key, Items: []model.LaporanPelanggan{row}})
	}
	return groups
}

func summarizeLaporan(rows []model.LaporanPelanggan) LaporanSummary {
	summary := LaporanSummary{
		TotalTransaksi:          len(rows),
		TotalHarga:              decimal.Zero,
		TotalTambahanDeposit:    decimal.Zero,
		TotalPenguranganDeposit: decimal.Zero,
	}
	for _, row := range rows {
		summary.TotalTabung += row.JumlahTabung
		summary.TotalHarga = summary.TotalHarga.Add(row.Harga)
		summary.TotalTambahanDeposit = summary.TotalTambahanDeposit.Add(row.TambahanDeposit)
		summary.TotalPenguranganDeposit = summary.TotalPenguranganDeposit.Add(row.PenguranganDeposit)
	}
	if len(rows) > 0 {
		last := rows[0].SisaDeposit
		summary.SisaDepositTerakhir = &last
	}
	return summary
}

func (s *reportService) Detail(ctx context.Context, id string) (*model.LaporanPelanggan, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperror.Validation("ID laporan tidak valid")
	}
	line, err := s.laporanRepo.FindByID(ctx, parsed)
	if err != nil {
		return nil, lookupError(err, "Laporan tidak ditemukan")
	}
	return line, nil
}

func (s *reportService) Statistik(ctx context.Context, kodePelanggan string, periode int) (*LaporanStatistikResponse, error) {
	if periode < 1 {
		periode = defaultPeriode
	}
	if periode > maxPeriode {
		periode = maxPeriode
	}

	p, err := s.pelanggan(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	perKeterangan, err := s.laporanRepo.StatsByKeterangan(ctx, p.KodePelanggan, today.AddDate(0, 0, -periode))
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung statistik laporan", err)
	}

	trendStart := today.AddDate(0, 0, -(trendDays - 1))
	daily, err := s.laporanRepo.DailyTrend(ctx, p.KodePelanggan, trendStart)
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung tren laporan", err)
	}

	saldo, err := s.currentSaldo(ctx, p.KodePelanggan)
	if err != nil {
		return nil, err
	}

	return &LaporanStatistikResponse{
		KodePelanggan: p.KodePelanggan,
		Periode:       periode,
		Saldo:         saldo,
		PerKeterangan: perKeterangan,
		Trend:         fillTrend(trendStart, daily),
	}, nil
}

// fillTrend mengisi hari tanpa transaksi dengan nol.
func fillTrend(start time.Time, daily []repository.DailyStat) []repository.DailyStat {
	byDay := make(map[string]repository.DailyStat, len(daily))
	for _, d := range daily {
		byDay[d.Tanggal.Format(DateLayout)] = d
	}

	trend := make([]repository.DailyStat, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := start.AddDate(0, 0, i)
		if d, ok := byDay[day.Format(DateLayout)]; ok {
			d.Tanggal = day
			trend = append(trend, d)
			continue
		}
		trend = append(trend, repository.DailyStat{Tanggal: day, TotalHarga: decimal.Zero})
	}
	return trend
}
