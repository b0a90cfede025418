package service

import (
	"context"
	"strings"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/pkg/pagination"

	"github.com/shopspring/decimal"
)

type SaldoResponse struct {
	KodePelanggan string          `json:"kode_pelanggan"`
	NamaPelanggan string          `json:"nama_pelanggan"`
	Saldo         decimal.Decimal `json:"saldo"`
}

type TransaksiListResponse struct {
	KodePelanggan string              `json:"kode_pelanggan"`
	Data          []model.Transaction `json:"data"`
	Pagination    pagination.Meta     `json:"pagination"`
}

type DetailTransaksiResponse struct {
	Transaction *model.Transaction     `json:"transaction"`
	Detail      *model.DetailTransaksi `json:"detail"`
}

var saldoSort = pagination.Sort{
	Allowed:      []string{"nama_pelanggan", "kode_pelanggan", "saldo", "saldo_created_at"},
	DefaultField: "nama_pelanggan",
	DefaultOrder: "ASC",
}

type SaldoListRequest struct {
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type SaldoListSummary struct {
	TotalPelanggan int64           `json:"total_pelanggan"`
	TotalSaldo     decimal.Decimal `json:"total_saldo"`
}

type SaldoListResponse struct {
	Data       []repository.SaldoRow `json:"data"`
	Pagination pagination.Meta       `json:"pagination"`
	Summary    SaldoListSummary      `json:"summary"`
	Filters    map[string]string     `json:"filters"`
}

type SaldoSearchResponse struct {
	Query      string                `json:"query"`
	TotalFound int                   `json:"total_found"`
	Data       []repository.SaldoRow `json:"data"`
}

type DetailTransaksiItem struct {
	repository.DetailTransaksiRow
	TabungCount int             `json:"tabung_count"`
	TotalHarga  decimal.Decimal `json:"total_harga"`
}

type DetailTransaksiListResponse struct {
	Data       []DetailTransaksiItem `json:"data"`
	Pagination pagination.Meta       `json:"pagination"`
	Filters    map[string]string     `json:"filters"`
}

type RiwayatItem struct {
	model.Transaction
	Waktu        string               `json:"waktu"`
	DetailTabung []model.TabungVolume `json:"detail_tabung"`
}

type RiwayatHarian struct {
	Tanggal        string          `json:"tanggal"`
	TotalTransaksi int             `json:"total_transaksi_hari"`
	TotalNominal   decimal.Decimal `json:"total_nominal_hari"`
	Transaksi      []RiwayatItem   `json:"transaksi"`
}

type RiwayatResponse struct {
	KodePelanggan  string          `json:"kode_pelanggan"`
	Periode        Periode         `json:"periode"`
	TotalTransaksi int             `json:"total_transaksi"`
	TotalNominal   decimal.Decimal `json:"total_nominal"`
	Data           []RiwayatHarian `json:"data"`
}

type CustomerService interface {
	Profile(ctx context.Context, kodePelanggan string) (*PelangganProfile, error)
	Saldo(ctx context.Context, kodePelanggan string) (*SaldoResponse, error)
	SaldoList(ctx context.Context, req SaldoListRequest) (*SaldoListResponse, error)
	SearchSaldo(ctx context.Context, query string, limit int) (*SaldoSearchResponse, error)
	Transaksi(ctx context.Context, kodePelanggan string, page, limit int) (*TransaksiListResponse, error)
	Riwayat(ctx context.Context, kodePelanggan string, tahun, bulan int) (*RiwayatResponse, error)
	DetailTransaksi(ctx context.Context, trxID string) (*DetailTransaksiResponse, error)
	ListDetailTransaksi(ctx context.Context, trxID string, page, limit int) (*DetailTransaksiListResponse, error)
}

type customerService struct {
	pelangganRepo   repository.PelangganRepository
	saldoRepo       repository.SaldoRepository
	transactionRepo repository.TransactionRepository
}

func NewCustomerService(pelangganRepo repository.PelangganRepository, saldoRepo repository.SaldoRepository, transactionRepo repository.TransactionRepository) CustomerService {
	return &customerService{
		pelangganRepo:   pelangganRepo,
		saldoRepo:       saldoRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *customerService) find(ctx context.Context, kode string) (*model.Pelanggan, error) {
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

func (s *customerService) Profile(ctx context.Context, kodePelanggan string) (*PelangganProfile, error) {
	p, err := s.find(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}
	profile := toPelangganProfile(p)
	return &profile, nil
}

// Saldo mengembalikan 0 bila pelanggan belum punya baris saldo.
func (s *customerService) Saldo(ctx context.Context, kodePelanggan string) (*SaldoResponse, error) {
	p, err := s.find(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}

	resp := &SaldoResponse{KodePelanggan: p.KodePelanggan, NamaPelanggan: p.NamaPelanggan, Saldo: decimal.Zero}
	saldo, err := s.saldoRepo.FindByKode(ctx, p.KodePelanggan)
	switch {
	case err == nil:
		resp.Saldo = saldo.Saldo
	case !isNotFound(err):
		return nil, apperror.Storage("Gagal membaca saldo", err)
	}
	return resp, nil
}

func (s *customerService) Transaksi(ctx context.Context, kodePelanggan string, page, limit int) (*TransaksiListResponse, error) {
	p, err := s.find(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}

	params := pagination.New(page, limit)
	rows, total, err := s.transactionRepo.ListByPelanggan(ctx, p.KodePelanggan, params)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca transaksi", err)
	}
	return &TransaksiListResponse{
		KodePelanggan: p.KodePelanggan,
		Data:          rows,
		Pagination:    pagination.NewMeta(params, total),
	}, nil
}

func (s *customerService) DetailTransaksi(ctx context.Context, trxID string) (*DetailTransaksiResponse, error) {
	trxID = strings.TrimSpace(trxID)
	if trxID == "" {
		return nil, apperror.Validation("trx_id is required")
	}

	trx, err := s.transactionRepo.FindByTrxID(ctx, trxID)
	if err != nil {
		return nil, lookupError(err, "Transaksi tidak ditemukan")
	}
	detail, err := s.transactionRepo.FindDetailByTrxID(ctx, trxID)
	if err != nil {
		return nil, lookupError(err, "Detail transaksi tidak ditemukan")
	}
	return &DetailTransaksiResponse{Transaction: trx, Detail: detail}, nil
}

func (s *customerService) SaldoList(ctx context.Context, req SaldoListRequest) (*SaldoListResponse, error) {
	page := pagination.New(req.Page, req.Limit)
	order := saldoSort.Clause(req.SortBy, req.SortOrder)

	rows, total, err := s.saldoRepo.List(ctx, repository.SaldoQuery{Order: order, Page: page})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca daftar saldo", err)
	}
	totalSaldo, err := s.saldoRepo.Total(ctx)
	if err != nil {
		return nil, apperror.Storage("Gagal menghitung total saldo", err)
	}

	sortBy, sortOrder, _ := strings.Cut(order, " ")
	return &SaldoListResponse{
		Data:       rows,
		Pagination: pagination.NewMeta(page, total),
		Summary:    SaldoListSummary{TotalPelanggan: total, TotalSaldo: totalSaldo.Round(2)},
		Filters:    map[string]string{"sort_by": sortBy, "sort_order": sortOrder},
	}, nil
}

func (s *customerService) SearchSaldo(ctx context.Context, query string, limit int) (*SaldoSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Search query is required")
	}

	rows, err := s.saldoRepo.Search(ctx, query, pagination.New(1, limit).Limit)
	if err != nil {
		return nil, apperror.Storage("Gagal mencari saldo", err)
	}
	return &SaldoSearchResponse{Query: query, TotalFound: len(rows), Data: rows}, nil
}

// Riwayat: transaksi pelanggan satu bulan (WIB), dikelompokkan per tanggal terbaru dulu.
func (s *customerService) Riwayat(ctx context.Context, kodePelanggan string, tahun, bulan int) (*RiwayatResponse, error) {
	if err := validPeriode(tahun, bulan); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, kodePelanggan)
	if err != nil {
		return nil, err
	}

	dari := time.Date(tahun, time.Month(bulan), 1, 0, 0, 0, 0, jakartaLoc)
	rows, err := s.transactionRepo.ListByPelangganRange(ctx, p.KodePelanggan, dari, dari.AddDate(0, 1, 0))
	if err != nil {
		return nil, apperror.Storage("Gagal membaca riwayat transaksi", err)
	}

	trxIDs := make([]string, 0, len(rows))
	for _, t := range rows {
		trxIDs = append(trxIDs, t.TrxID)
	}
	details, err := s.transactionRepo.FindDetailsByTrxIDs(ctx, trxIDs)
	if err != nil {
		return nil, apperror.Storage("Gagal membaca detail transaksi", err)
	}
	tabungByTrx := make(map[string][]model.TabungVolume, len(details))
	for _, d := range details {
		tabungByTrx[d.TrxID] = d.Tabung
	}

	resp := &RiwayatResponse{
		KodePelanggan: p.KodePelanggan,
		Periode:       Periode{Tahun: tahun, Bulan: bulan, NamaBulan: namaBulan[bulan-1]},
		TotalNominal:  decimal.Zero,
		Data:          []RiwayatHarian{},
	}
	for _, t := range rows {
		local := t.CreatedAt.In(jakartaLoc)
		item := RiwayatItem{
			Transaction:  t,
			Waktu:        local.Format("15:04:05"),
			DetailTabung: tabungByTrx[t.TrxID],
		}
		if item.DetailTabung == nil {
			item.DetailTabung = []model.TabungVolume{}
		}

		key := local.Format(DateLayout)
		n := len(resp.Data)
		if n == 0 || resp.Data[n-1].Tanggal != key {
			resp.Data = append(resp.Data, RiwayatHarian{Tanggal: key, TotalNominal: decimal.Zero})
			n++
		}
		day := &resp.Data[n-1]
		day.Transaksi = append(day.Transaksi, item)
		day.TotalTransaksi++
		day.TotalNominal = day.TotalNominal.Add(t.TotalHarga)

		resp.TotalTransaksi++
		resp.TotalNominal = resp.TotalNominal.Add(t.TotalHarga)
	}
	return resp, nil
}

// ListDetailTransaksi: total_harga dihitung ulang dari snapshot volume x harga pelanggan saat ini.
func (s *customerService) ListDetailTransaksi(ctx context.Context, trxID string, page, limit int) (*DetailTransaksiListResponse, error) {
	trxID = strings.TrimSpace(trxID)
	params := pagination.New(page, limit)

	rows, total, err := s.transactionRepo.ListDetail(ctx, repository.DetailTransaksiQuery{TrxID: trxID, Page: params})
	if err != nil {
		return nil, apperror.Storage("Gagal membaca detail transaksi", err)
	}

	data := make([]DetailTransaksiItem, 0, len(rows))
	for _, row := range rows {
		kodes := make([]string, 0, len(row.Tabung))
		volumes := make(map[string]decimal.Decimal, len(row.Tabung))
		for _, tv := range row.Tabung {
			kodes = append(kodes, tv.KodeTabung)
			volumes[tv.KodeTabung] = tv.Volume
		}
		_, totalHarga := ComputeBilling(row.HargaTabung, kodes, volumes)
		data = append(data, DetailTransaksiItem{
			DetailTransaksiRow: row,
			TabungCount:        len(row.Tabung),
			TotalHarga:         totalHarga,
		})
	}

	return &DetailTransaksiListResponse{
		Data:       data,
		Pagination: pagination.NewMeta(params, total),
		Filters:    map[string]string{"trx_id": trxID},
	}, nil
}
