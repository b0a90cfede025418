package repository

import (
	"context"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LaporanQuery struct {
	KodePelanggan string
	// Search mencari di kode/nama pelanggan dan keterangan (laporan semua pelanggan).
	Search string
	Dari   *time.Time
	Sampai *time.Time
	Order  string
	Page   pagination.Params
}

type KeteranganStat struct {
	Keterangan              string          `json:"keterangan"`
	JumlahTransaksi         int64           `json:"jumlah_transaksi"`
	TotalTabung             int64           `json:"total_tabung"`
	TotalHarga              decimal.Decimal `json:"total_harga"`
	TotalTambahanDeposit    decimal.Decimal `json:"total_tambahan_deposit"`
	TotalPenguranganDeposit decimal.Decimal `json:"total_pengurangan_deposit"`
}

type DailyStat struct {
	Tanggal         time.Time       `json:"tanggal"`
	JumlahTransaksi int64           `json:"jumlah_transaksi"`
	TotalHarga      decimal.Decimal `json:"total_harga"`
}

type LaporanRepository interface {
	Create(ctx context.Context, tx *gorm.DB, line *model.LaporanPelanggan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LaporanPelanggan, error)
	List(ctx context.Context, q LaporanQuery) ([]model.LaporanPelanggan, int64, error)
	// ListRange returns lines with dari <= tanggal < sampai, newest first.
	ListRange(ctx context.Context, kodePelanggan string, dari, sampai time.Time) ([]model.LaporanPelanggan, error)
	StatsByKeterangan(ctx context.Context, kodePelanggan string, since time.Time) ([]KeteranganStat, error)
	DailyTrend(ctx context.Context, kodePelanggan string, since time.Time) ([]DailyStat, error)
}

type laporanRepo struct {
	db *gorm.DB
}

func NewLaporanRepo(db *gorm.DB) LaporanRepository {
	return &laporanRepo{db}
}

func (r *laporanRepo) Create(ctx context.Context, tx *gorm.DB, line *model.LaporanPelanggan) error {
	return conn(ctx, r.db, tx).Create(line).Error
}

func (r *laporanRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LaporanPelanggan, error) {
	var line model.LaporanPelanggan
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *laporanRepo) List(ctx context.Context, q LaporanQuery) ([]model.LaporanPelanggan, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.LaporanPelanggan{})
	if q.KodePelanggan != "" {
		base = base.Where("kode_pelanggan = ?", q.KodePelanggan)
	}
	if q.Search != "" {
		like := containsPattern(q.Search)
		byNama := r.db.Model(&model.Pelanggan{}).Select("kode_pelanggan").Where("LOWER(nama_pelanggan) LIKE ?", like)
		base = base.Where("(LOWER(kode_pelanggan) LIKE ? OR LOWER(keterangan) LIKE ? OR kode_pelanggan IN (?))", like, like, byNama)
	}
	if q.Dari != nil {
		base = base.Where("tanggal >= ?", *q.Dari)
	}
	if q.Sampai != nil {
		base = base.Where("tanggal <= ?", *q.Sampai)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.LaporanPelanggan{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Order(q.Order).Limit(q.Page.Limit).Offset(q.Page.Offset()).Find(&rows).Error
	return rows, total, err
}

func (r *laporanRepo) ListRange(ctx context.Context, kodePelanggan string, dari, sampai time.Time) ([]model.LaporanPelanggan, error) {
	rows := []model.LaporanPelanggan{}
	err := r.db.WithContext(ctx).
		Where("kode_pelanggan = ? AND tanggal >= ? AND tanggal < ?", kodePelanggan, dari, sampai).
		Order("tanggal DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *laporanRepo) StatsByKeterangan(ctx context.Context, kodePelanggan string, since time.Time) ([]KeteranganStat, error) {
	rows := []KeteranganStat{}
	err := r.db.WithContext(ctx).Model(&model.LaporanPelanggan{}).
		Select(`keterangan,
			COUNT(*) AS jumlah_transaksi,
			COALESCE(SUM(jumlah_tabung), 0) AS total_tabung,
			COALESCE(SUM(harga), 0) AS total_harga,
			COALESCE(SUM(tambahan_deposit), 0) AS total_tambahan_deposit,
			COALESCE(SUM(pengurangan_deposit), 0) AS total_pengurangan_deposit`).
		Where("kode_pelanggan = ? AND tanggal >= ?", kodePelanggan, since).
		Group("keterangan").
		Order("keterangan ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *laporanRepo) DailyTrend(ctx context.Context, kodePelanggan string, since time.Time) ([]DailyStat, error) {
	rows := []DailyStat{}
	err := r.db.WithContext(ctx).Model(&model.LaporanPelanggan{}).
		Select("tanggal, COUNT(*) AS jumlah_transaksi, COALESCE(SUM(harga), 0) AS total_harga").
		Where("kode_pelanggan = ? AND tanggal >= ?", kodePelanggan, since).
		Group("tanggal").
		Order("tanggal ASC").
		Scan(&rows).Error
	return rows, err
}
