package repository

import (
	"context"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DetailTransaksiRow adalah detail transaksi plus pelanggan dan harga per m3-nya.
type DetailTransaksiRow struct {
	model.DetailTransaksi
	KodePelanggan string          `json:"kode_pelanggan"`
	NamaPelanggan string          `json:"nama_pelanggan"`
	HargaTabung   decimal.Decimal `json:"harga_tabung"`
}

type DetailTransaksiQuery struct {
	// TrxID dicocokkan sebagian (LIKE)
	TrxID string
	Page  pagination.Params
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, trx *model.Transaction) error
	CreateDetail(ctx context.Context, tx *gorm.DB, detail *model.DetailTransaksi) error
	FindByTrxID(ctx context.Context, trxID string) (*model.Transaction, error)
	FindDetailByTrxID(ctx context.Context, trxID string) (*model.DetailTransaksi, error)
	ListByPelanggan(ctx context.Context, kodePelanggan string, page pagination.Params) ([]model.Transaction, int64, error)
	// ListByPelangganRange: dari <= created_at < sampai, terbaru dulu.
	ListByPelangganRange(ctx context.Context, kodePelanggan string, dari, sampai time.Time) ([]model.Transaction, error)
	FindDetailsByTrxIDs(ctx context.Context, trxIDs []string) ([]model.DetailTransaksi, error)
	ListDetail(ctx context.Context, q DetailTransaksiQuery) ([]DetailTransaksiRow, int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, trx *model.Transaction) error {
	return conn(ctx, r.db, tx).Create(trx).Error
}

func (r *transactionRepo) CreateDetail(ctx context.Context, tx *gorm.DB, detail *model.DetailTransaksi) error {
	return conn(ctx, r.db, tx).Create(detail).Error
}

func (r *transactionRepo) FindByTrxID(ctx context.Context, trxID string) (*model.Transaction, error) {
	var trx model.Transaction
	if err := r.db.WithContext(ctx).Where("trx_id = ?", trxID).First(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *transactionRepo) FindDetailByTrxID(ctx context.Context, trxID string) (*model.DetailTransaksi, error) {
	var detail model.DetailTransaksi
	if err := r.db.WithContext(ctx).Where("trx_id = ?", trxID).First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *transactionRepo) ListByPelanggan(ctx context.Context, kodePelanggan string, page pagination.Params) ([]model.Transaction, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("kode_pelanggan = ?", kodePelanggan).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.Transaction{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&rows).Error
	return rows, total, err
}

func (r *transactionRepo) ListByPelangganRange(ctx context.Context, kodePelanggan string, dari, sampai time.Time) ([]model.Transaction, error) {
	rows := []model.Transaction{}
	err := r.db.WithContext(ctx).
		Where("kode_pelanggan = ? AND created_at >= ? AND created_at < ?", kodePelanggan, dari, sampai).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) FindDetailsByTrxIDs(ctx context.Context, trxIDs []string) ([]model.DetailTransaksi, error) {
	rows := []model.DetailTransaksi{}
	if len(trxIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("trx_id IN ?", trxIDs).Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) ListDetail(ctx context.Context, q DetailTransaksiQuery) ([]DetailTransaksiRow, int64, error) {
	base := r.db.WithContext(ctx).
		Table("detail_transaksi dt").
		Joins("LEFT JOIN transactions t ON t.trx_id = dt.trx_id").
		Joins("LEFT JOIN pelanggans p ON p.kode_pelanggan = t.kode_pelanggan")
	if q.TrxID != "" {
		base = base.Where("LOWER(dt.trx_id) LIKE ?", containsPattern(q.TrxID))
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []DetailTransaksiRow{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Select(`dt.id, dt.created_at, dt.created_by, dt.trx_id, dt.tabung, dt.format_version,
			COALESCE(t.kode_pelanggan, '') AS kode_pelanggan,
			COALESCE(p.nama_pelanggan, '') AS nama_pelanggan,
			COALESCE(p.harga_tabung, 0) AS harga_tabung`).
		Order("dt.created_at DESC").
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Scan(&rows).Error
	return rows, total, err
}
