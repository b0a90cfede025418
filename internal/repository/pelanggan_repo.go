package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PelangganRepository interface {
	FindByKode(ctx context.Context, kode string) (*model.Pelanggan, error)
	FindByEmail(ctx context.Context, email string) (*model.Pelanggan, error)
	Count(ctx context.Context) (int64, error)
	// NamaByKodes memetakan kode_pelanggan -> nama_pelanggan.
	NamaByKodes(ctx context.Context, kodes []string) (map[string]string, error)
}

type pelangganRepo struct {
	db *gorm.DB
}

func NewPelangganRepo(db *gorm.DB) PelangganRepository {
	return &pelangganRepo{db}
}

func (r *pelangganRepo) FindByKode(ctx context.Context, kode string) (*model.Pelanggan, error) {
	var pelanggan model.Pelanggan
	if err := r.db.WithContext(ctx).Where("kode_pelanggan = ?", kode).First(&pelanggan).Error; err != nil {
		return nil, err
	}
	return &pelanggan, nil
}

func (r *pelangganRepo) FindByEmail(ctx context.Context, email string) (*model.Pelanggan, error) {
	var pelanggan model.Pelanggan
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&pelanggan).Error; err != nil {
		return nil, err
	}
	return &pelanggan, nil
}

func (r *pelangganRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Pelanggan{}).Count(&total).Error
	return total, err
}

func (r *pelangganRepo) NamaByKodes(ctx context.Context, kodes []string) (map[string]string, error) {
	out := make(map[string]string, len(kodes))
	if len(kodes) == 0 {
		return out, nil
	}
	var rows []model.Pelanggan
	err := r.db.WithContext(ctx).
		Select("kode_pelanggan", "nama_pelanggan").
		Where("kode_pelanggan IN ?", kodes).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.KodePelanggan] = p.NamaPelanggan
	}
	return out, nil
}

// SaldoRow adalah saldo digabung dengan data pelanggannya.
type SaldoRow struct {
	SaldoID        uuid.UUID       `json:"saldo_id"`
	KodePelanggan  string          `json:"kode_pelanggan"`
	NamaPelanggan  string          `json:"nama_pelanggan"`
	HargaTabung    decimal.Decimal `json:"harga_tabung"`
	Saldo          decimal.Decimal `json:"saldo"`
	SaldoCreatedAt time.Time       `json:"saldo_created_at"`
	SaldoUpdatedAt time.Time       `json:"saldo_updated_at"`
}

type SaldoQuery struct {
	// Order memakai nama kolom publik, lihat saldoSortColumns.
	Order string
	Page  pagination.Params
}

var saldoSortColumns = map[string]string{
	"nama_pelanggan":   "p.nama_pelanggan",
	"kode_pelanggan":   "sp.kode_pelanggan",
	"saldo":            "sp.saldo",
	"saldo_created_at": "sp.created_at",
}

const saldoRowColumns = `sp.id AS saldo_id, sp.kode_pelanggan, p.nama_pelanggan, p.harga_tabung,
	sp.saldo, sp.created_at AS saldo_created_at, sp.updated_at AS saldo_updated_at`

func saldoOrder(order string) string {
	field, dir, _ := strings.Cut(order, " ")
	col, ok := saldoSortColumns[field]
	if !ok {
		col = saldoSortColumns["nama_pelanggan"]
	}
	if dir != "DESC" {
		dir = "ASC"
	}
	return col + " " + dir
}

type SaldoRepository interface {
	FindByKode(ctx context.Context, kodePelanggan string) (*model.SaldoPelanggan, error)
	List(ctx context.Context, q SaldoQuery) ([]SaldoRow, int64, error)
	// Search mencocokkan nama atau kode pelanggan (LIKE), urut nama.
	Search(ctx context.Context, query string, limit int) ([]SaldoRow, error)
	// Total adalah jumlah saldo seluruh pelanggan.
	Total(ctx context.Context) (decimal.Decimal, error)
	// Decrement mengunci saldo (FOR UPDATE), membuat baris 0 bila belum ada,
	// lalu mengurangi tanpa cek saldo cukup. Mengembalikan saldo baru.
	Decrement(ctx context.Context, tx *gorm.DB, kodePelanggan string, amount decimal.Decimal, by string) (decimal.Decimal, error)
}

type saldoRepo struct {
	db *gorm.DB
}

func NewSaldoRepo(db *gorm.DB) SaldoRepository {
	return &saldoRepo{db}
}

func (r *saldoRepo) FindByKode(ctx context.Context, kodePelanggan string) (*model.SaldoPelanggan, error) {
	var saldo model.SaldoPelanggan
	if err := r.db.WithContext(ctx).Where("kode_pelanggan = ?", kodePelanggan).First(&saldo).Error; err != nil {
		return nil, err
	}
	return &saldo, nil
}

func (r *saldoRepo) Decrement(ctx context.Context, tx *gorm.DB, kodePelanggan string, amount decimal.Decimal, by string) (decimal.Decimal, error) {
	db := conn(ctx, r.db, tx)

	var saldo model.SaldoPelanggan
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kode_pelanggan = ?", kodePelanggan).
		First(&saldo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		saldo = model.SaldoPelanggan{KodePelanggan: kodePelanggan, Saldo: decimal.Zero}
		saldo.CreatedBy = by
		saldo.UpdatedBy = by
		if err := db.Create(&saldo).Error; err != nil {
			return decimal.Zero, err
		}
	} else if err != nil {
		return decimal.Zero, err
	}

	newSaldo := saldo.Saldo.Sub(amount).Round(2)
	err = db.Model(&model.SaldoPelanggan{}).
		Where("id = ?", saldo.ID).
		Updates(map[string]interface{}{
			"saldo":      newSaldo,
			"updated_by": by,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return decimal.Zero, err
	}
	return newSaldo, nil
}

func (r *saldoRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("saldo_pelanggans sp").
		Joins("JOIN pelanggans p ON p.kode_pelanggan = sp.kode_pelanggan").
		Where("sp.deleted_at IS NULL AND p.deleted_at IS NULL")
}

func (r *saldoRepo) List(ctx context.Context, q SaldoQuery) ([]SaldoRow, int64, error) {
	base := r.joined(ctx).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []SaldoRow{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Select(saldoRowColumns).
		Order(saldoOrder(q.Order)).
		Limit(q.Page.Limit).
		Offset(q.Page.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func (r *saldoRepo) Search(ctx context.Context, query string, limit int) ([]SaldoRow, error) {
	like := containsPattern(query)
	rows := []SaldoRow{}
	err := r.joined(ctx).
		Select(saldoRowColumns).
		Where("(LOWER(p.nama_pelanggan) LIKE ? OR LOWER(p.kode_pelanggan) LIKE ?)", like, like).
		Order("p.nama_pelanggan ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *saldoRepo) Total(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		Total decimal.Decimal
	}
	if err := r.joined(ctx).Select("COALESCE(SUM(sp.saldo), 0) AS total").Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Total, nil
}
