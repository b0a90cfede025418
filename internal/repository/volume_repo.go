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

type VolumeFilter struct {
	Search string
	Lokasi string
	Dari   *time.Time
	Sampai *time.Time
}

type VolumeQuery struct {
	VolumeFilter
	Order string
	Page  pagination.Params
}

type VolumeLokasiStat struct {
	Lokasi      string          `json:"lokasi"`
	Jumlah      int64           `json:"jumlah"`
	TotalVolume decimal.Decimal `json:"total_volume"`
}

type VolumeStats struct {
	TotalRecords int64              `json:"total_records"`
	TotalVolume  decimal.Decimal    `json:"total_volume"`
	RataRata     decimal.Decimal    `json:"rata_rata"`
	PerLokasi    []VolumeLokasiStat `json:"per_lokasi"`
}

type VolumeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.VolumeTabung) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VolumeTabung, error)
	List(ctx context.Context, q VolumeQuery) ([]model.VolumeTabung, int64, error)
	ListAll(ctx context.Context, f VolumeFilter, order string) ([]model.VolumeTabung, error)
	Stats(ctx context.Context, f VolumeFilter) (*VolumeStats, error)
}

type volumeRepo struct {
	db *gorm.DB
}

func NewVolumeRepo(db *gorm.DB) VolumeRepository {
	return &volumeRepo{db}
}

func (r *volumeRepo) Create(ctx context.Context, tx *gorm.DB, v *model.VolumeTabung) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *volumeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VolumeTabung, error) {
	var v model.VolumeTabung
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *volumeRepo) filtered(ctx context.Context, f VolumeFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.VolumeTabung{})
	if f.Search != "" {
		like := containsPattern(f.Search)
		db = db.Where("LOWER(nama) LIKE ? OR LOWER(lokasi) LIKE ? OR LOWER("+jsonText(r.db, "tabung")+") LIKE ?",
			like, like, like)
	}
	if f.Lokasi != "" {
		db = db.Where("lokasi = ?", f.Lokasi)
	}
	if f.Dari != nil {
		db = db.Where("tanggal >= ?", *f.Dari)
	}
	if f.Sampai != nil {
		db = db.Where("tanggal <= ?", *f.Sampai)
	}
	return db.Session(&gorm.Session{})
}

func (r *volumeRepo) List(ctx context.Context, q VolumeQuery) ([]model.VolumeTabung, int64, error) {
	base := r.filtered(ctx, q.VolumeFilter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.VolumeTabung{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Order(q.Order).Limit(q.Page.Limit).Offset(q.Page.Offset()).Find(&rows).Error
	return rows, total, err
}

func (r *volumeRepo) ListAll(ctx context.Context, f VolumeFilter, order string) ([]model.VolumeTabung, error) {
	rows := []model.VolumeTabung{}
	err := r.filtered(ctx, f).Order(order).Find(&rows).Error
	return rows, err
}

func (r *volumeRepo) Stats(ctx context.Context, f VolumeFilter) (*VolumeStats, error) {
	stats := &VolumeStats{PerLokasi: []VolumeLokasiStat{}}

	var totals struct {
		TotalRecords int64
		TotalVolume  decimal.Decimal
	}
	if err := r.filtered(ctx, f).
		Select("COUNT(*) AS total_records, COALESCE(SUM(total_volume), 0) AS total_volume").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.TotalRecords = totals.TotalRecords
	stats.TotalVolume = totals.TotalVolume
	if totals.TotalRecords > 0 {
		stats.RataRata = totals.TotalVolume.Div(decimal.NewFromInt(totals.TotalRecords)).Round(2)
	}

	if err := r.filtered(ctx, f).
		Select("lokasi, COUNT(*) AS jumlah, COALESCE(SUM(total_volume), 0) AS total_volume").
		Group("lokasi").
		Order("lokasi ASC").
		Scan(&stats.PerLokasi).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
