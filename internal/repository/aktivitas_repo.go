package repository

import (
	"context"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AktivitasFilter struct {
	Search     string
	Status     string
	Aktivitas  string
	KodeTabung string
	Dari       *time.Time
	Sampai     *time.Time
}

type AktivitasQuery struct {
	AktivitasFilter
	Order string
	Page  pagination.Params
}

type AktivitasCount struct {
	Label       string `json:"label"`
	Jumlah      int64  `json:"jumlah"`
	TotalTabung int64  `json:"total_tabung"`
}

type AktivitasStats struct {
	TotalAktivitas int64            `json:"total_aktivitas"`
	TotalTabung    int64            `json:"total_tabung"`
	HariIni        int64            `json:"hari_ini"`
	PerAktivitas   []AktivitasCount `json:"per_aktivitas"`
	PerStatus      []AktivitasCount `json:"per_status"`
}

type AktivitasRepository interface {
	Create(ctx context.Context, tx *gorm.DB, aktivitas *model.AktivitasTabung) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AktivitasTabung, error)
	List(ctx context.Context, q AktivitasQuery) ([]model.AktivitasTabung, int64, error)
	// ListAll tanpa paginasi, untuk export.
	ListAll(ctx context.Context, f AktivitasFilter, order string) ([]model.AktivitasTabung, error)
	CountByTanggal(ctx context.Context, tanggal string) (int64, error)
	Stats(ctx context.Context, tanggal string) (*AktivitasStats, error)
}

type aktivitasRepo struct {
	db *gorm.DB
}

func NewAktivitasRepo(db *gorm.DB) AktivitasRepository {
	return &aktivitasRepo{db}
}

func (r *aktivitasRepo) Create(ctx context.Context, tx *gorm.DB, aktivitas *model.AktivitasTabung) error {
	return conn(ctx, r.db, tx).Create(aktivitas).Error
}

func (r *aktivitasRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AktivitasTabung, error) {
	var aktivitas model.AktivitasTabung
	if err := r.db.WithContext(ctx).First(&aktivitas, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &aktivitas, nil
}

func (r *aktivitasRepo) filtered(ctx context.Context, f AktivitasFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.AktivitasTabung{})
	if f.Search != "" {
		like := containsPattern(f.Search)
		db = db.Where("LOWER(dari) LIKE ? OR LOWER(tujuan) LIKE ? OR LOWER(nama_petugas) LIKE ? OR LOWER(keterangan) LIKE ?",
			like, like, like, like)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Aktivitas != "" {
		db = db.Where("nama_aktivitas = ?", f.Aktivitas)
	}
	if f.KodeTabung != "" {
		db = db.Where(jsonText(r.db, "tabung")+" LIKE ?", "%\""+f.KodeTabung+"\"%")
	}
	if f.Dari != nil {
		db = db.Where("waktu >= ?", *f.Dari)
	}
	if f.Sampai != nil {
		db = db.Where("waktu < ?", *f.Sampai)
	}
	return db.Session(&gorm.Session{})
}

func (r *aktivitasRepo) List(ctx context.Context, q AktivitasQuery) ([]model.AktivitasTabung, int64, error) {
	base := r.filtered(ctx, q.AktivitasFilter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.AktivitasTabung{}
	if total == 0 {
		return rows, 0, nil
	}
	err := base.Order(q.Order).Limit(q.Page.Limit).Offset(q.Page.Offset()).Find(&rows).Error
	return rows, total, err
}

func (r *aktivitasRepo) ListAll(ctx context.Context, f AktivitasFilter, order string) ([]model.AktivitasTabung, error) {
	rows := []model.AktivitasTabung{}
	err := r.filtered(ctx, f).Order(order).Find(&rows).Error
	return rows, err
}

func (r *aktivitasRepo) CountByTanggal(ctx context.Context, tanggal string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.AktivitasTabung{}).Where("tanggal = ?", tanggal).Count(&total).Error
	return total, err
}

func (r *aktivitasRepo) Stats(ctx context.Context, tanggal string) (*AktivitasStats, error) {
	stats := &AktivitasStats{
		PerAktivitas: []AktivitasCount{},
		PerStatus:    []AktivitasCount{},
	}
	db := r.db.WithContext(ctx)

	var totals struct {
		TotalAktivitas int64
		TotalTabung    int64
	}
	if err := db.Model(&model.AktivitasTabung{}).
		Select("COUNT(*) AS total_aktivitas, COALESCE(SUM(total_tabung), 0) AS total_tabung").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.TotalAktivitas = totals.TotalAktivitas
	stats.TotalTabung = totals.TotalTabung

	if err := db.Model(&model.AktivitasTabung{}).Where("tanggal = ?", tanggal).Count(&stats.HariIni).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.AktivitasTabung{}).
		Select("nama_aktivitas AS label, COUNT(*) AS jumlah, COALESCE(SUM(total_tabung), 0) AS total_tabung").
		Group("nama_aktivitas").
		Order("jumlah DESC").
		Scan(&stats.PerAktivitas).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.AktivitasTabung{}).
		Select("status AS label, COUNT(*) AS jumlah, COALESCE(SUM(total_tabung), 0) AS total_tabung").
		Group("status").
		Order("jumlah DESC").
		Scan(&stats.PerStatus).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
