package repository

import (
	"context"
	"errors"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StokUpsert adalah nilai baru satu baris stok. Volume nil = tidak diubah (0 saat insert).
type StokUpsert struct {
	KodeTabung string
	Status     model.StatusTabung
	Lokasi     string
	Volume     *decimal.Decimal
	At         time.Time
	By         string
}

type StokQuery struct {
	Lokasi string
	Status string
	Search string
	Order  string
	Page   pagination.Params
}

type LokasiSummary struct {
	Lokasi        string          `json:"lokasi"`
	Total         int64           `json:"total"`
	Isi           int64           `json:"isi"`
	Kosong        int64           `json:"kosong"`
	Rusak         int64           `json:"rusak"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	PersentaseIsi float64         `gorm:"-" json:"persentase_isi"`
}

const summaryColumns = `COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN status = 'Isi' THEN 1 ELSE 0 END), 0) AS isi,
	COALESCE(SUM(CASE WHEN status = 'Kosong' THEN 1 ELSE 0 END), 0) AS kosong,
	COALESCE(SUM(CASE WHEN status = 'Rusak' THEN 1 ELSE 0 END), 0) AS rusak,
	COALESCE(SUM(volume), 0) AS total_volume`

type StokRepository interface {
	// Upsert mengunci baris kode (FOR UPDATE) di dalam savepoint sendiri,
	// jadi kegagalan satu kode tidak membatalkan transaksi pemanggil.
	Upsert(ctx context.Context, tx *gorm.DB, in StokUpsert) (model.StokAction, error)
	// Relocate hanya memperbarui baris yang sudah ada; false bila tidak ditemukan.
	Relocate(ctx context.Context, tx *gorm.DB, kode, lokasi string, status model.StatusTabung, at time.Time, by string) (bool, error)
	FindVolumes(ctx context.Context, tx *gorm.DB, kodes []string) (map[string]decimal.Decimal, error)
	FindByKode(ctx context.Context, kode string) (*model.StokTabung, error)
	FindByKodes(ctx context.Context, kodes []string) ([]model.StokTabung, error)
	FindByLokasi(ctx context.Context, q StokQuery) ([]model.StokTabung, int64, error)
	SummaryByLokasi(ctx context.Context, lokasi string) (*LokasiSummary, error)
	SummaryPerLokasi(ctx context.Context) ([]LokasiSummary, error)
}

type stokRepo struct {
	db *gorm.DB
}

func NewStokRepo(db *gorm.DB) StokRepository {
	return &stokRepo{db}
}

func (r *stokRepo) Upsert(ctx context.Context, tx *gorm.DB, in StokUpsert) (model.StokAction, error) {
	action := model.StokError

	err := conn(ctx, r.db, tx).Transaction(func(sp *gorm.DB) error {
		var existing model.StokTabung
		err := sp.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kode_tabung = ?", in.KodeTabung).
			Take(&existing).Error

		switch {
		case err == nil:
			updates := map[string]interface{}{
				"status":         in.Status,
				"lokasi":         in.Lokasi,
				"tanggal_update": in.At,
				"updated_by":     in.By,
			}
			if in.Volume != nil {
				updates["volume"] = *in.Volume
			}
			if err := sp.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			action = model.StokUpdated
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			stok := model.StokTabung{
				KodeTabung:    in.KodeTabung,
				Status:        in.Status,
				Lokasi:        in.Lokasi,
				Volume:        decimal.Zero,
				TanggalUpdate: in.At,
			}
			if in.Volume != nil {
				stok.Volume = *in.Volume
			}
			stok.CreatedBy = in.By
			stok.UpdatedBy = in.By
			if err := sp.Create(&stok).Error; err != nil {
				return err
			}
			action = model.StokInserted
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return model.StokError, err
	}
	return action, nil
}

func (r *stokRepo) Relocate(ctx context.Context, tx *gorm.DB, kode, lokasi string, status model.StatusTabung, at time.Time, by string) (bool, error) {
	db := conn(ctx, r.db, tx)

	var existing model.StokTabung
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("kode_tabung = ?", kode).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]interface{}{
		"lokasi":         lokasi,
		"tanggal_update": at,
		"updated_by":     by,
	}
	if status != "" {
		updates["status"] = status
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *stokRepo) FindVolumes(ctx context.Context, tx *gorm.DB, kodes []string) (map[string]decimal.Decimal, error) {
	volumes := make(map[string]decimal.Decimal, len(kodes))
	if len(kodes) == 0 {
		return volumes, nil
	}

	var rows []model.StokTabung
	err := conn(ctx, r.db, tx).Select("kode_tabung", "volume").
		Where("kode_tabung IN ?", kodes).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		volumes[row.KodeTabung] = row.Volume
	}
	return volumes, nil
}

func (r *stokRepo) FindByKode(ctx context.Context, kode string) (*model.StokTabung, error) {
	var stok model.StokTabung
	if err := r.db.WithContext(ctx).Where("kode_tabung = ?", kode).First(&stok).Error; err != nil {
		return nil, err
	}
	return &stok, nil
}

func (r *stokRepo) FindByKodes(ctx context.Context, kodes []string) ([]model.StokTabung, error) {
	rows := []model.StokTabung{}
	if len(kodes) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("kode_tabung IN ?", kodes).Find(&rows).Error
	return rows, err
}

func (r *stokRepo) FindByLokasi(ctx context.Context, q StokQuery) ([]model.StokTabung, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.StokTabung{}).Where("lokasi = ?", q.Lokasi)
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		base = base.Where("LOWER(kode_tabung) LIKE ?", containsPattern(q.Search))
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []model.StokTabung{}
	if total == 0 {
		return rows, 0, nil
	}

	err := base.Order(q.Order).Limit(q.Page.Limit).Offset(q.Page.Offset()).Find(&rows).Error
	return rows, total, err
}

func (r *stokRepo) SummaryByLokasi(ctx context.Context, lokasi string) (*LokasiSummary, error) {
	summary := LokasiSummary{Lokasi: lokasi}
	err := r.db.WithContext(ctx).Model(&model.StokTabung{}).
		Select(summaryColumns).
		Where("lokasi = ?", lokasi).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.Lokasi = lokasi
	return &summary, nil
}

func (r *stokRepo) SummaryPerLokasi(ctx context.Context) ([]LokasiSummary, error) {
	rows := []LokasiSummary{}
	err := r.db.WithContext(ctx).Model(&model.StokTabung{}).
		Select("lokasi, " + summaryColumns).
		Group("lokasi").
		Order("lokasi ASC").
		Scan(&rows).Error
	return rows, err
}
