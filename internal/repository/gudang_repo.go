package repository

import (
	"context"

	"go-tabung-ws/internal/model"

	"gorm.io/gorm"
)

type GudangRepository interface {
	FindByKode(ctx context.Context, kode string) (*model.Gudang, error)
}

type gudangRepo struct {
	db *gorm.DB
}

func NewGudangRepo(db *gorm.DB) GudangRepository {
	return &gudangRepo{db}
}

func (r *gudangRepo) FindByKode(ctx context.Context, kode string) (*model.Gudang, error) {
	var gudang model.Gudang
	if err := r.db.WithContext(ctx).Where("kode_gudang = ?", kode).First(&gudang).Error; err != nil {
		return nil, err
	}
	return &gudang, nil
}
