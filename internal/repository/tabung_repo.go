package repository

import (
	"context"

	"go-tabung-ws/internal/model"

	"gorm.io/gorm"
)

type TabungRepository interface {
	FindByKode(ctx context.Context, kode string) (*model.Tabung, error)
	FindByKodes(ctx context.Context, kodes []string) ([]model.Tabung, error)
	// FindExistingCodes returns the subset of kodes registered in the master table.
	FindExistingCodes(ctx context.Context, kodes []string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type tabungRepo struct {
	db *gorm.DB
}

func NewTabungRepo(db *gorm.DB) TabungRepository {
	return &tabungRepo{db}
}

func (r *tabungRepo) FindByKode(ctx context.Context, kode string) (*model.Tabung, error) {
	var tabung model.Tabung
	if err := r.db.WithContext(ctx).Where("kode_tabung = ?", kode).First(&tabung).Error; err != nil {
		return nil, err
	}
	return &tabung, nil
}

func (r *tabungRepo) FindByKodes(ctx context.Context, kodes []string) ([]model.Tabung, error) {
	tabungs := []model.Tabung{}
	if len(kodes) == 0 {
		return tabungs, nil
	}
	err := r.db.WithContext(ctx).Where("kode_tabung IN ?", kodes).Find(&tabungs).Error
	return tabungs, err
}

func (r *tabungRepo) FindExistingCodes(ctx context.Context, kodes []string) ([]string, error) {
	found := []string{}
	if len(kodes) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Tabung{}).
		Where("kode_tabung IN ?", kodes).
		Pluck("kode_tabung", &found).Error
	return found, err
}

func (r *tabungRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Tabung{}).Count(&total).Error
	return total, err
}
