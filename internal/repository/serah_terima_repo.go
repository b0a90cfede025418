package repository

import (
	"context"

	"go-tabung-ws/internal/model"

	"gorm.io/gorm"
)

type SerahTerimaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *model.SerahTerimaTabung) error
	ExistsBastID(ctx context.Context, tx *gorm.DB, bastID string) (bool, error)
}

type serahTerimaRepo struct {
	db *gorm.DB
}

func NewSerahTerimaRepo(db *gorm.DB) SerahTerimaRepository {
	return &serahTerimaRepo{db}
}

func (r *serahTerimaRepo) Create(ctx context.Context, tx *gorm.DB, record *model.SerahTerimaTabung) error {
	return conn(ctx, r.db, tx).Create(record).Error
}

func (r *serahTerimaRepo) ExistsBastID(ctx context.Context, tx *gorm.DB, bastID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&model.SerahTerimaTabung{}).Where("bast_id = ?", bastID).Count(&count).Error
	return count > 0, err
}
