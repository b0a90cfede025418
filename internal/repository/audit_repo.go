package repository

import (
	"context"

	"go-tabung-ws/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, audit *model.Audit) error
	// SearchByKode returns audits whose tabung list mentions kode, newest first.
	SearchByKode(ctx context.Context, kode string) ([]model.Audit, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(ctx context.Context, tx *gorm.DB, audit *model.Audit) error {
	return conn(ctx, r.db, tx).Create(audit).Error
}

func (r *auditRepo) SearchByKode(ctx context.Context, kode string) ([]model.Audit, error) {
	rows := []model.Audit{}
	err := r.db.WithContext(ctx).
		Where(jsonText(r.db, "tabung")+" LIKE ?", "%\""+kode+"\"%").
		Order("tanggal DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}
