package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails.
// ID disimpan sebagai char(36) agar sama di Postgres dan MySQL.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(64)" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updated_by"`
	DeletedBy string `gorm:"type:varchar(64)" json:"-"`
}

func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// LogModel untuk tabel append-only (log aktivitas, transaksi, laporan).
type LogModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	CreatedBy string    `gorm:"type:varchar(64)" json:"created_by"`
}

func (base *LogModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Migratables returns every persisted model in dependency-free order.
func Migratables() []interface{} {
	return []interface{}{
		&User{}, &Pelanggan{}, &SaldoPelanggan{}, &Gudang{},
		&Tabung{}, &StokTabung{}, &AktivitasTabung{}, &SerahTerimaTabung{},
		&Transaction{}, &DetailTransaksi{}, &LaporanPelanggan{},
		&VolumeTabung{}, &Audit{},
	}
}
