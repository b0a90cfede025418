package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TabungListVersion adalah versi format kolom JSON daftar tabung.
const TabungListVersion = 1

var ErrAppendOnly = errors.New("record is append-only")

// TabungVolume adalah snapshot volume satu tabung.
type TabungVolume struct {
	KodeTabung string          `json:"kode_tabung"`
	Volume     decimal.Decimal `json:"volume"`
}

// AktivitasTabung adalah log perpindahan tabung. Tidak pernah di-update.
type AktivitasTabung struct {
	LogModel
	Dari          string                      `gorm:"type:varchar(100);not null;index" json:"dari"`
	Tujuan        string                      `gorm:"type:varchar(100);not null;index" json:"tujuan"`
	Tabung        datatypes.JSONSlice[string] `json:"tabung"`
	FormatVersion int                         `gorm:"not null;default:1" json:"format_version"`
	Keterangan    string                      `gorm:"type:text" json:"keterangan"`
	IDUser        string                      `gorm:"column:id_user;type:varchar(64)" json:"id_user"`
	NamaPetugas   string                      `gorm:"type:varchar(255)" json:"nama_petugas"`
	TotalTabung   int                         `gorm:"not null" json:"total_tabung"`
	Tanggal       string                      `gorm:"type:varchar(10);index" json:"tanggal"`
	Waktu         time.Time                   `gorm:"index" json:"waktu"`
	NamaAktivitas string                      `gorm:"type:varchar(100);index" json:"nama_aktivitas"`
	Status        StatusTabung                `gorm:"type:varchar(10)" json:"status"`
}

func (AktivitasTabung) TableName() string {
	return "aktivitas_tabung"
}

func (a *AktivitasTabung) BeforeUpdate(tx *gorm.DB) error {
	return ErrAppendOnly
}

func (a *AktivitasTabung) BeforeDelete(tx *gorm.DB) error {
	return ErrAppendOnly
}

// SerahTerimaTabung (BAST) dibuat untuk penerimaan tabung rusak/refund dari pelanggan atau agen.
type SerahTerimaTabung struct {
	LogModel
	BastID        string                      `gorm:"column:bast_id;type:varchar(8);uniqueIndex;not null" json:"bast_id"`
	AktivitasID   uuid.UUID                   `gorm:"type:char(36);index" json:"aktivitas_id"`
	KodePelanggan string                      `gorm:"type:varchar(50);index" json:"kode_pelanggan"`
	Tabung        datatypes.JSONSlice[string] `json:"tabung"`
	FormatVersion int                         `gorm:"not null;default:1" json:"format_version"`
	Status        StatusTabung                `gorm:"type:varchar(10)" json:"status"`
	Refund        bool                        `gorm:"default:false" json:"refund"`
	TotalHarga    decimal.NullDecimal         `gorm:"type:decimal(20,2)" json:"total_harga"`
}

func (SerahTerimaTabung) TableName() string {
	return "serah_terima_tabungs"
}

// VolumeTabung mencatat pengisian volume oleh operator.
type VolumeTabung struct {
	LogModel
	Tanggal       time.Time                         `gorm:"type:date;index" json:"tanggal"`
	Lokasi        string                            `gorm:"type:varchar(100);index" json:"lokasi"`
	Tabung        datatypes.JSONSlice[TabungVolume] `json:"tabung"`
	FormatVersion int                               `gorm:"not null;default:1" json:"format_version"`
	TotalVolume   decimal.Decimal                   `gorm:"type:decimal(12,2);not null;default:0" json:"total_volume"`
	Nama          string                            `gorm:"type:varchar(255)" json:"nama"`
	Keterangan    string                            `gorm:"type:text" json:"keterangan"`
	IDUser        string                            `gorm:"column:id_user;type:varchar(64)" json:"id_user"`
}

func (VolumeTabung) TableName() string {
	return "volume_tabungs"
}

type AuditItem struct {
	KodeTabung string       `json:"kode_tabung"`
	Status     StatusTabung `json:"status,omitempty"`
}

// Audit mencatat hasil pengecekan fisik tabung di suatu lokasi.
type Audit struct {
	LogModel
	Tanggal       time.Time                      `gorm:"type:date;index" json:"tanggal"`
	Lokasi        string                         `gorm:"type:varchar(100);index" json:"lokasi"`
	Tabung        datatypes.JSONSlice[AuditItem] `json:"tabung"`
	FormatVersion int                            `gorm:"not null;default:1" json:"format_version"`
	Keterangan    string                         `gorm:"type:text" json:"keterangan"`
	IDUser        string                         `gorm:"column:id_user;type:varchar(64)" json:"id_user"`
	NamaPetugas   string                         `gorm:"type:varchar(255)" json:"nama_petugas"`
}

func (Audit) TableName() string {
	return "audits"
}
