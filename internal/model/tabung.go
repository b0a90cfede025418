package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type StatusTabung string

const (
	StatusKosong StatusTabung = "Kosong"
	StatusIsi    StatusTabung = "Isi"
	StatusRusak  StatusTabung = "Rusak"
)

var StatusTabungValues = []StatusTabung{StatusKosong, StatusIsi, StatusRusak}

func (s StatusTabung) Valid() bool {
	for _, v := range StatusTabungValues {
		if s == v {
			return true
		}
	}
	return false
}

// Tabung adalah master tabung. Registrasi dilakukan di luar layanan ini.
type Tabung struct {
	BaseModel
	KodeTabung  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"kode_tabung"`
	SeriTabung  string `gorm:"type:varchar(100)" json:"seri_tabung"`
	TahunTabung int    `json:"tahun_tabung"`
	SiklusIsi   int    `gorm:"default:0" json:"siklus_isi"`
}

func (Tabung) TableName() string {
	return "tabungs"
}

// StokTabung: satu baris per tabung, di-upsert oleh setiap aktivitas.
type StokTabung struct {
	BaseModel
	KodeTabung    string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"kode_tabung"`
	Status        StatusTabung    `gorm:"type:varchar(10);not null;default:Kosong;index" json:"status"`
	Lokasi        string          `gorm:"type:varchar(100);index" json:"lokasi"`
	Volume        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"volume"`
	TanggalUpdate time.Time       `json:"tanggal_update"`
}

func (StokTabung) TableName() string {
	return "stok_tabung"
}

// StokAction adalah hasil upsert per tabung.
type StokAction string

const (
	StokInserted StokAction = "inserted"
	StokUpdated  StokAction = "updated"
	StokSkipped  StokAction = "skipped"
	StokError    StokAction = "error"
)
