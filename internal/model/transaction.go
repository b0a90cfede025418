package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	TrxTypePurchase   = "purchase"
	PaymentMethodCash = "cash"
	TrxStatusPaid     = "paid"
)

// Transaction adalah tagihan yang diturunkan dari satu aktivitas pengiriman.
type Transaction struct {
	LogModel
	TrxID         string          `gorm:"column:trx_id;type:varchar(40);uniqueIndex;not null" json:"trx_id"`
	AktivitasID   uuid.UUID       `gorm:"type:char(36);index" json:"aktivitas_id"`
	KodePelanggan string          `gorm:"type:varchar(50);index;not null" json:"kode_pelanggan"`
	TotalHarga    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_harga"`
	JumlahTabung  int             `gorm:"not null" json:"jumlah_tabung"`
	Type          string          `gorm:"type:varchar(20);default:purchase" json:"type"`
	PaymentMethod string          `gorm:"type:varchar(20)" json:"payment_method"`
	Status        string          `gorm:"type:varchar(20);index" json:"status"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// DetailTransaksi menyimpan snapshot volume per tabung saat tagihan dibuat.
type DetailTransaksi struct {
	LogModel
	TrxID         string                            `gorm:"column:trx_id;type:varchar(40);uniqueIndex;not null" json:"trx_id"`
	Tabung        datatypes.JSONSlice[TabungVolume] `json:"tabung"`
	FormatVersion int                               `gorm:"not null;default:1" json:"format_version"`
}

func (DetailTransaksi) TableName() string {
	return "detail_transaksi"
}
