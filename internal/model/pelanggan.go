package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// Keterangan baris laporan pelanggan
const (
	LaporanTagihan = "Tagihan"
	LaporanKembali = "Kembali"
	LaporanDeposit = "Deposit"
)

type Pelanggan struct {
	BaseModel
	KodePelanggan string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"kode_pelanggan"`
	NamaPelanggan string          `gorm:"type:varchar(255);not null" json:"nama_pelanggan"`
	Email         string          `gorm:"type:varchar(255);index" json:"email"`
	Password      string          `gorm:"type:varchar(255)" json:"-"`
	NoHP          string          `gorm:"column:no_hp;type:varchar(20)" json:"no_hp"`
	Alamat        string          `gorm:"type:text" json:"alamat"`
	HargaTabung   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"harga_tabung"`
}

func (Pelanggan) TableName() string {
	return "pelanggans"
}

func (p *Pelanggan) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Password = string(hashed)
	return nil
}

func (p *Pelanggan) CheckPassword(password string) bool {
	return checkHash(p.Password, password)
}

// checkHash menerima hash PHP ($2y$) dari data lama.
func checkHash(hash, password string) bool {
	if hash == "" {
		return false
	}
	if strings.HasPrefix(hash, "$2y$") {
		hash = "$2a$" + hash[4:]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SaldoPelanggan adalah saldo deposit yang berlaku (sumber kebenaran).
type SaldoPelanggan struct {
	BaseModel
	KodePelanggan string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"kode_pelanggan"`
	Saldo         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"saldo"`
}

func (SaldoPelanggan) TableName() string {
	return "saldo_pelanggans"
}

// LaporanPelanggan adalah baris rekening koran pelanggan, append-only.
type LaporanPelanggan struct {
	LogModel
	KodePelanggan      string                      `gorm:"type:varchar(50);index;not null" json:"kode_pelanggan"`
	Tanggal            time.Time                   `gorm:"type:date;index" json:"tanggal"`
	Keterangan         string                      `gorm:"type:varchar(50);index" json:"keterangan"`
	JumlahTabung       int                         `gorm:"not null;default:0" json:"jumlah_tabung"`
	Harga              decimal.Decimal             `gorm:"type:decimal(20,2);not null;default:0" json:"harga"`
	TambahanDeposit    decimal.Decimal             `gorm:"type:decimal(20,2);not null;default:0" json:"tambahan_deposit"`
	PenguranganDeposit decimal.Decimal             `gorm:"type:decimal(20,2);not null;default:0" json:"pengurangan_deposit"`
	SisaDeposit        decimal.Decimal             `gorm:"type:decimal(20,2);not null;default:0" json:"sisa_deposit"`
	Tabung             datatypes.JSONSlice[string] `json:"tabung"`
	FormatVersion      int                         `gorm:"not null;default:1" json:"format_version"`
	IDBastInvoice      *string                     `gorm:"column:id_bast_invoice;type:varchar(40)" json:"id_bast_invoice"`
	Konfirmasi         bool                        `gorm:"default:false" json:"konfirmasi"`
}

func (LaporanPelanggan) TableName() string {
	return "laporan_pelanggan"
}
