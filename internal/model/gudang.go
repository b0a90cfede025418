package model

type Gudang struct {
	BaseModel
	KodeGudang string `gorm:"type:varchar(50);uniqueIndex;not null" json:"kode_gudang"`
	NamaGudang string `gorm:"type:varchar(255);not null" json:"nama_gudang"`
	Alamat     string `gorm:"type:text" json:"alamat"`
	Kapasitas  int    `gorm:"default:0" json:"kapasitas"`
}

func (Gudang) TableName() string {
	return "gudangs"
}
