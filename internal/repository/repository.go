package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// conn memilih tx bila ada, selain itu koneksi utama.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = db
	}
	return tx.WithContext(ctx)
}

// jsonText meng-cast kolom JSON ke teks agar bisa dicari dengan LIKE.
func jsonText(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "mysql" {
		return "CAST(" + column + " AS CHAR)"
	}
	return "CAST(" + column + " AS TEXT)"
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
