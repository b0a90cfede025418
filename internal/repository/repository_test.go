package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestFindExistingCodes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTabungRepo(db)

	mock.ExpectQuery(`SELECT "kode_tabung" FROM "tabungs" WHERE kode_tabung IN \(\$1,\$2,\$3\)`).
		WithArgs("TB01", "TB02", "XX9").
		WillReturnRows(sqlmock.NewRows([]string{"kode_tabung"}).AddRow("TB01").AddRow("TB02"))

	found, err := repo.FindExistingCodes(context.Background(), []string{"TB01", "TB02", "XX9"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TB01", "TB02"}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExistingCodes_Empty(t *testing.T) {
	db, mock := newMockDB(t)

	found, err := NewTabungRepo(db).FindExistingCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStokFindByLokasi_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStokRepo(db)

	// total 0: query data tidak dijalankan
	mock.ExpectQuery(`SELECT count\(\*\) FROM "stok_tabung" WHERE lokasi = \$1 AND status = \$2`).
		WithArgs("Gudang A", "Isi").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := repo.FindByLokasi(context.Background(), StokQuery{
		Lokasi: "Gudang A",
		Status: "Isi",
		Order:  "kode_tabung ASC",
		Page:   pagination.New(1, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStokUpsert_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStokRepo(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "stok_tabung" WHERE kode_tabung = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kode_tabung", "status", "lokasi", "volume"}).
			AddRow(id.String(), "TB01", "Kosong", "Gudang A", "2.00"))
	mock.ExpectExec(`UPDATE "stok_tabung" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	action, err := repo.Upsert(context.Background(), nil, StokUpsert{
		KodeTabung: "TB01",
		Status:     model.StatusIsi,
		Lokasi:     "CUST001",
		At:         time.Now(),
		By:         "u-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StokUpdated, action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStokUpsert_SavepointRollback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStokRepo(db)
	lockErr := errors.New("lock timeout")

	mock.ExpectBegin()
	mock.ExpectExec(`^SAVEPOINT `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "stok_tabung" WHERE kode_tabung = \$1 .*FOR UPDATE`).WillReturnError(lockErr)
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var action model.StokAction
	err := db.Transaction(func(tx *gorm.DB) error {
		var upsertErr error
		action, upsertErr = repo.Upsert(context.Background(), tx, StokUpsert{KodeTabung: "TB01", Status: model.StatusIsi, Lokasi: "X"})
		assert.ErrorIs(t, upsertErr, lockErr)
		// transaksi luar tetap lanjut
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StokError, action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaldoDecrement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaldoRepo(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "saldo_pelanggans" WHERE kode_pelanggan = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kode_pelanggan", "saldo"}).
			AddRow(id.String(), "CUST001", "100000.00"))
	mock.ExpectExec(`UPDATE "saldo_pelanggans" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var saldo decimal.Decimal
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		saldo, err = repo.Decrement(context.Background(), tx, "CUST001", decimal.NewFromInt(25000), "u-1")
		return err
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75000).Equal(saldo))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaldoDecrement_UpdateFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaldoRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "saldo_pelanggans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kode_pelanggan", "saldo"}).
			AddRow(uuid.NewString(), "CUST001", "10.00"))
	mock.ExpectExec(`UPDATE "saldo_pelanggans" SET`).WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.Decrement(context.Background(), tx, "CUST001", decimal.NewFromInt(1), "u-1")
		return err
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLaporanList_SearchNamaPelanggan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLaporanRepo(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .* WHERE \(LOWER\(kode_pelanggan\) LIKE \$1 OR LOWER\(keterangan\) LIKE \$2 OR kode_pelanggan IN \(SELECT "kode_pelanggan" FROM "pelanggans" WHERE LOWER\(nama_pelanggan\) LIKE \$3`).
		WithArgs("%budi%", "%budi%", "%budi%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := repo.List(context.Background(), LaporanQuery{
		Search: " Budi ",
		Order:  "created_at DESC",
		Page:   pagination.New(1, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaldoTotal(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(sp.saldo\), 0\) AS total FROM saldo_pelanggans sp JOIN pelanggans p`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("70000.00"))

	total, err := NewSaldoRepo(db).Total(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70000).Equal(total))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaldoList_SortKolomTidakDikenal(t *testing.T) {
	assert.Equal(t, "sp.saldo DESC", saldoOrder("saldo DESC"))
	assert.Equal(t, "p.nama_pelanggan ASC", saldoOrder("password DESC; --"))
	assert.Equal(t, "sp.kode_pelanggan ASC", saldoOrder("kode_pelanggan"))
}

func TestListDetail_FilterTrxID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM detail_transaksi dt LEFT JOIN transactions t .* WHERE LOWER\(dt.trx_id\) LIKE \$1`).
		WithArgs("%trx-a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := NewTransactionRepo(db).ListDetail(context.Background(), DetailTransaksiQuery{
		TrxID: "TRX-A",
		Page:  pagination.New(1, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
