package service

import (
	"context"
	"testing"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerFixture() (CustomerService, *fixture) {
	f := newFixture()
	f.addPelanggan("CUST001", 5000, 75000)
	f.addPelanggan("CUST002", 6000, -5000)
	return NewCustomerService(f.pelanggan, f.saldo, f.transaction), f
}

func TestSaldoList_SummarySemuaPelanggan(t *testing.T) {
	svc, f := newCustomerFixture()

	resp, err := svc.SaldoList(context.Background(), SaldoListRequest{Page: 1, Limit: 1})
	require.NoError(t, err)

	assert.Equal(t, "nama_pelanggan ASC", f.saldo.listQuery.Order)
	assert.Equal(t, 1, f.saldo.listQuery.Page.Limit)
	assert.Equal(t, int64(2), resp.Summary.TotalPelanggan)
	assert.Equal(t, "70000", resp.Summary.TotalSaldo.String())
	assert.Equal(t, "nama_pelanggan", resp.Filters["sort_by"])
	assert.Equal(t, "ASC", resp.Filters["sort_order"])
}

func TestSaldoList_Sort(t *testing.T) {
	svc, f := newCustomerFixture()

	resp, err := svc.SaldoList(context.Background(), SaldoListRequest{SortBy: "saldo", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "saldo", resp.Filters["sort_by"])
	assert.Equal(t, "DESC", resp.Filters["sort_order"])
	assert.Equal(t, "saldo DESC", f.saldo.listQuery.Order)

	resp, err = svc.SaldoList(context.Background(), SaldoListRequest{SortBy: "password; drop table"})
	require.NoError(t, err)
	assert.Equal(t, "nama_pelanggan", resp.Filters["sort_by"])
}

func TestSearchSaldo(t *testing.T) {
	svc, f := newCustomerFixture()

	_, err := svc.SearchSaldo(context.Background(), "   ", 10)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	f.saldo.searchRows = []repository.SaldoRow{{KodePelanggan: "CUST001", NamaPelanggan: "Pelanggan CUST001", Saldo: decimal.NewFromInt(75000)}}
	resp, err := svc.SearchSaldo(context.Background(), " cust001 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "cust001", f.saldo.searchQuery)
	assert.Equal(t, 10, f.saldo.searchLimit)
	assert.Equal(t, "cust001", resp.Query)
	assert.Equal(t, 1, resp.TotalFound)

	_, err = svc.SearchSaldo(context.Background(), "cust", 500)
	require.NoError(t, err)
	assert.Equal(t, 100, f.saldo.searchLimit)
}

func TestRiwayat_KelompokPerTanggalWIB(t *testing.T) {
	svc, f := newCustomerFixture()
	trx := func(id string, at time.Time, total int64) *model.Transaction {
		row := &model.Transaction{TrxID: id, KodePelanggan: "CUST001", TotalHarga: decimal.NewFromInt(total), JumlahTabung: 1}
		row.CreatedAt = at
		return row
	}
	f.transaction.trx = []*model.Transaction{
		// 2024-03-05 01:00 WIB
		trx("TRX-A", time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC), 5000),
		// 2024-03-04 17:00 WIB
		trx("TRX-B", time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC), 10000),
		// 2024-03-04 08:00 WIB
		trx("TRX-C", time.Date(2024, time.March, 4, 1, 0, 0, 0, time.UTC), 5000),
		// 2024-03-01 01:00 WIB, masih Maret
		trx("TRX-D", time.Date(2024, time.February, 29, 18, 0, 0, 0, time.UTC), 5000),
		// 2024-02-29 23:00 WIB
		trx("TRX-E", time.Date(2024, time.February, 29, 16, 0, 0, 0, time.UTC), 5000),
	}
	other := trx("TRX-F", time.Date(2024, time.March, 10, 3, 0, 0, 0, time.UTC), 6000)
	other.KodePelanggan = "CUST002"
	f.transaction.trx = append(f.transaction.trx, other)
	f.transaction.details = []*model.DetailTransaksi{
		{TrxID: "TRX-B", Tabung: []model.TabungVolume{{KodeTabung: "T001", Volume: decimal.NewFromInt(1)}}},
	}

	resp, err := svc.Riwayat(context.Background(), "CUST001", 2024, 3)
	require.NoError(t, err)

	assert.Equal(t, "Maret", resp.Periode.NamaBulan)
	assert.Equal(t, 4, resp.TotalTransaksi)
	assert.Equal(t, "25000", resp.TotalNominal.String())
	require.Len(t, resp.Data, 3)

	assert.Equal(t, "2024-03-05", resp.Data[0].Tanggal)
	assert.Equal(t, "01:00:00", resp.Data[0].Transaksi[0].Waktu)
	assert.NotNil(t, resp.Data[0].Transaksi[0].DetailTabung)
	assert.Len(t, resp.Data[0].Transaksi[0].DetailTabung, 0)

	assert.Equal(t, "2024-03-04", resp.Data[1].Tanggal)
	assert.Equal(t, 2, resp.Data[1].TotalTransaksi)
	assert.Equal(t, "15000", resp.Data[1].TotalNominal.String())
	assert.Equal(t, "TRX-B", resp.Data[1].Transaksi[0].TrxID)
	assert.Len(t, resp.Data[1].Transaksi[0].DetailTabung, 1)

	assert.Equal(t, "2024-03-01", resp.Data[2].Tanggal)
}

func TestRiwayat_Errors(t *testing.T) {
	svc, _ := newCustomerFixture()

	_, err := svc.Riwayat(context.Background(), "CUST001", 2019, 3)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Riwayat(context.Background(), "CUST001", 2024, 13)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Riwayat(context.Background(), "CUST404", 2024, 3)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	resp, err := svc.Riwayat(context.Background(), "CUST001", 2024, 4)
	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
	assert.Len(t, resp.Data, 0)
	assert.True(t, resp.TotalNominal.IsZero())
}

func TestListDetailTransaksi_TotalDihitungUlang(t *testing.T) {
	svc, f := newCustomerFixture()
	sen := decimal.RequireFromString("0.01")
	f.transaction.detailRows = []repository.DetailTransaksiRow{{
		DetailTransaksi: model.DetailTransaksi{
			TrxID: "TRX-A",
			Tabung: []model.TabungVolume{
				{KodeTabung: "T001", Volume: sen},
				{KodeTabung: "T002", Volume: sen},
				{KodeTabung: "T003", Volume: sen},
			},
		},
		KodePelanggan: "CUST001",
		NamaPelanggan: "Pelanggan CUST001",
		HargaTabung:   decimal.RequireFromString("0.50"),
	}}

	resp, err := svc.ListDetailTransaksi(context.Background(), " TRX-A ", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, "TRX-A", f.transaction.detailQuery.TrxID)
	assert.Equal(t, "TRX-A", resp.Filters["trx_id"])
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Data[0].TabungCount)
	assert.Equal(t, "0.02", resp.Data[0].TotalHarga.StringFixed(2))
	assert.Equal(t, int64(1), resp.Pagination.TotalRecords)
}
