package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)

var errFake = errors.New("fake storage failure")

type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fc(nil)
}

type fakeTabungRepo struct {
	repository.TabungRepository
	rows map[string]*model.Tabung
}

func newFakeTabungRepo(codes ...string) *fakeTabungRepo {
	r := &fakeTabungRepo{rows: map[string]*model.Tabung{}}
	for _, c := range codes {
		r.rows[c] = &model.Tabung{KodeTabung: c, SeriTabung: "SERI-" + c, TahunTabung: 2020}
	}
	return r
}

func (r *fakeTabungRepo) FindByKode(ctx context.Context, kode string) (*model.Tabung, error) {
	t, ok := r.rows[kode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeTabungRepo) FindByKodes(ctx context.Context, kodes []string) ([]model.Tabung, error) {
	out := []model.Tabung{}
	for _, k := range kodes {
		if t, ok := r.rows[k]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTabungRepo) FindExistingCodes(ctx context.Context, kodes []string) ([]string, error) {
	out := []string{}
	for _, k := range kodes {
		if _, ok := r.rows[k]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeTabungRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

type fakeStokRepo struct {
	repository.StokRepository
	rows       map[string]*model.StokTabung
	failOn     map[string]error
	upsertLog  []string
	summary    []repository.LokasiSummary
	listResult []model.StokTabung
	listTotal  int64
}

func newFakeStokRepo() *fakeStokRepo {
	return &fakeStokRepo{rows: map[string]*model.StokTabung{}, failOn: map[string]error{}}
}

func (r *fakeStokRepo) put(kode string, status model.StatusTabung, lokasi string, volume int64) {
	r.rows[kode] = &model.StokTabung{
		KodeTabung: kode,
		Status:     status,
		Lokasi:     lokasi,
		Volume:     decimal.NewFromInt(volume),
	}
}

func (r *fakeStokRepo) Upsert(ctx context.Context, tx *gorm.DB, in repository.StokUpsert) (model.StokAction, error) {
	r.upsertLog = append(r.upsertLog, in.KodeTabung)
	if err := r.failOn[in.KodeTabung]; err != nil {
		return model.StokError, err
	}
	if row, ok := r.rows[in.KodeTabung]; ok {
		row.Status = in.Status
		row.Lokasi = in.Lokasi
		row.TanggalUpdate = in.At
		if in.Volume != nil {
			row.Volume = *in.Volume
		}
		return model.StokUpdated, nil
	}
	row := &model.StokTabung{
		KodeTabung:    in.KodeTabung,
		Status:        in.Status,
		Lokasi:        in.Lokasi,
		Volume:        decimal.Zero,
		TanggalUpdate: in.At,
	}
	if in.Volume != nil {
		row.Volume = *in.Volume
	}
	r.rows[in.KodeTabung] = row
	return model.StokInserted, nil
}

func (r *fakeStokRepo) Relocate(ctx context.Context, tx *gorm.DB, kode, lokasi string, status model.StatusTabung, at time.Time, by string) (bool, error) {
	row, ok := r.rows[kode]
	if !ok {
		return false, nil
	}
	row.Lokasi = lokasi
	if status != "" {
		row.Status = status
	}
	row.TanggalUpdate = at
	return true, nil
}

func (r *fakeStokRepo) FindVolumes(ctx context.Context, tx *gorm.DB, kodes []string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, k := range kodes {
		if row, ok := r.rows[k]; ok {
			out[k] = row.Volume
		}
	}
	return out, nil
}

func (r *fakeStokRepo) FindByKode(ctx context.Context, kode string) (*model.StokTabung, error) {
	row, ok := r.rows[kode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (r *fakeStokRepo) FindByKodes(ctx context.Context, kodes []string) ([]model.StokTabung, error) {
	out := []model.StokTabung{}
	for _, k := range kodes {
		if row, ok := r.rows[k]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeStokRepo) FindByLokasi(ctx context.Context, q repository.StokQuery) ([]model.StokTabung, int64, error) {
	if r.listResult == nil {
		return []model.StokTabung{}, 0, nil
	}
	return r.listResult, r.listTotal, nil
}

func (r *fakeStokRepo) SummaryByLokasi(ctx context.Context, lokasi string) (*repository.LokasiSummary, error) {
	s := repository.LokasiSummary{Lokasi: lokasi, TotalVolume: decimal.Zero}
	for _, row := range r.rows {
		if row.Lokasi != lokasi {
			continue
		}
		s.Total++
		switch row.Status {
		case model.StatusIsi:
			s.Isi++
		case model.StatusKosong:
			s.Kosong++
		case model.StatusRusak:
			s.Rusak++
		}
		s.TotalVolume = s.TotalVolume.Add(row.Volume)
	}
	return &s, nil
}

func (r *fakeStokRepo) SummaryPerLokasi(ctx context.Context) ([]repository.LokasiSummary, error) {
	return r.summary, nil
}

type fakeAktivitasRepo struct {
	repository.AktivitasRepository
	created []*model.AktivitasTabung
	err     error
}

func (r *fakeAktivitasRepo) Create(ctx context.Context, tx *gorm.DB, a *model.AktivitasTabung) error {
	if r.err != nil {
		return r.err
	}
	a.ID = uuid.New()
	r.created = append(r.created, a)
	return nil
}

func (r *fakeAktivitasRepo) CountByTanggal(ctx context.Context, tanggal string) (int64, error) {
	var n int64
	for _, a := range r.created {
		if a.Tanggal == tanggal {
			n++
		}
	}
	return n, nil
}

type fakeSerahTerimaRepo struct {
	repository.SerahTerimaRepository
	existing map[string]bool
	created  []*model.SerahTerimaTabung
}

func (r *fakeSerahTerimaRepo) Create(ctx context.Context, tx *gorm.DB, record *model.SerahTerimaTabung) error {
	record.ID = uuid.New()
	r.created = append(r.created, record)
	return nil
}

func (r *fakeSerahTerimaRepo) ExistsBastID(ctx context.Context, tx *gorm.DB, bastID string) (bool, error) {
	return r.existing[bastID], nil
}

type fakeSaldoRepo struct {
	repository.SaldoRepository
	rows       map[string]decimal.Decimal
	decrements int

	listQuery   repository.SaldoQuery
	searchQuery string
	searchLimit int
	searchRows  []repository.SaldoRow
}

func (r *fakeSaldoRepo) List(ctx context.Context, q repository.SaldoQuery) ([]repository.SaldoRow, int64, error) {
	r.listQuery = q
	kodes := make([]string, 0, len(r.rows))
	for k := range r.rows {
		kodes = append(kodes, k)
	}
	sort.Strings(kodes)

	out := []repository.SaldoRow{}
	for _, k := range kodes {
		out = append(out, repository.SaldoRow{KodePelanggan: k, Saldo: r.rows[k]})
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaldoRepo) Search(ctx context.Context, query string, limit int) ([]repository.SaldoRow, error) {
	r.searchQuery = query
	r.searchLimit = limit
	if r.searchRows == nil {
		return []repository.SaldoRow{}, nil
	}
	return r.searchRows, nil
}

func (r *fakeSaldoRepo) Total(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, v := range r.rows {
		total = total.Add(v)
	}
	return total, nil
}

func (r *fakeSaldoRepo) FindByKode(ctx context.Context, kode string) (*model.SaldoPelanggan, error) {
	saldo, ok := r.rows[kode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.SaldoPelanggan{KodePelanggan: kode, Saldo: saldo}, nil
}

func (r *fakeSaldoRepo) Decrement(ctx context.Context, tx *gorm.DB, kode string, amount decimal.Decimal, by string) (decimal.Decimal, error) {
	r.decrements++
	next := r.rows[kode].Sub(amount).Round(2)
	r.rows[kode] = next
	return next, nil
}

type fakeLaporanRepo struct {
	repository.LaporanRepository
	created   []*model.LaporanPelanggan
	rows      []model.LaporanPelanggan
	daily     []repository.DailyStat
	lastQuery repository.LaporanQuery
}

func (r *fakeLaporanRepo) Create(ctx context.Context, tx *gorm.DB, line *model.LaporanPelanggan) error {
	line.ID = uuid.New()
	r.created = append(r.created, line)
	return nil
}

func (r *fakeLaporanRepo) List(ctx context.Context, q repository.LaporanQuery) ([]model.LaporanPelanggan, int64, error) {
	r.lastQuery = q
	if len(r.rows) == 0 {
		return []model.LaporanPelanggan{}, 0, nil
	}
	return r.rows, int64(len(r.rows)), nil
}

func (r *fakeLaporanRepo) ListRange(ctx context.Context, kode string, dari, sampai time.Time) ([]model.LaporanPelanggan, error) {
	out := []model.LaporanPelanggan{}
	for _, row := range r.rows {
		if !row.Tanggal.Before(dari) && row.Tanggal.Before(sampai) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tanggal.After(out[j].Tanggal) })
	return out, nil
}

func (r *fakeLaporanRepo) StatsByKeterangan(ctx context.Context, kode string, since time.Time) ([]repository.KeteranganStat, error) {
	return []repository.KeteranganStat{}, nil
}

func (r *fakeLaporanRepo) DailyTrend(ctx context.Context, kode string, since time.Time) ([]repository.DailyStat, error) {
	return r.daily, nil
}

type fakeVolumeRepo struct {
	repository.VolumeRepository
	created []*model.VolumeTabung
}

func (r *fakeVolumeRepo) Create(ctx context.Context, tx *gorm.DB, v *model.VolumeTabung) error {
	v.ID = uuid.New()
	r.created = append(r.created, v)
	return nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
	created []*model.Audit
}

func (r *fakeAuditRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Audit) error {
	a.ID = uuid.New()
	r.created = append(r.created, a)
	return nil
}

type fakePelangganRepo struct {
	repository.PelangganRepository
	rows map[string]*model.Pelanggan
}

func (r *fakePelangganRepo) FindByKode(ctx context.Context, kode string) (*model.Pelanggan, error) {
	p, ok := r.rows[kode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakePelangganRepo) FindByEmail(ctx context.Context, email string) (*model.Pelanggan, error) {
	for _, p := range r.rows {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePelangganRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakePelangganRepo) NamaByKodes(ctx context.Context, kodes []string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range kodes {
		if p, ok := r.rows[k]; ok {
			out[k] = p.NamaPelanggan
		}
	}
	return out, nil
}

type fakeTransactionRepo struct {
	repository.TransactionRepository
	trx     []*model.Transaction
	details []*model.DetailTransaksi
	err     error

	detailRows  []repository.DetailTransaksiRow
	detailQuery repository.DetailTransaksiQuery
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *gorm.DB, trx *model.Transaction) error {
	if r.err != nil {
		return r.err
	}
	trx.ID = uuid.New()
	r.trx = append(r.trx, trx)
	return nil
}

func (r *fakeTransactionRepo) CreateDetail(ctx context.Context, tx *gorm.DB, d *model.DetailTransaksi) error {
	d.ID = uuid.New()
	r.details = append(r.details, d)
	return nil
}

func (r *fakeTransactionRepo) FindByTrxID(ctx context.Context, trxID string) (*model.Transaction, error) {
	for _, t := range r.trx {
		if t.TrxID == trxID {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTransactionRepo) FindDetailByTrxID(ctx context.Context, trxID string) (*model.DetailTransaksi, error) {
	for _, d := range r.details {
		if d.TrxID == trxID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTransactionRepo) ListByPelanggan(ctx context.Context, kode string, page pagination.Params) ([]model.Transaction, int64, error) {
	out := []model.Transaction{}
	for _, t := range r.trx {
		if t.KodePelanggan == kode {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ListByPelangganRange(ctx context.Context, kode string, dari, sampai time.Time) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for _, t := range r.trx {
		if t.KodePelanggan == kode && !t.CreatedAt.Before(dari) && t.CreatedAt.Before(sampai) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTransactionRepo) FindDetailsByTrxIDs(ctx context.Context, trxIDs []string) ([]model.DetailTransaksi, error) {
	want := map[string]bool{}
	for _, id := range trxIDs {
		want[id] = true
	}
	out := []model.DetailTransaksi{}
	for _, d := range r.details {
		if want[d.TrxID] {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListDetail(ctx context.Context, q repository.DetailTransaksiQuery) ([]repository.DetailTransaksiRow, int64, error) {
	r.detailQuery = q
	if r.detailRows == nil {
		return []repository.DetailTransaksiRow{}, 0, nil
	}
	return r.detailRows, int64(len(r.detailRows)), nil
}

type fakeIDs struct {
	trx   int
	basts []string
}

func (f *fakeIDs) NextTrxID() string {
	f.trx++
	return fmt.Sprintf("TRX-%04d", f.trx)
}

func (f *fakeIDs) NextBastID() string {
	if len(f.basts) == 0 {
		return "ABCDEF12"
	}
	id := f.basts[0]
	f.basts = f.basts[1:]
	return id
}

type fakeHub struct {
	events []string
}

func (h *fakeHub) Publish(eventType string, data interface{}) {
	h.events = append(h.events, eventType)
}

// fixture merangkai service tulis di atas repository in-memory.
type fixture struct {
	tx          *fakeTx
	tabung      *fakeTabungRepo
	stok        *fakeStokRepo
	aktivitas   *fakeAktivitasRepo
	serahTerima *fakeSerahTerimaRepo
	saldo       *fakeSaldoRepo
	laporan     *fakeLaporanRepo
	volume      *fakeVolumeRepo
	audit       *fakeAuditRepo
	pelanggan   *fakePelangganRepo
	transaction *fakeTransactionRepo
	ids         *fakeIDs
	hub         *fakeHub

	ledger      LedgerService
	billing     BillingService
	fulfillment FulfillmentService
}

func newFixture(codes ...string) *fixture {
	f := &fixture{
		tx:          &fakeTx{},
		tabung:      newFakeTabungRepo(codes...),
		stok:        newFakeStokRepo(),
		aktivitas:   &fakeAktivitasRepo{},
		serahTerima: &fakeSerahTerimaRepo{existing: map[string]bool{}},
		saldo:       &fakeSaldoRepo{rows: map[string]decimal.Decimal{}},
		laporan:     &fakeLaporanRepo{},
		volume:      &fakeVolumeRepo{},
		audit:       &fakeAuditRepo{},
		pelanggan:   &fakePelangganRepo{rows: map[string]*model.Pelanggan{}},
		transaction: &fakeTransactionRepo{},
		ids:         &fakeIDs{},
		hub:         &fakeHub{},
	}

	ledger := NewLedgerService(f.tx, LedgerRepos{
		Tabung:      f.tabung,
		Stok:        f.stok,
		Aktivitas:   f.aktivitas,
		SerahTerima: f.serahTerima,
		Saldo:       f.saldo,
		Laporan:     f.laporan,
		Volume:      f.volume,
		Audit:       f.audit,
	}, f.ids, f.hub, nil, nil)
	ledger.(*ledgerService).now = func() time.Time { return fixedNow }

	billing := NewBillingService(f.tx, BillingRepos{
		Pelanggan:   f.pelanggan,
		Stok:        f.stok,
		Transaction: f.transaction,
		Saldo:       f.saldo,
		Laporan:     f.laporan,
	}, f.ids, f.hub, nil, nil)
	billing.(*billingService).now = func() time.Time { return fixedNow }

	f.ledger = ledger
	f.billing = billing
	f.fulfillment = NewFulfillmentService(ledger, billing, nil)
	return f
}

func (f *fixture) addPelanggan(kode string, harga, saldo int64) {
	f.pelanggan.rows[kode] = &model.Pelanggan{
		KodePelanggan: kode,
		NamaPelanggan: "Pelanggan " + kode,
		Email:         kode + "@example.com",
		HargaTabung:   decimal.NewFromInt(harga),
	}
	f.saldo.rows[kode] = decimal.NewFromInt(saldo)
}

var staff = Actor{ID: "7d0c6a5e-2f0b-4d8e-9a51-000000000001", Name: "Budi", Role: model.RoleDriver}
