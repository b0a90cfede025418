package main

import (
	"go-tabung-ws/internal/handler"
	"go-tabung-ws/internal/metrics"
	"go-tabung-ws/internal/middleware"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/ws"
	"go-tabung-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type handlers struct {
	auth      *handler.AuthHandler
	role      *handler.RoleHandler
	activity  *handler.ActivityHandler
	stok      *handler.StokHandler
	laporan   *handler.LaporanHandler
	history   *handler.HistoryHandler
	dashboard *handler.DashboardHandler
	pelanggan *handler.PelangganHandler
}

func registerRoutes(app *fiber.App, h handlers, tokens *jwt.Manager, wsHub *ws.Hub, m *metrics.Metrics, metricsToken string) {
	priv := middleware.RequirePrivilege

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/login", h.auth.Login)
	api.Post("/auth/pelanggan", h.auth.LoginPelanggan)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(tokens))

	protected.Get("/auth/validate", h.auth.Validate)
	protected.Post("/auth/reset-password", priv(model.PrivAccountUpdate), h.auth.ResetPassword)
	protected.Get("/roles", h.role.GetRoles)

	// Ledger
	protected.Post("/tabung_activity", priv(model.PrivActivityRecord), h.activity.RecordActivity)
	protected.Post("/aktivitas-transaksi", priv(model.PrivActivityBill), h.activity.RecordWithBilling)
	protected.Post("/laporan_pelanggan", priv(model.PrivCustomerReturn), h.activity.RecordReturn)
	protected.Post("/volume/simpan", priv(model.PrivVolumeRecord), h.activity.RecordVolume)
	protected.Post("/audit/simpan", priv(model.PrivAuditRecord), h.activity.RecordAudit)
	protected.Get("/audit/search/:kode_tabung", priv(model.PrivReportRead), h.activity.SearchAudit)

	// Stok
	stock := priv(model.PrivStockRead)
	protected.Get("/stok-tabung/ringkasan", stock, h.stok.Ringkasan)
	protected.Get("/stok-tabung/lokasi/:lokasi", stock, h.stok.ListByLokasi)
	protected.Get("/stok-tabung/cari/:kode_tabung", stock, h.stok.Cari)
	protected.Get("/cek-tabung/:kode_tabung", stock, h.stok.CekTabung)
	protected.Get("/gudang/:kode_gudang", stock, h.stok.Gudang)
	protected.Get("/dashboard", middleware.RequireAnyPrivilege(model.PrivStockRead, model.PrivReportRead), h.dashboard.GetDashboardStats)

	// Laporan & riwayat
	report := priv(model.PrivReportRead)
	protected.Get("/laporan-pelanggan/detail/:id", report, h.laporan.Detail)
	protected.Get("/laporan-pelanggan/statistik/:kode_pelanggan", report, h.laporan.Statistik)
	protected.Get("/laporan-pelanggan/semua/all", report, h.laporan.ListAll)
	protected.Get("/laporan-pelanggan/:kode_pelanggan", report, h.laporan.List)
	protected.Get("/laporan-pelanggan/:kode_pelanggan/:tahun/:bulan", report, h.laporan.Monthly)

	protected.Get("/aktivitas-tabung", report, h.history.ListAktivitas)
	protected.Get("/aktivitas-tabung/statistik/summary", report, h.history.AktivitasStats)
	protected.Get("/aktivitas-tabung/export", report, h.history.ExportAktivitas)
	protected.Get("/aktivitas-tabung/:id", report, h.history.AktivitasDetail)

	protected.Get("/history-volume/all", report, h.history.ListVolume)
	protected.Get("/history-volume/statistik", report, h.history.VolumeStats)
	protected.Get("/history-volume/export", report, h.history.ExportVolume)
	protected.Get("/history-volume/detail/:id", report, h.history.VolumeDetail)

	// Pelanggan (staff)
	protected.Get("/pelanggan/:kode_pelanggan", priv(model.PrivCustomerRead), h.pelanggan.Profile)
	protected.Get("/saldo-list", priv(model.PrivCustomerRead), h.pelanggan.SaldoList)
	protected.Get("/saldo/search/:query", priv(model.PrivCustomerRead), h.pelanggan.SearchSaldo)
	protected.Get("/saldo/:kode_pelanggan", priv(model.PrivCustomerRead), h.pelanggan.Saldo)
	protected.Get("/detail-transaksi/:trx_id", priv(model.PrivTransactionRead), h.pelanggan.DetailTransaksi)
	protected.Get("/list-detail-transaksi", priv(model.PrivTransactionRead), h.pelanggan.ListDetailTransaksi)

	// Pelanggan (data sendiri)
	self := priv(model.PrivSelfRead)
	protected.Get("/me/saldo", self, h.pelanggan.MySaldo)
	protected.Get("/me/transaksi", self, h.pelanggan.MyTransaksi)
	protected.Get("/me/laporan", self, h.laporan.Mine)
	protected.Get("/me/riwayat/:tahun/:bulan", self, h.pelanggan.MyRiwayat)

	registerOps(app, m, metricsToken)
	registerRealtime(app, tokens, wsHub)
}

// registerOps: endpoint scrape prometheus, dilindungi token statis.
func registerOps(app *fiber.App, m *metrics.Metrics, metricsToken string) {
	app.Get("/metrics", middleware.RequireStaticToken(metricsToken), adaptor.HTTPHandler(m.Handler()))
}

// registerRealtime: event billing membawa saldo pelanggan, jadi hanya staf
// dengan stock:read yang boleh berlangganan.
func registerRealtime(app *fiber.App, tokens *jwt.Manager, wsHub *ws.Hub) {
	app.Use("/ws",
		middleware.RequireWSAuth(tokens),
		middleware.RequirePrivilege(model.PrivStockRead),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
