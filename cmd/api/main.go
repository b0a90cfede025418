package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-tabung-ws/internal/handler"
	"go-tabung-ws/internal/metrics"
	"go-tabung-ws/internal/middleware"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/internal/service"
	"go-tabung-ws/internal/ws"
	"go-tabung-ws/pkg/config"
	"go-tabung-ws/pkg/database"
	"go-tabung-ws/pkg/idgen"
	"go-tabung-ws/pkg/jwt"
	"go-tabung-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Mode)
	defer log.Sync()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	if err := db.AutoMigrate(model.Migratables()...); err != nil {
		log.Fatal("auto migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Realtime hub, metrics, id generator
	wsHub := ws.NewHub(log.Named("ws"))
	go wsHub.Run(ctx)

	m := metrics.New()

	ids, err := idgen.New(cfg.NodeID)
	if err != nil {
		log.Fatal("invalid NODE_ID", zap.Int64("node_id", cfg.NodeID), zap.Error(err))
	}
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	tabungRepo := repository.NewTabungRepo(db)
	stokRepo := repository.NewStokRepo(db)
	aktivitasRepo := repository.NewAktivitasRepo(db)
	serahTerimaRepo := repository.NewSerahTerimaRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	pelangganRepo := repository.NewPelangganRepo(db)
	saldoRepo := repository.NewSaldoRepo(db)
	laporanRepo := repository.NewLaporanRepo(db)
	gudangRepo := repository.NewGudangRepo(db)
	volumeRepo := repository.NewVolumeRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	userService := service.NewUserService(userRepo)
	seedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, userService, userRepo, log)

	ledgerService := service.NewLedgerService(db, service.LedgerRepos{
		Tabung:      tabungRepo,
		Stok:        stokRepo,
		Aktivitas:   aktivitasRepo,
		SerahTerima: serahTerimaRepo,
		Saldo:       saldoRepo,
		Laporan:     laporanRepo,
		Volume:      volumeRepo,
		Audit:       auditRepo,
	}, ids, wsHub, m, log.Named("ledger"))
	billingService := service.NewBillingService(db, service.BillingRepos{
		Pelanggan:   pelangganRepo,
		Stok:        stokRepo,
		Transaction: transactionRepo,
		Saldo:       saldoRepo,
		Laporan:     laporanRepo,
	}, ids, wsHub, m, log.Named("billing"))
	fulfillmentService := service.NewFulfillmentService(ledgerService, billingService, log.Named("fulfillment"))

	authService := service.NewAuthService(userRepo, pelangganRepo, tokens, log.Named("auth"))
	stockService := service.NewStockService(stokRepo, tabungRepo, gudangRepo)
	reportService := service.NewReportService(laporanRepo, pelangganRepo, saldoRepo)
	historyService := service.NewHistoryService(aktivitasRepo, volumeRepo, tabungRepo, stokRepo)
	dashService := service.NewDashboardService(tabungRepo, stokRepo, pelangganRepo, aktivitasRepo)
	customerService := service.NewCustomerService(pelangganRepo, saldoRepo, transactionRepo)

	h := handlers{
		auth:      handler.NewAuthHandler(authService),
		role:      handler.NewRoleHandler(),
		activity:  handler.NewActivityHandler(ledgerService, fulfillmentService),
		stok:      handler.NewStokHandler(stockService),
		laporan:   handler.NewLaporanHandler(reportService),
		history:   handler.NewHistoryHandler(historyService),
		dashboard: handler.NewDashboardHandler(dashService),
		pelanggan: handler.NewPelangganHandler(customerService),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Tabung Warehouse API v1.0",
		ErrorHandler: handler.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(middleware.Metrics(m))

	// 6. Routes
	registerRoutes(app, h, tokens, wsHub, m, cfg.MetricsToken)

	// 7. Graceful Shutdown
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}
