package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-tabung-ws/internal/repository"
	"go-tabung-ws/internal/service"
	"go-tabung-ws/pkg/config"
	"go-tabung-ws/pkg/database"
	"go-tabung-ws/pkg/logger"

	"go.uber.org/zap"
)

// Usage: reset-password -email admin@example.com -password rahasia123
func main() {
	email := flag.String("email", "admin@example.com", "email akun petugas")
	password := flag.String("password", "", "password baru (min 6 karakter)")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.Mode)
	defer log.Sync()

	if *password == "" {
		log.Fatal("password is required, use -password")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	// 3. Reset
	users := service.NewUserService(repository.NewUserRepo(db))
	if err := users.ResetPassword(context.Background(), *email, *password, "cli"); err != nil {
		log.Fatal("reset password failed", zap.String("email", *email), zap.Error(err))
	}

	log.Info("password has been reset", zap.String("email", *email))
}
