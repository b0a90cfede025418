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

// Usage: create-user -email driver1@example.com -password rahasia -name "Budi" -role driver
func main() {
	email := flag.String("email", "", "email akun")
	password := flag.String("password", "", "password (min 6 karakter)")
	name := flag.String("name", "", "nama petugas")
	role := flag.String("role", "", "kepala_gudang | driver | operator | auditor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.Mode)
	defer log.Sync()

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	users := service.NewUserService(repository.NewUserRepo(db))
	user, err := users.CreateUser(context.Background(), &service.CreateUserRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
		Role:     *role,
	}, "cli")
	if err != nil {
		log.Fatal("create user failed", zap.String("email", *email), zap.Error(err))
	}

	log.Info("user created",
		zap.String("id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", user.Role))
}
