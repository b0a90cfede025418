package main

import (
	"context"
	"errors"

	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seedAdmin membuat akun kepala_gudang default bila belum ada.
func seedAdmin(ctx context.Context, email, password string, users service.UserService, userRepo repository.UserRepository, log *zap.Logger) {
	_, err := userRepo.FindByEmail(ctx, email)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("failed to check admin user", zap.Error(err))
		return
	}

	_, err = users.CreateUser(ctx, &service.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     "Kepala Gudang",
		Role:     model.RoleKepalaGudang,
	}, "system")
	if err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", email), zap.String("role", model.RoleKepalaGudang))
}
