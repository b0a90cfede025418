package service

import (
	"context"
	"strings"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
)

var ErrEmailExists = apperror.Validation("email already exists")

// UserService mengelola akun petugas dari command line (create-user, reset-password).
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error)
	ResetPassword(ctx context.Context, email, newPassword, updaterID string) error
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=kepala_gudang driver operator auditor"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, creatorID string) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// 1. Validate request
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 2. Check if email already exists
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !isNotFound(err) {
		return nil, apperror.Storage("Gagal membaca user", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	// 3. Create user
	user := &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.Storage("failed to hash password", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.Storage("Gagal menyimpan user", err)
	}
	return user, nil
}

// ResetPassword mengganti password tanpa password lama (akses admin).
func (s *userService) ResetPassword(ctx context.Context, email, newPassword, updaterID string) error {
	if len(newPassword) < 6 {
		return apperror.Validation("password minimal 6 karakter")
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return lookupError(err, ErrUserNotFound.Message)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return apperror.Storage("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password, updaterID); err != nil {
		return apperror.Storage("Gagal menyimpan password", err)
	}
	return nil
}
