package service

import (
	"context"
	"strings"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/internal/repository"
	"go-tabung-ws/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrUserInactive       = apperror.Unauthorized("user account is inactive")
	ErrWrongPassword      = apperror.Validation("current password is incorrect")
)

type AuthService interface {
	LoginStaff(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	LoginPelanggan(ctx context.Context, req *LoginRequest) (*PelangganLoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type PelangganProfile struct {
	ID            uuid.UUID `json:"id"`
	KodePelanggan string    `json:"kode_pelanggan"`
	NamaPelanggan string    `json:"nama_pelanggan"`
	Email         string    `json:"email"`
	NoHP          string    `json:"no_hp"`
	Alamat        string    `json:"alamat"`
}

func toPelangganProfile(p *model.Pelanggan) PelangganProfile {
	return PelangganProfile{
		ID:            p.ID,
		KodePelanggan: p.KodePelanggan,
		NamaPelanggan: p.NamaPelanggan,
		Email:         p.Email,
		NoHP:          p.NoHP,
		Alamat:        p.Alamat,
	}
}

type PelangganLoginResponse struct {
	Token      string           `json:"token"`
	Pelanggan  PelangganProfile `json:"pelanggan"`
	Privileges []string         `json:"privileges"`
}

type TokenValidationResponse struct {
	UserID        string   `json:"user_id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	KodePelanggan string   `json:"kode_pelanggan,omitempty"`
	Privileges    []string `json:"privileges"`
}

type authService struct {
	userRepo      repository.UserRepository
	pelangganRepo repository.PelangganRepository
	tokens        *jwt.Manager
	log           *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, pelangganRepo repository.PelangganRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo:      userRepo,
		pelangganRepo: pelangganRepo,
		tokens:        tokens,
		log:           log,
	}
}

func (s *authService) LoginStaff(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req == nil {
		return nil, apperror.Validation("Request body is required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !isNotFound(err) {
			return nil, apperror.Storage("Gagal membaca user", err)
		}
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Role harus role petugas yang dikenal
	role, ok := model.RoleByCode(user.Role)
	if !ok || !model.IsStaffRole(user.Role) {
		s.log.Warn("login with unknown role", zap.String("email", user.Email), zap.String("role", user.Role))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(jwt.Principal{
		UserID: user.ID.String(),
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, apperror.Storage("failed to generate token", err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       &role,
		Privileges: model.PrivilegesFor(user.Role),
	}, nil
}

func (s *authService) LoginPelanggan(ctx context.Context, req *LoginRequest) (*PelangganLoginResponse, error) {
	if req == nil {
		return nil, apperror.Validation("Request body is required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	pelanggan, err := s.pelangganRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !isNotFound(err) {
			return nil, apperror.Storage("Gagal membaca pelanggan", err)
		}
		return nil, ErrInvalidCredentials
	}
	if !pelanggan.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(jwt.Principal{
		UserID:        pelanggan.ID.String(),
		Name:          pelanggan.NamaPelanggan,
		Role:          model.RolePelanggan,
		KodePelanggan: pelanggan.KodePelanggan,
	})
	if err != nil {
		return nil, apperror.Storage("failed to generate token", err)
	}

	return &PelangganLoginResponse{
		Token:      token,
		Pelanggan:  toPelangganProfile(pelanggan),
		Privileges: model.PrivilegesFor(model.RolePelanggan),
	}, nil
}

// ValidateToken memverifikasi token lalu memastikan pemiliknya masih ada.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.Unauthorized(err.Error())
	}

	if claims.Role == model.RolePelanggan {
		if _, err := s.pelangganRepo.FindByKode(ctx, claims.KodePelanggan); err != nil {
			return nil, apperror.Unauthorized("pelanggan not found")
		}
	} else {
		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			return nil, apperror.Unauthorized(jwt.ErrInvalidToken.Error())
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.Unauthorized(ErrUserNotFound.Message)
		}
		if !user.IsActive {
			return nil, ErrUserInactive
		}
	}

	return &TokenValidationResponse{
		UserID:        claims.UserID,
		Name:          claims.Name,
		Role:          claims.Role,
		KodePelanggan: claims.KodePelanggan,
		Privileges:    model.PrivilegesFor(claims.Role),
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error {
	if req == nil {
		return apperror.Validation("Request body is required")
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	id, err := uuid.Parse(actor.ID)
	if err != nil {
		return ErrUserNotFound
	}

	// 1. Find user
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, ErrUserNotFound.Message)
	}

	// 2. Verify old password
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperror.Storage("failed to hash new password", err)
	}

	// 4. Update in database
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password, actor.ID); err != nil {
		return apperror.Storage("Gagal menyimpan password", err)
	}
	return nil
}
