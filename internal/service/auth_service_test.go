package service

import (
	"context"
	"testing"
	"time"

	"go-tabung-ws/internal/apperror"
	"go-tabung-ws/internal/model"
	"go-tabung-ws/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users   map[string]*model.User
	updated map[uuid.UUID]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}, updated: map[uuid.UUID]string{}}
}

func (r *fakeUserRepo) add(t *testing.T, email, password, role string, active bool) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: "User " + role, Role: role, IsActive: active}
	u.ID = uuid.New()
	require.NoError(t, u.SetPassword(password))
	r.users[email] = u
	return u
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword, updatedBy string) error {
	r.updated[userID] = hashedPassword
	for _, u := range r.users {
		if u.ID == userID {
			u.Password = hashedPassword
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo, *fakePelangganRepo, *jwt.Manager) {
	users := newFakeUserRepo()
	pelanggan := &fakePelangganRepo{rows: map[string]*model.Pelanggan{}}
	tokens := jwt.NewManager("test-secret", time.Hour)
	return NewAuthService(users, pelanggan, tokens, nil), users, pelanggan, tokens
}

func TestLoginStaff(t *testing.T) {
	svc, users, _, tokens := newAuthFixture(t)
	users.add(t, "driver@example.com", "rahasia", model.RoleDriver, true)
	users.add(t, "off@example.com", "rahasia", model.RoleOperator, false)
	users.add(t, "aneh@example.com", "rahasia", "superuser", true)

	resp, err := svc.LoginStaff(context.Background(), &LoginRequest{Email: " Driver@Example.com ", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDriver, resp.Role.Code)
	assert.Contains(t, resp.Privileges, model.PrivActivityBill)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDriver, claims.Role)
	assert.Empty(t, claims.KodePelanggan)

	tests := []struct {
		name string
		req  *LoginRequest
		kind apperror.Kind
	}{
		{"password salah", &LoginRequest{Email: "driver@example.com", Password: "salah"}, apperror.KindUnauthorized},
		{"email tidak ada", &LoginRequest{Email: "x@example.com", Password: "rahasia"}, apperror.KindUnauthorized},
		{"nonaktif", &LoginRequest{Email: "off@example.com", Password: "rahasia"}, apperror.KindUnauthorized},
		{"role tidak dikenal", &LoginRequest{Email: "aneh@example.com", Password: "rahasia"}, apperror.KindUnauthorized},
		{"email tidak valid", &LoginRequest{Email: "bukan-email", Password: "rahasia"}, apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LoginStaff(context.Background(), tt.req)
			assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestLoginPelanggan(t *testing.T) {
	svc, _, pelanggan, tokens := newAuthFixture(t)
	p := &model.Pelanggan{KodePelanggan: "CUST001", NamaPelanggan: "Toko Maju", Email: "maju@example.com"}
	p.ID = uuid.New()
	require.NoError(t, p.SetPassword("rahasia"))
	pelanggan.rows["CUST001"] = p

	resp, err := svc.LoginPelanggan(context.Background(), &LoginRequest{Email: "maju@example.com", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "CUST001", resp.Pelanggan.KodePelanggan)
	assert.Equal(t, []string{model.PrivSelfRead}, resp.Privileges)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RolePelanggan, claims.Role)
	assert.Equal(t, "CUST001", claims.KodePelanggan)

	_, err = svc.LoginPelanggan(context.Background(), &LoginRequest{Email: "maju@example.com", Password: "salah"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestValidateToken(t *testing.T) {
	svc, users, _, tokens := newAuthFixture(t)
	u := users.add(t, "kg@example.com", "rahasia", model.RoleKepalaGudang, true)

	token, err := tokens.GenerateToken(jwt.Principal{UserID: u.ID.String(), Name: u.Name, Role: u.Role})
	require.NoError(t, err)

	resp, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleKepalaGudang, resp.Role)

	u.IsActive = false
	_, err = svc.ValidateToken(context.Background(), token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = svc.ValidateToken(context.Background(), "garbage")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	orphan, err := tokens.GenerateToken(jwt.Principal{UserID: "p-1", Role: model.RolePelanggan, KodePelanggan: "CUST404"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), orphan)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	u := users.add(t, "op@example.com", "lama123", model.RoleOperator, true)
	actor := Actor{ID: u.ID.String(), Role: u.Role}

	err := svc.ChangePassword(context.Background(), actor, &ChangePasswordRequest{OldPassword: "salah", NewPassword: "baru123"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(context.Background(), actor, &ChangePasswordRequest{OldPassword: "lama123", NewPassword: "123"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, svc.ChangePassword(context.Background(), actor, &ChangePasswordRequest{OldPassword: "lama123", NewPassword: "baru123"}))
	assert.True(t, u.CheckPassword("baru123"))
	assert.Contains(t, users.updated, u.ID)
}

func TestUserService(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users)

	u, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Email:    "Baru@Example.com",
		Password: "rahasia",
		Name:     "Baru",
		Role:     model.RoleAuditor,
	}, "cli")
	require.NoError(t, err)
	assert.Equal(t, "baru@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.True(t, u.CheckPassword("rahasia"))

	_, err = svc.CreateUser(context.Background(), &CreateUserRequest{
		Email: "baru@example.com", Password: "rahasia", Name: "Lagi", Role: model.RoleAuditor,
	}, "cli")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.CreateUser(context.Background(), &CreateUserRequest{
		Email: "p@example.com", Password: "rahasia", Name: "P", Role: model.RolePelanggan,
	}, "cli")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, svc.ResetPassword(context.Background(), "BARU@example.com", "gantibaru", "cli"))
	assert.True(t, u.CheckPassword("gantibaru"))

	err = svc.ResetPassword(context.Background(), "tidakada@example.com", "gantibaru", "cli")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
