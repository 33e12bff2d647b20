package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/paperarchive/internal/app/models"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/apperrors"
	"github.com/yigit/paperarchive/internal/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *memUserStore, *auth.JWTService) {
	t.Helper()
	prev := auth.BcryptCost
	auth.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { auth.BcryptCost = prev })

	users := newMemUserStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "service-test-secret",
		AccessTokenExp: 15 * time.Minute,
		TokenIssuer:    "paperarchive-test",
	})
	return NewAuthService(users, jwtService, zerolog.New(io.Discard)), users, jwtService
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, users, jwtService := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:       "  Deniz  ",
		Email:      " Deniz@Uni.Test ",
		Password:   "secret123",
		University: "ODTU",
	})
	require.NoError(t, err)

	assert.Equal(t, "Deniz", resp.User.Name)
	assert.Equal(t, "deniz@uni.test", resp.User.Email)
	assert.Equal(t, "ODTU", resp.User.University)
	assert.Equal(t, string(models.RoleUser), resp.User.Role)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, int64(900), resp.Token.ExpiresIn)

	claims, err := jwtService.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	stored := users.users[resp.User.ID]
	assert.NotEqual(t, "secret123", stored.Password)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "DENIZ@uni.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	req := &dto.RegisterRequest{Name: "A", Email: "a@uni.test", Password: "secret123"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "B", Email: "A@uni.test", Password: "other123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_RegisterBlankName(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "   ", Email: "a@uni.test", Password: "secret123"})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@uni.test", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "a@uni.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@uni.test", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@uni.test", Password: "secret123"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@uni.test", me.Email)
}
