package service

import (
	"context"
	"testing"
	"time"

	"teacher_portal/internal/model"
	"teacher_portal/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginFixture(t *testing.T) (*fakeUserRepo, *utils.JWTUtil, AuthService) {
	t.Helper()
	repo := newFakeUserRepo()
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	svc := NewAuthService(repo, jwtUtil)

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	repo.users[1] = &model.User{
		ID:           1,
		MobileNo:     "9998887777",
		Email:        "john@example.com",
		Role:         model.RoleSuperAdmin,
		PasswordHash: hash,
		Username:     "9998887777",
	}
	repo.nextID = 2
	return repo, jwtUtil, svc
}

func TestAuthService_Login(t *testing.T) {
	_, jwtUtil, svc := newLoginFixture(t)

	token, err := svc.Login(context.Background(), "9998887777", "password123")

	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtUtil.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	_, _, svc := newLoginFixture(t)

	_, err := svc.Login(context.Background(), "9998887777", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	_, _, svc := newLoginFixture(t)

	_, err := svc.Login(context.Background(), "0000000000", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
