package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teacher_portal/internal/model"
	"teacher_portal/internal/repository"
	"teacher_portal/internal/utils"

	"github.com/jackc/pgx/v5"
)

var (
	ErrUserAlreadyExists = errors.New("user with this email or mobile already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// UserService provides user directory operations
type UserService interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	ListUsers(ctx context.Context, search string, pagination model.PaginationParams) ([]model.User, int, error)
	UpdateUser(ctx context.Context, id int, patch model.UpdateUserRequest) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// CreateUser checks uniqueness, hashes the password and persists the user.
// The username column always mirrors the mobile number. The pre-check gives
// the friendly error; the store's unique indexes are the real guard, so a
// racing duplicate insert is translated to the same conflict.
func (s *userService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	existing, err := s.userRepo.FindByEmailOrMobile(ctx, req.Email, req.MobileNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		MobileNo:     req.MobileNo,
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hashedPassword,
		Username:     req.MobileNo, // username is always the mobile number
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return user, nil
}

// ListUsers returns the page of users matching the optional full-name search
// plus the total match count before pagination. Zero matches is not an error.
func (s *userService) ListUsers(ctx context.Context, search string, pagination model.PaginationParams) ([]model.User, int, error) {
	users, total, err := s.userRepo.List(ctx, search, pagination)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser applies a partial patch to an existing user
func (s *userService) UpdateUser(ctx context.Context, id int, patch model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
