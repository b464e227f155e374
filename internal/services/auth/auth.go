// Package auth реализует регистрацию и вход по email и паролю поверх таблицы users.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/licence-portal/internal/lib/password"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/storage"
)

// MinPasswordLength — минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// Error — отказ в регистрации или входе с текстом для пользователя.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Отказы в регистрации и входе.
var (
	ErrMissingCredentials = &Error{Message: "Email and password are required"}
	ErrPasswordTooShort   = &Error{Message: "Password must be at least 6 characters"}
	ErrUserExists         = &Error{Message: "User with this email already exists"}
	ErrInvalidCredentials = &Error{Message: "Invalid email or password"}
)

// UserRepository описывает контракт для работы с пользователями.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя или ошибку storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser сохраняет пользователя или возвращает storage.ErrUserExists.
	CreateUser(ctx context.Context, email, password string) (*models.User, error)
}

// Service отвечает за регистрацию и вход.
type Service struct {
	users UserRepository
}

// New создаёт Service.
func New(users UserRepository) *Service {
	return &Service{users: users}
}

// Register проверяет данные и создаёт пользователя.
func (s *Service) Register(ctx context.Context, email, rawPassword string) (*models.AuthUser, error) {
	const op = "auth.Register"

	if email == "" || rawPassword == "" {
		return nil, ErrMissingCredentials
	}
	if len(rawPassword) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, email, rawPassword)
	if errors.Is(err, storage.ErrUserExists) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u := user.Public()
	return &u, nil
}

// Login проверяет email и пароль.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.AuthUser, error) {
	const op = "auth.Login"

	if email == "" || rawPassword == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.Password, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := user.Public()
	return &u, nil
}
