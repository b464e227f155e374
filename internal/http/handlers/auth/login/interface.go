package login

import (
	"context"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Service описывает вход пользователя.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.AuthUser, error)
}

// Metrics учитывает попытки входа.
type Metrics interface {
	Auth(op, outcome string)
}
