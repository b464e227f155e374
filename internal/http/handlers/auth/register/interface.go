package register

import (
	"context"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, email, password string) (*models.AuthUser, error)
}

// Metrics учитывает попытки регистрации.
type Metrics interface {
	Auth(op, outcome string)
}
