// Package jwt выпускает и проверяет подписанные токены лицензий.
//
// Полезная нагрузка токена совпадает с models.LicenseToken, поэтому
// сессионный декодер портала читает её без проверки подписи.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Maker описывает выпуск и разбор токенов лицензий.
type Maker interface {
	GenerateToken(token models.LicenseToken) (string, error)
	ParseToken(tokenStr string) (*LicenseClaims, error)
}

// MakerImpl реализует Maker на HS256 с общим секретным ключом.
type MakerImpl struct {
	secretKey string
	now       func() time.Time
}

// NewJWTMaker создаёт экземпляр MakerImpl с секретным ключом.
func NewJWTMaker(secretKey string) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		now:       time.Now,
	}
}
