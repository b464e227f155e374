// Package licence реализует демонстрационный сервис активации лицензий:
// проверку ключа по «магическим» значениям и выпуск лицензии на год.
package licence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Магические ключи, имитирующие отказы сервиса лицензий.
const (
	KeyInvalid = "INVALID"
	KeyExpired = "EXPIRED"
	KeyLimit   = "LIMIT"
)

// LicenseType — тип выдаваемой лицензии.
const LicenseType = "Pro License"

// Duration — срок действия выдаваемой лицензии.
const Duration = 365 * 24 * time.Hour

// Features — возможности, входящие в выдаваемую лицензию.
var Features = []string{"premium-features", "cloud-backup", "priority-support"}

// Error — отказ в активации с текстом для пользователя.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Отказы в активации.
var (
	ErrInvalidKey   = &Error{Message: "Invalid license key"}
	ErrExpiredKey   = &Error{Message: "License key has expired"}
	ErrLimitReached = &Error{Message: "Activation limit reached for this license"}
)

// CheckKey возвращает отказ для магического ключа или nil для любого другого.
func CheckKey(key string) error {
	switch key {
	case KeyInvalid:
		return ErrInvalidKey
	case KeyExpired:
		return ErrExpiredKey
	case KeyLimit:
		return ErrLimitReached
	}
	return nil
}

// NewToken собирает полезную нагрузку токена лицензии, активированной в момент now.
func NewToken(email string, now time.Time) models.LicenseToken {
	exp := now.Add(Duration).UTC()
	return models.LicenseToken{
		Email:       email,
		Features:    append([]string(nil), Features...),
		LicenseType: LicenseType,
		ActivatedAt: now.UTC(),
		Expiration:  &exp,
	}
}

// NewRecord собирает запись лицензии, активированной в момент now.
func NewRecord(email, licenseKey string, now time.Time) models.LicenseRecord {
	exp := now.Add(Duration).UTC()
	return models.LicenseRecord{
		Email:       email,
		LicenseKey:  licenseKey,
		Features:    append([]string(nil), Features...),
		ActivatedAt: now.UTC(),
		ExpiresAt:   &exp,
	}
}

// Signer подписывает токены лицензий и проверяет выпущенные.
type Signer interface {
	GenerateToken(token models.LicenseToken) (string, error)
	ParseToken(tokenStr string) (*jwt.LicenseClaims, error)
}

// ErrInvalidToken — токен не выпущен этим сервисом или истёк.
var ErrInvalidToken = errors.New("invalid licence token")

// Activation — результат успешной активации.
type Activation struct {
	License models.LicenseRecord `json:"license"`
	Token   string               `json:"token"`
}

// Service выдаёт лицензии по ключу.
type Service struct {
	signer Signer
	now    func() time.Time
}

// New создаёт Service.
func New(signer Signer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{signer: signer, now: now}
}

// Activate проверяет ключ и выпускает запись лицензии вместе с подписанным токеном.
// Отказ по ключу возвращается как *Error.
func (s *Service) Activate(ctx context.Context, email, licenseKey string) (*Activation, error) {
	const op = "licence.Activate"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := CheckKey(licenseKey); err != nil {
		return nil, err
	}

	now := s.now()
	tok, err := s.signer.GenerateToken(NewToken(email, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Activation{
		License: NewRecord(email, licenseKey, now),
		Token:   tok,
	}, nil
}

// Verify проверяет подпись и срок действия токена и возвращает его полезную нагрузку.
func (s *Service) Verify(ctx context.Context, tok string) (*models.LicenseToken, error) {
	const op = "licence.Verify"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, err := s.signer.ParseToken(tok)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	lic := claims.License()
	return &lic, nil
}

// AsError извлекает отказ в активации из цепочки ошибок.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
