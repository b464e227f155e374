// Package password реализует хеширование и проверку паролей пользователей.
//
// GetHash создаёт bcrypt-хэш для хранения в PostgreSQL.
// Compare сверяет сохранённое значение с введённым паролем: bcrypt-хэш проверяется
// через bcrypt, остальные значения считаются открытым текстом мок-таблицы.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, если пароль не совпадает с сохранённым значением.
var ErrMismatch = errors.New("password mismatch")

// GetHash принимает пароль пользователя и возвращает его bcrypt-хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// IsHash сообщает, похоже ли значение на bcrypt-хэш.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// Compare сравнивает сохранённое значение с введённым паролем.
//
// Возвращает nil при совпадении, иначе — ошибку, оборачивающую ErrMismatch.
func Compare(stored, raw string) error {
	const op = "password.Compare"
	if IsHash(stored) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw)); err != nil {
			return fmt.Errorf("%s: %w", op, ErrMismatch)
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(raw)) != 1 {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	return nil
}
