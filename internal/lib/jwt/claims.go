package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// isoLayout совпадает с форматом Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ErrInvalidToken возвращается для токенов с неверной подписью или структурой.
var ErrInvalidToken = errors.New("invalid token")

// LicenseClaims описывает данные лицензии, хранящиеся в JWT.
//
// Даты дублируются строками в полях activatedAt и expiration, чтобы
// полезная нагрузка читалась так же, как у мок-токена.
type LicenseClaims struct {
	Email       string   `json:"email"`
	Features    []string `json:"features"`
	LicenseType string   `json:"licenseType"`
	ActivatedAt string   `json:"activatedAt"`
	Expiration  string   `json:"expiration,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken подписывает токен лицензии.
//
// Срок действия JWT берётся из Expiration; токен без срока не получает claim exp.
func (j *MakerImpl) GenerateToken(token models.LicenseToken) (string, error) {
	const op = "jwt.GenerateToken"

	claims := LicenseClaims{
		Email:       token.Email,
		Features:    token.Features,
		LicenseType: token.LicenseType,
		ActivatedAt: token.ActivatedAt.UTC().Format(isoLayout),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  token.Email,
			IssuedAt: jwt.NewNumericDate(token.ActivatedAt),
		},
	}
	if token.Expiration != nil {
		claims.Expiration = token.Expiration.UTC().Format(isoLayout)
		claims.ExpiresAt = jwt.NewNumericDate(*token.Expiration)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена и возвращает его claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*LicenseClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &LicenseClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*LicenseClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

// License переводит claims обратно в models.LicenseToken.
func (c *LicenseClaims) License() models.LicenseToken {
	out := models.LicenseToken{
		Email:       c.Email,
		Features:    c.Features,
		LicenseType: c.LicenseType,
	}
	if c.IssuedAt != nil {
		out.ActivatedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.Time
		out.Expiration = &exp
	}
	return out
}
