// Package token кодирует и декодирует сессионные токены лицензий вида
// header.payload.signature.
//
// Подпись не проверяется: третий сегмент может быть любой строкой.
// Токен либо полностью корректен (три сегмента, base64, JSON-объект),
// либо считается недействительным целиком.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

const (
	// MockHeader — заголовок {"alg":"HS256","typ":"JWT"} мок-токена.
	MockHeader = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"
	// MockSignature — заглушка подписи мок-токена.
	MockSignature = "mock_signature"

	// ISOLayout совпадает с форматом Date.prototype.toISOString.
	ISOLayout = "2006-01-02T15:04:05.000Z"
)

var errNotObject = errors.New("payload is not a JSON object")

// Decoded — результат разбора токена.
type Decoded struct {
	Payload   models.LicenseToken
	IsValid   bool
	IsExpired bool
}

// Active сообщает, что токен корректен и не истёк.
func (d Decoded) Active() bool {
	return d.IsValid && !d.IsExpired
}

type wirePayload struct {
	Email       string          `json:"email"`
	Features    []string        `json:"features"`
	LicenseType string          `json:"licenseType"`
	ActivatedAt json.RawMessage `json:"activatedAt,omitempty"`
	Expiration  json.RawMessage `json:"expiration,omitempty"`
}

// Decode разбирает токен относительно момента now.
//
// Истечение вычисляется только при наличии разбираемого поля expiration.
func Decode(tok string, now time.Time) Decoded {
	payload, err := decodePayload(tok)
	if err != nil {
		return Decoded{}
	}

	out := Decoded{IsValid: true}
	out.Payload = models.LicenseToken{
		Email:       payload.Email,
		Features:    payload.Features,
		LicenseType: payload.LicenseType,
	}
	if at, ok := parseTime(payload.ActivatedAt); ok {
		out.Payload.ActivatedAt = at
	}
	if exp, ok := parseTime(payload.Expiration); ok {
		out.Payload.Expiration = &exp
		out.IsExpired = now.After(exp)
	}
	return out
}

// Encode собирает мок-токен: фиксированный заголовок, base64 JSON полезной нагрузки
// и заглушку подписи.
func Encode(p models.LicenseToken) (string, error) {
	const op = "token.Encode"

	wire := struct {
		Email       string   `json:"email"`
		Features    []string `json:"features"`
		LicenseType string   `json:"licenseType"`
		ActivatedAt string   `json:"activatedAt"`
		Expiration  string   `json:"expiration,omitempty"`
	}{
		Email:       p.Email,
		Features:    p.Features,
		LicenseType: p.LicenseType,
		ActivatedAt: p.ActivatedAt.UTC().Format(ISOLayout),
	}
	if p.Expiration != nil {
		wire.Expiration = p.Expiration.UTC().Format(ISOLayout)
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return MockHeader + "." + base64.StdEncoding.EncodeToString(raw) + "." + MockSignature, nil
}

func decodePayload(tok string) (*wirePayload, error) {
	const op = "token.decodePayload"

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%s: expected 3 segments, got %d", op, len(parts))
	}
	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%s: %w", op, errNotObject)
	}

	var p wirePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// decodeSegment принимает как стандартный, так и URL-алфавит base64,
// с выравниванием и без: мок-токены кодируются btoa, подписанные — base64url.
func decodeSegment(seg string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(seg)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// parseTime разбирает дату из JSON-строки (ISO 8601) или числа (миллисекунды Unix).
// Неразбираемое или пустое значение трактуется как отсутствующее.
func parseTime(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || ms == 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
