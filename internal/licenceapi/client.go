// Package licenceapi — HTTP-клиент внешнего сервиса активации лицензий.
//
// Ошибки делятся на два вида: *APIError, если сервис ответил не-2xx статусом,
// и транспортные (сеть, тайм-аут, тело ответа не JSON). Вызывающий код различает
// их через errors.As и по-разному реагирует на каждую.
package licenceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Пути эндпоинтов активации.
const (
	TokenActivatePath   = "/licence/activate"
	LicenseActivatePath = "/api/v0/licence/activate"
)

// Client обращается к сервису лицензий по базовому URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент с тайм-аутом на каждый запрос.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ActivateResponse — разобранный ответ сервиса. Raw содержит тело ответа целиком.
type ActivateResponse struct {
	Token   string                `json:"token,omitempty"`
	License *models.LicenseRecord `json:"license,omitempty"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Raw     map[string]any        `json:"-"`
}

// APIError — ответ сервиса с не-2xx статусом.
type APIError struct {
	StatusCode int
	Message    string
	ErrorText  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("licence api: status %d: %s", e.StatusCode, e.Text(""))
}

// Text возвращает message, затем error, затем fallback.
func (e *APIError) Text(fallback string) string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorText != "":
		return e.ErrorText
	default:
		return fallback
	}
}

// ActivateToken активирует ключ и ожидает в ответе токен лицензии.
func (c *Client) ActivateToken(ctx context.Context, email, licenceKey string) (*ActivateResponse, error) {
	return c.post(ctx, "licenceapi.ActivateToken", TokenActivatePath, map[string]string{
		"email":      email,
		"licenceKey": licenceKey,
	})
}

// ActivateLicense активирует ключ для вошедшего пользователя и ожидает запись лицензии.
func (c *Client) ActivateLicense(ctx context.Context, email, licenseKey string) (*ActivateResponse, error) {
	return c.post(ctx, "licenceapi.ActivateLicense", LicenseActivatePath, map[string]string{
		"email":      email,
		"licenseKey": licenseKey,
	})
}

// ActivateDevice активирует ключ с привязкой к отпечатку устройства.
func (c *Client) ActivateDevice(ctx context.Context, email, licenceKey, fingerprint string) (*ActivateResponse, error) {
	return c.post(ctx, "licenceapi.ActivateDevice", LicenseActivatePath, map[string]string{
		"email":             email,
		"licenceKey":        licenceKey,
		"deviceFingerprint": fingerprint,
	})
}

func (c *Client) post(ctx context.Context, op, path string, body any) (*ActivateResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	var out ActivateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if err := json.Unmarshal(raw, &out.Raw); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    out.Message,
			ErrorText:  out.Error,
		}
	}
	return &out, nil
}
