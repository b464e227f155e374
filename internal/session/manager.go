package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/lib/token"
	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Manager — типизированный доступ к сессии посетителя: пользователь,
// токен лицензии, записи лицензий и данные оформления покупки.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager создаёт Manager поверх хранилища одной сессии.
func NewManager(store Store, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now}
}

// SetUser сохраняет пользователя под ключом auth_user.
func (m *Manager) SetUser(ctx context.Context, u models.AuthUser) error {
	const op = "session.SetUser"
	if err := m.setJSON(ctx, KeyAuthUser, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// User возвращает пользователя сессии или nil, если вход не выполнен.
// Повреждённое значение трактуется как отсутствие пользователя.
func (m *Manager) User(ctx context.Context) (*models.AuthUser, error) {
	const op = "session.User"
	var u models.AuthUser
	found, err := m.getJSON(ctx, KeyAuthUser, &u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return &u, nil
}

// IsAuthenticated сообщает, выполнен ли вход.
func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	u, err := m.User(ctx)
	return u != nil, err
}

// SetToken сохраняет токен лицензии.
func (m *Manager) SetToken(ctx context.Context, tok string) error {
	const op = "session.SetToken"
	if err := m.store.Set(ctx, KeyLicenseToken, tok); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Token возвращает сохранённый токен лицензии.
func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	const op = "session.Token"
	tok, found, err := m.store.Get(ctx, KeyLicenseToken)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return tok, found, nil
}

// RemoveToken удаляет токен лицензии.
func (m *Manager) RemoveToken(ctx context.Context) error {
	const op = "session.RemoveToken"
	if err := m.store.Remove(ctx, KeyLicenseToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DecodedToken разбирает сохранённый токен. Второе значение false, если токена нет.
func (m *Manager) DecodedToken(ctx context.Context) (token.Decoded, bool, error) {
	tok, found, err := m.Token(ctx)
	if err != nil || !found {
		return token.Decoded{}, false, err
	}
	return token.Decode(tok, m.now()), true, nil
}

// HasValidLicense сообщает, есть ли в сессии корректный неистёкший токен.
func (m *Manager) HasValidLicense(ctx context.Context) (bool, error) {
	d, found, err := m.DecodedToken(ctx)
	if err != nil || !found {
		return false, err
	}
	return d.Active(), nil
}

// LicenseInfo возвращает полезную нагрузку токена, только если он корректен и не истёк.
func (m *Manager) LicenseInfo(ctx context.Context) (*models.LicenseToken, error) {
	d, found, err := m.DecodedToken(ctx)
	if err != nil || !found || !d.Active() {
		return nil, err
	}
	p := d.Payload
	return &p, nil
}

// SetLicense сохраняет запись лицензии под ключом user_license.
func (m *Manager) SetLicense(ctx context.Context, rec models.LicenseRecord) error {
	const op = "session.SetLicense"
	if err := m.setJSON(ctx, KeyUserLicense, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// License возвращает запись лицензии или nil.
func (m *Manager) License(ctx context.Context) (*models.LicenseRecord, error) {
	const op = "session.License"
	var rec models.LicenseRecord
	found, err := m.getJSON(ctx, KeyUserLicense, &rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// SetActivatedLicense сохраняет ответ сервиса лицензий, дополненный полем activatedAt.
func (m *Manager) SetActivatedLicense(ctx context.Context, data map[string]any) error {
	const op = "session.SetActivatedLicense"
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["activatedAt"] = m.now().UTC().Format(token.ISOLayout)
	if err := m.setJSON(ctx, KeyActivatedLicense, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivatedLicense возвращает сохранённый ответ активации устройства или nil.
func (m *Manager) ActivatedLicense(ctx context.Context) (map[string]any, error) {
	const op = "session.ActivatedLicense"
	var data map[string]any
	found, err := m.getJSON(ctx, KeyActivatedLicense, &data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return data, nil
}

// SetSelectedAddOns сохраняет выбранные дополнения.
func (m *Manager) SetSelectedAddOns(ctx context.Context, ids []string) error {
	const op = "session.SetSelectedAddOns"
	if ids == nil {
		ids = []string{}
	}
	if err := m.setJSON(ctx, KeySelectedAddOns, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SelectedAddOns возвращает выбранные дополнения; пустой список, если выбора не было.
func (m *Manager) SelectedAddOns(ctx context.Context) ([]string, error) {
	const op = "session.SelectedAddOns"
	ids := []string{}
	if _, err := m.getJSON(ctx, KeySelectedAddOns, &ids); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// SavePurchase сохраняет ссылку на платёж и данные покупки.
func (m *Manager) SavePurchase(ctx context.Context, paymentRef string, p models.Purchase) error {
	const op = "session.SavePurchase"
	if err := m.store.Set(ctx, KeyPaymentRef, paymentRef); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.setJSON(ctx, KeyPurchaseData, p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Purchase возвращает данные последней покупки и ссылку на платёж.
func (m *Manager) Purchase(ctx context.Context) (*models.Purchase, string, error) {
	const op = "session.Purchase"
	var p models.Purchase
	found, err := m.getJSON(ctx, KeyPurchaseData, &p)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	ref, _, err := m.store.Get(ctx, KeyPaymentRef)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ref, nil
	}
	return &p, ref, nil
}

// Logout удаляет пользователя, запись лицензии и токен.
func (m *Manager) Logout(ctx context.Context) error {
	const op = "session.Logout"
	if err := m.store.Remove(ctx, KeyAuthUser, KeyUserLicense, KeyLicenseToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Manager) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, string(raw))
}

// getJSON возвращает false без ошибки, если значения нет или оно не разбирается.
func (m *Manager) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := m.store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, nil
	}
	return true, nil
}
