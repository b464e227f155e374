// Package activation реализует три сценария активации лицензии из сессии посетителя:
//
//   - токен-активация: сервис лицензий возвращает токен, он сохраняется в сессии;
//     при недоступности сервиса ответ имитируется локально;
//   - активация для вошедшего пользователя: сохраняется запись лицензии;
//     при недоступности сервиса сохраняется мок-запись;
//   - активация устройства: ключ привязывается к отпечатку устройства, без имитации.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/lib/ids"
	"github.com/magabrotheeeer/licence-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/lib/token"
	"github.com/magabrotheeeer/licence-portal/internal/licenceapi"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Сценарии активации, используются в метриках и событиях.
const (
	FlowToken  = "token"
	FlowSimple = "simple"
	FlowDevice = "device"
)

// Отказы, не зависящие от ответа сервиса лицензий.
var (
	ErrNotAuthenticated = &licence.Error{Message: "User not authenticated"}
	ErrKeyFormat        = &licence.Error{Message: "Please enter a valid license key"}
	ErrNetwork          = &licence.Error{Message: "Network error. Please check your connection and try again."}
	ErrNoToken          = &licence.Error{Message: "Activation failed"}
)

// MinDeviceKeyLength — минимальная длина ключа (после обрезки пробелов) для активации устройства.
const MinDeviceKeyLength = 3

// LicenceClient — клиент внешнего сервиса лицензий.
type LicenceClient interface {
	ActivateToken(ctx context.Context, email, licenceKey string) (*licenceapi.ActivateResponse, error)
	ActivateLicense(ctx context.Context, email, licenseKey string) (*licenceapi.ActivateResponse, error)
	ActivateDevice(ctx context.Context, email, licenceKey, fingerprint string) (*licenceapi.ActivateResponse, error)
}

// Publisher публикует события активации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Session — часть сессии посетителя, с которой работает активация.
type Session interface {
	User(ctx context.Context) (*models.AuthUser, error)
	SetToken(ctx context.Context, tok string) error
	SetLicense(ctx context.Context, rec models.LicenseRecord) error
	SetActivatedLicense(ctx context.Context, data map[string]any) error
}

// Event — сообщение об успешной активации.
type Event struct {
	Email       string    `json:"email"`
	Flow        string    `json:"flow"`
	Simulated   bool      `json:"simulated"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// DeviceResult — результат активации устройства.
type DeviceResult struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// Service выполняет активацию лицензий.
type Service struct {
	client          LicenceClient
	publisher       Publisher
	metrics         *metrics.Metrics
	log             *slog.Logger
	simulationDelay time.Duration
	now             func() time.Time
	fingerprint     func() string
}

// New создаёт Service. simulationDelay — пауза перед локальной имитацией ответа.
func New(client LicenceClient, publisher Publisher, m *metrics.Metrics, log *slog.Logger, simulationDelay time.Duration) *Service {
	return &Service{
		client:          client,
		publisher:       publisher,
		metrics:         m,
		log:             log,
		simulationDelay: simulationDelay,
		now:             time.Now,
		fingerprint:     ids.DeviceFingerprint,
	}
}

// ActivateToken активирует ключ и сохраняет полученный токен в сессии.
//
// Отказ сервиса возвращается как *licence.Error с его message, иначе
// "Activation failed"; поле error ответа здесь не читается. Если сервис недоступен, после паузы ответ имитируется
// по магическим ключам, а для остальных ключей выпускается мок-токен на год.
func (s *Service) ActivateToken(ctx context.Context, sess Session, email, licenseKey string) (string, error) {
	const op = "activation.ActivateToken"
	log := s.log.With(sl.Op(op), slog.String("email", email))

	resp, err := s.client.ActivateToken(ctx, email, licenseKey)
	var apiErr *licenceapi.APIError
	simulated := false
	var tok string

	switch {
	case errors.As(err, &apiErr):
		s.metrics.Activation(FlowToken, metrics.OutcomeFailure)
		msg := apiErr.Message
		if msg == "" {
			msg = "Activation failed"
		}
		return "", &licence.Error{Message: msg}
	case err != nil:
		log.Info("licence api unavailable, simulating activation", sl.Err(err))
		tok, err = s.simulate(ctx, email, licenseKey)
		if err != nil {
			s.metrics.Activation(FlowToken, metrics.OutcomeFailure)
			return "", err
		}
		simulated = true
	case resp.Token == "":
		s.metrics.Activation(FlowToken, metrics.OutcomeFailure)
		if resp.Message != "" {
			return "", &licence.Error{Message: resp.Message}
		}
		return "", ErrNoToken
	default:
		tok = resp.Token
	}

	if err := sess.SetToken(ctx, tok); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	outcome := metrics.OutcomeSuccess
	if simulated {
		outcome = metrics.OutcomeSimulated
	}
	s.metrics.Activation(FlowToken, outcome)
	s.publish(ctx, log, Event{Email: email, Flow: FlowToken, Simulated: simulated, ActivatedAt: s.now().UTC()})
	return tok, nil
}

// simulate ждёт simulationDelay и имитирует ответ сервиса лицензий.
func (s *Service) simulate(ctx context.Context, email, licenseKey string) (string, error) {
	const op = "activation.simulate"

	timer := time.NewTimer(s.simulationDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	case <-timer.C:
	}

	if err := licence.CheckKey(licenseKey); err != nil {
		return "", err
	}
	tok, err := token.Encode(licence.NewToken(email, s.now()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return tok, nil
}

// ActivateLicense активирует ключ для вошедшего пользователя и сохраняет запись лицензии.
//
// Если сервис недоступен, сохраняется и возвращается мок-запись на год.
func (s *Service) ActivateLicense(ctx context.Context, sess Session, licenseKey string) (*models.LicenseRecord, error) {
	const op = "activation.ActivateLicense"

	user, err := sess.User(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	log := s.log.With(sl.Op(op), slog.String("email", user.Email))

	resp, err := s.client.ActivateLicense(ctx, user.Email, licenseKey)
	var apiErr *licenceapi.APIError
	simulated := false
	var rec models.LicenseRecord

	switch {
	case errors.As(err, &apiErr):
		s.metrics.Activation(FlowSimple, metrics.OutcomeFailure)
		msg := apiErr.ErrorText
		if msg == "" {
			msg = "License activation failed"
		}
		return nil, &licence.Error{Message: msg}
	case err != nil:
		// TODO: отдавать ошибку сети, как в активации устройства, когда демо-режим перестанет быть нужен.
		log.Warn("licence api unavailable, storing mock licence", sl.Err(err))
		rec = licence.NewRecord(user.Email, licenseKey, s.now())
		simulated = true
	case resp.License == nil:
		s.metrics.Activation(FlowSimple, metrics.OutcomeFailure)
		return nil, &licence.Error{Message: "License activation failed"}
	default:
		rec = *resp.License
	}

	if err := sess.SetLicense(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	outcome := metrics.OutcomeSuccess
	if simulated {
		outcome = metrics.OutcomeSimulated
	}
	s.metrics.Activation(FlowSimple, outcome)
	s.publish(ctx, log, Event{Email: user.Email, Flow: FlowSimple, Simulated: simulated, ActivatedAt: s.now().UTC()})
	return &rec, nil
}

// ValidDeviceKey сообщает, подходит ли ключ для активации устройства.
func ValidDeviceKey(key string) bool {
	return len(strings.TrimSpace(key)) >= MinDeviceKeyLength
}

// ActivateDevice активирует ключ с привязкой к отпечатку устройства и сохраняет
// ответ сервиса в сессии. Имитации при недоступности сервиса нет.
func (s *Service) ActivateDevice(ctx context.Context, sess Session, email, licenceKey string) (*DeviceResult, error) {
	const op = "activation.ActivateDevice"
	log := s.log.With(sl.Op(op), slog.String("email", email))

	if !ValidDeviceKey(licenceKey) {
		return nil, ErrKeyFormat
	}

	fingerprint := s.fingerprint()
	resp, err := s.client.ActivateDevice(ctx, email, licenceKey, fingerprint)
	var apiErr *licenceapi.APIError
	switch {
	case errors.As(err, &apiErr):
		s.metrics.Activation(FlowDevice, metrics.OutcomeFailure)
		return nil, &licence.Error{Message: apiErr.Text("License activation failed")}
	case err != nil:
		log.Error("license activation error", sl.Err(err))
		s.metrics.Activation(FlowDevice, metrics.OutcomeFailure)
		return nil, ErrNetwork
	}

	if err := sess.SetActivatedLicense(ctx, resp.Raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Activation(FlowDevice, metrics.OutcomeSuccess)
	s.publish(ctx, log, Event{Email: email, Flow: FlowDevice, ActivatedAt: s.now().UTC()})
	return &DeviceResult{
		Message: "License activated successfully",
		Data:    resp.Raw,
	}, nil
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, ev Event) {
	if err := s.publisher.Publish(ctx, rabbitmq.KeyLicenceActivated, ev); err != nil {
		log.Warn("failed to publish activation event", sl.Err(err))
	}
}
