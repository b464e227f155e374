package payment

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
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/paymentprovider"
)

// DefaultPhone подставляется, если телефон не указан.
const DefaultPhone = "+21600000000"

// AcceptedPaymentMethods — способы оплаты, предлагаемые покупателю.
var AcceptedPaymentMethods = []string{"bank_card", "wallet"}

// ErrInitiateFailed возвращается при любой ошибке платёжного сервиса.
var ErrInitiateFailed = errors.New("payment initiation failed")

// Provider инициирует платёж.
type Provider interface {
	InitiatePayment(ctx context.Context, req paymentprovider.InitiatePaymentRequest) (*paymentprovider.InitiatePaymentResponse, error)
}

// Publisher публикует события оплаты.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Session — часть сессии посетителя, с которой работает оформление заказа.
type Session interface {
	SelectedAddOns(ctx context.Context) ([]string, error)
	SetSelectedAddOns(ctx context.Context, ids []string) error
	SavePurchase(ctx context.Context, paymentRef string, p models.Purchase) error
}

// Customer — данные покупателя из формы оформления.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Result — результат инициации платежа.
type Result struct {
	PayURL      string  `json:"payUrl"`
	PaymentRef  string  `json:"paymentRef"`
	ReferenceID string  `json:"referenceId"`
	Summary     Summary `json:"summary"`
}

// Event — сообщение об инициированном платеже.
type Event struct {
	Email       string  `json:"email"`
	ReferenceID string  `json:"referenceId"`
	PaymentRef  string  `json:"paymentRef"`
	Amount      int64   `json:"amount"`
	Total       float64 `json:"total"`
}

// Service оформляет заказы.
type Service struct {
	provider  Provider
	publisher Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт Service.
func New(provider Provider, publisher Publisher, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		provider:  provider,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// SelectAddOns сохраняет выбранные дополнения и возвращает пересчитанный заказ.
func (s *Service) SelectAddOns(ctx context.Context, sess Session, selected []string) (Summary, error) {
	const op = "payment.SelectAddOns"
	if err := ValidateAddOns(selected); err != nil {
		return Summary{}, err
	}
	if err := sess.SetSelectedAddOns(ctx, selected); err != nil {
		return Summary{}, fmt.Errorf("%s: %w", op, err)
	}
	return Summarize(selected), nil
}

// CurrentSummary возвращает заказ по дополнениям, выбранным в сессии.
func (s *Service) CurrentSummary(ctx context.Context, sess Session) (Summary, error) {
	const op = "payment.CurrentSummary"
	selected, err := sess.SelectedAddOns(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", op, err)
	}
	return Summarize(selected), nil
}

// Checkout инициирует оплату текущего заказа и сохраняет покупку в сессии.
func (s *Service) Checkout(ctx context.Context, sess Session, c Customer) (*Result, error) {
	const op = "payment.Checkout"
	log := s.log.With(sl.Op(op))

	selected, err := sess.SelectedAddOns(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summary := Summarize(selected)

	phone := strings.TrimSpace(c.Phone)
	if phone == "" {
		phone = DefaultPhone
	}
	req := paymentprovider.InitiatePaymentRequest{
		Amount:                 summary.Amount,
		Description:            summary.Description,
		AcceptedPaymentMethods: append([]string(nil), AcceptedPaymentMethods...),
		FirstName:              strings.TrimSpace(c.FirstName),
		LastName:               strings.TrimSpace(c.LastName),
		PhoneNumber:            phone,
		Email:                  strings.TrimSpace(c.Email),
		ReferenceID:            ids.ReferenceID(s.now()),
	}

	resp, err := s.provider.InitiatePayment(ctx, req)
	if err != nil {
		log.Error("payment api error", sl.Err(err))
		s.metrics.Payment(metrics.OutcomeFailure)
		return nil, ErrInitiateFailed
	}

	purchase := models.Purchase{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          strings.TrimSpace(c.Phone),
		TotalPrice:     summary.Total,
		SelectedAddOns: selected,
		ReferenceID:    req.ReferenceID,
	}
	if err := sess.SavePurchase(ctx, resp.PaymentRef, purchase); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Payment(metrics.OutcomeSuccess)
	ev := Event{
		Email:       req.Email,
		ReferenceID: req.ReferenceID,
		PaymentRef:  resp.PaymentRef,
		Amount:      req.Amount,
		Total:       summary.Total,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.KeyPaymentInitiated, ev); err != nil {
		log.Warn("failed to publish payment event", sl.Err(err))
	}

	return &Result{
		PayURL:      resp.PayURL,
		PaymentRef:  resp.PaymentRef,
		ReferenceID: req.ReferenceID,
		Summary:     summary,
	}, nil
}
