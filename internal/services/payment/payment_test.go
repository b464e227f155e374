package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/paymentprovider"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) InitiatePayment(ctx context.Context, req paymentprovider.InitiatePaymentRequest) (*paymentprovider.InitiatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.InitiatePaymentResponse), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, key string, msg any) error {
	return m.Called(ctx, key, msg).Error(0)
}

var testNow = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func newService(p *ProviderMock, pub *PublisherMock) *Service {
	s := New(p, pub, metrics.NewNop(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return testNow }
	return s
}

func newSession() *session.Manager {
	return session.NewManager(session.NewMemoryBackend().Scope("checkout"), nil)
}

var referenceRe = regexp.MustCompile(`^LIC-1743465600000-[0-9A-Z]{6}$`)

func TestSelectAddOns(t *testing.T) {
	ctx := context.Background()
	sess := newSession()
	svc := newService(new(ProviderMock), new(PublisherMock))

	sum, err := svc.SelectAddOns(ctx, sess, []string{"cloud-backup"})
	require.NoError(t, err)
	assert.InDelta(t, 344.99, sum.Total, 1e-9)

	stored, err := sess.SelectedAddOns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud-backup"}, stored)

	_, err = svc.SelectAddOns(ctx, sess, []string{"bogus"})
	assert.ErrorIs(t, err, ErrUnknownAddOn)

	cur, err := svc.CurrentSummary(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, sum, cur)
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	sess := newSession()
	require.NoError(t, sess.SetSelectedAddOns(ctx, []string{"cloud-backup", "custom-themes"}))

	provider := new(ProviderMock)
	provider.On("InitiatePayment", mock.Anything, mock.MatchedBy(func(r paymentprovider.InitiatePaymentRequest) bool {
		return r.Amount == 37499 &&
			r.Description == "Software License Purchase - Pro License + 2 add-ons" &&
			r.PhoneNumber == DefaultPhone &&
			r.FirstName == "Ada" &&
			r.Email == "ada@example.com" &&
			assert.ObjectsAreEqual([]string{"bank_card", "wallet"}, r.AcceptedPaymentMethods) &&
			referenceRe.MatchString(r.ReferenceID)
	})).Return(&paymentprovider.InitiatePaymentResponse{PayURL: "https://pay/1", PaymentRef: "ref-1"}, nil).Once()

	pub := new(PublisherMock)
	pub.On("Publish", mock.Anything, rabbitmq.KeyPaymentInitiated, mock.AnythingOfType("payment.Event")).Return(nil).Once()

	res, err := newService(provider, pub).Checkout(ctx, sess, Customer{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay/1", res.PayURL)
	assert.Equal(t, "ref-1", res.PaymentRef)

	p, ref, err := sess.Purchase(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ref-1", ref)
	assert.Equal(t, "Ada", p.FirstName)
	assert.InDelta(t, 374.99, p.TotalPrice, 1e-9)
	assert.Equal(t, []string{"cloud-backup", "custom-themes"}, p.SelectedAddOns)
	assert.Equal(t, res.ReferenceID, p.ReferenceID)

	provider.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCheckout_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	sess := newSession()

	provider := new(ProviderMock)
	provider.On("InitiatePayment", mock.Anything, mock.Anything).Return(nil, errors.New("502")).Once()
	pub := new(PublisherMock)

	_, err := newService(provider, pub).Checkout(ctx, sess, Customer{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "+216123"})
	assert.ErrorIs(t, err, ErrInitiateFailed)

	p, ref, err := sess.Purchase(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Empty(t, ref)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
