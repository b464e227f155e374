package paymentcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Checkout(ctx context.Context, sess payment.Session, c payment.Customer) (*payment.Result, error) {
	args := m.Called(ctx, sess, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func serve(t *testing.T, svc Service, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	sess := session.NewManager(session.NewMemoryBackend().Scope("s"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	req = req.WithContext(session.WithManager(req.Context(), sess))
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(w, req)

	var got map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&got))
	return w, got
}

func TestCreateHandler_Success(t *testing.T) {
	svc := new(ServiceMock)
	want := payment.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: ""}
	svc.On("Checkout", mock.Anything, mock.Anything, want).Return(&payment.Result{
		PayURL:      "https://pay.example.com/p/1",
		PaymentRef:  "ref-1",
		ReferenceID: "LIC-1-ABCDEF",
		Summary:     payment.Summarize(nil),
	}, nil).Once()

	w, got := serve(t, svc, `{"firstName":" Ada ","lastName":"Lovelace","email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	data := got["data"].(map[string]any)
	assert.Equal(t, "https://pay.example.com/p/1", data["payUrl"])
	assert.Equal(t, "ref-1", data["paymentRef"])
	svc.AssertExpectations(t)
}

func TestCreateHandler_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields map[string]any
	}{
		{
			name: "all missing",
			body: `{}`,
			wantFields: map[string]any{
				"firstName": "First name is required",
				"lastName":  "Last name is required",
				"email":     "Email is required",
			},
		},
		{
			name: "blank names",
			body: `{"firstName":"  ","lastName":" ","email":"ada@example.com"}`,
			wantFields: map[string]any{
				"firstName": "First name is required",
				"lastName":  "Last name is required",
			},
		},
		{
			name: "bad email",
			body: `{"firstName":"Ada","lastName":"Lovelace","email":"not-an-email"}`,
			wantFields: map[string]any{
				"email": "Please enter a valid email",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)

			w, got := serve(t, svc, tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			data := got["data"].(map[string]any)
			assert.Equal(t, tt.wantFields, data["fields"])
			svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateHandler_ProviderFailure(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Checkout", mock.Anything, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("payment.Checkout: %w", payment.ErrInitiateFailed)).Once()

	w, got := serve(t, svc, `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to initiate payment. Please try again.", got["error"])
	assert.NotContains(t, got["error"], payment.ErrInitiateFailed.Error())
}

func TestCreateHandler_InvalidJSON(t *testing.T) {
	w, got := serve(t, new(ServiceMock), `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", got["error"])
}
