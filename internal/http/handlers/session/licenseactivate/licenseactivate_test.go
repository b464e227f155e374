package licenseactivate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ActivateLicense(ctx context.Context, sess activation.Session, licenseKey string) (*models.LicenseRecord, error) {
	args := m.Called(ctx, sess, licenseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LicenseRecord), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLicenseActivateHandler_ServeHTTP(t *testing.T) {
	rec := &models.LicenseRecord{
		Email:       "demo@example.com",
		LicenseKey:  "KEY-1",
		Features:    licence.Features,
		ActivatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           string
		mockRec        *models.LicenseRecord
		mockErr        error
		callsService   bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			body:           `{"licenseKey":"KEY-1"}`,
			mockRec:        rec,
			callsService:   true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "not logged in",
			body:           `{"licenseKey":"KEY-1"}`,
			mockErr:        activation.ErrNotAuthenticated,
			callsService:   true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "User not authenticated",
		},
		{
			name:           "limit reached",
			body:           `{"licenseKey":"LIMIT"}`,
			mockErr:        licence.ErrLimitReached,
			callsService:   true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Activation limit reached for this license",
		},
		{
			name:           "empty key",
			body:           `{"licenseKey":""}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field LicenseKey is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callsService {
				svc.On("ActivateLicense", mock.Anything, mock.Anything, mock.Anything).Return(tt.mockRec, tt.mockErr).Once()
			}
			h := New(newNoopLogger(), svc)

			sess := session.NewManager(session.NewMemoryBackend().Scope("s"), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/session/licence", bytes.NewBufferString(tt.body))
			req = req.WithContext(session.WithManager(req.Context(), sess))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				license := data["license"].(map[string]any)
				assert.Equal(t, "KEY-1", license["licenseKey"])
			}
			svc.AssertExpectations(t)
		})
	}
}
