package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/auth"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, email, password string) (*models.AuthUser, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthUser), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockUser       *models.AuthUser
		mockErr        error
		callsService   bool
		wantStatusCode int
		wantError      string
		wantStatus     string
		wantSession    bool
	}{
		{
			name:           "valid registration",
			requestBody:    Request{Email: "new@example.com", Password: "secret1"},
			mockUser:       &models.AuthUser{ID: 2, Email: "new@example.com"},
			callsService:   true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
			wantSession:    true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "short password",
			requestBody:    Request{Email: "new@example.com", Password: "123"},
			mockErr:        auth.ErrPasswordTooShort,
			callsService:   true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Password must be at least 6 characters",
			wantStatus:     "Error",
		},
		{
			name:           "email taken",
			requestBody:    Request{Email: "demo@example.com", Password: "secret1"},
			mockErr:        auth.ErrUserExists,
			callsService:   true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "User with this email already exists",
			wantStatus:     "Error",
		},
		{
			name:           "storage failure",
			requestBody:    Request{Email: "new@example.com", Password: "secret1"},
			mockErr:        errors.New("db down"),
			callsService:   true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Failed to create user",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.callsService {
				svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(tt.mockUser, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc, metrics.NewNop())

			var bodyBytes []byte
			if s, ok := tt.requestBody.(string); ok {
				bodyBytes = []byte(s)
			} else {
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			sess := session.NewManager(session.NewMemoryBackend().Scope("r"), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			req = req.WithContext(session.WithManager(ctx, sess))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantStatus, got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.NotContains(t, got, "data")
				assert.Equal(t, true, got["success"])
				user, ok := got["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "new@example.com", user["email"])
				assert.Equal(t, float64(2), user["id"])
			}

			authenticated, err := sess.IsAuthenticated(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSession, authenticated)

			svc.AssertExpectations(t)
		})
	}
}
