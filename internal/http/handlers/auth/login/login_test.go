package login

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

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthUser), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockUser       *models.AuthUser
		mockErr        error
		callsService   bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "success",
			body:           `{"email":"demo@example.com","password":"password123"}`,
			mockUser:       &models.AuthUser{ID: 1, Email: "demo@example.com"},
			callsService:   true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing credentials",
			body:           `{"email":"demo@example.com"}`,
			mockErr:        auth.ErrMissingCredentials,
			callsService:   true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Email and password are required",
		},
		{
			name:           "wrong password",
			body:           `{"email":"demo@example.com","password":"nope"}`,
			mockErr:        auth.ErrInvalidCredentials,
			callsService:   true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid email or password",
		},
		{
			name:           "storage failure",
			body:           `{"email":"demo@example.com","password":"x"}`,
			mockErr:        errors.New("db down"),
			callsService:   true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Internal server error",
		},
		{
			name:           "broken json",
			body:           `{"email":`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			if tt.callsService {
				svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(tt.mockUser, tt.mockErr).Once()
			}

			sess := session.NewManager(session.NewMemoryBackend().Scope("l"), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
			req = req.WithContext(session.WithManager(req.Context(), sess))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc, metrics.NewNop()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

			user, err := sess.User(context.Background())
			require.NoError(t, err)
			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
				assert.Nil(t, user)
			} else {
				assert.NotContains(t, got, "data")
				assert.Equal(t, true, got["success"])
				body, ok := got["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, tt.mockUser.Email, body["email"])
				require.NotNil(t, user)
				assert.Equal(t, *tt.mockUser, *user)
			}
			svc.AssertExpectations(t)
		})
	}
}
