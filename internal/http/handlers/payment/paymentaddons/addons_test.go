package paymentaddons

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAddOnsHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantTotal      float64
		wantSelected   []string
		wantError      string
	}{
		{
			name:           "two add-ons",
			body:           `{"addOns":["priority-support","cloud-backup"]}`,
			wantStatusCode: http.StatusOK,
			wantTotal:      404.99,
			wantSelected:   []string{"priority-support", "cloud-backup"},
		},
		{
			name:           "cleared",
			body:           `{"addOns":[]}`,
			wantStatusCode: http.StatusOK,
			wantTotal:      299.99,
			wantSelected:   []string{},
		},
		{
			name:           "unknown add-on",
			body:           `{"addOns":["teleport"]}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "unknown add-on: teleport",
			wantSelected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := payment.New(nil, rabbitmq.NopPublisher{}, metrics.NewNop(), newNoopLogger())
			sess := session.NewManager(session.NewMemoryBackend().Scope("s"), nil)

			req := httptest.NewRequest(http.MethodPut, "/api/checkout/addons", bytes.NewBufferString(tt.body))
			req = req.WithContext(session.WithManager(req.Context(), sess))
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.InDelta(t, tt.wantTotal, data["total"], 0.001)
			}

			selected, err := sess.SelectedAddOns(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, selected)
		})
	}
}
