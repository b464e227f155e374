// Package licenseactivate реализует активацию лицензии для вошедшего пользователя.
// Запись лицензии сохраняется в сессии под ключом user_license.
package licenseactivate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Request — ключ лицензии.
type Request struct {
	LicenseKey string `json:"licenseKey" validate:"required"`
}

// Service активирует ключ для пользователя сессии.
type Service interface {
	ActivateLicense(ctx context.Context, sess activation.Session, licenseKey string) (*models.LicenseRecord, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Активация лицензии пользователя
// @Tags Session
// @Accept  json
// @Produce  json
// @Param request body Request true "Ключ лицензии"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Отказ в активации"
// @Failure 401 {object} response.ErrorResponse "Вход не выполнен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /api/session/licence [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.licenseactivate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	rec, err := h.service.ActivateLicense(r.Context(), sess, req.LicenseKey)
	switch {
	case errors.Is(err, activation.ErrNotAuthenticated):
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(activation.ErrNotAuthenticated.Message))
		return
	case err != nil:
		if e, ok := licence.AsError(err); ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(e.Message))
			return
		}
		log.Error("activation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("License activation failed"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"success": true,
		"license": rec,
	}))
}
