// Package activate реализует активацию лицензии по токену: полученный токен
// сохраняется в сессии и открывает доступ к /dashboard.
package activate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Request — email и ключ лицензии.
type Request struct {
	Email      string `json:"email" validate:"required"`
	LicenseKey string `json:"licenseKey" validate:"required"`
}

// Service активирует ключ и сохраняет токен в сессии.
type Service interface {
	ActivateToken(ctx context.Context, sess activation.Session, email, licenseKey string) (string, error)
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
// @Summary Активация лицензии по токену
// @Description Запрашивает токен у сервиса лицензий (при недоступности сервиса ответ имитируется) и сохраняет его в сессии.
// @Tags Session
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и ключ"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Отказ в активации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/session/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.activate"

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
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	tok, err := h.service.ActivateToken(r.Context(), sess, req.Email, req.LicenseKey)
	if err != nil {
		if e, ok := licence.AsError(err); ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(e.Message))
			return
		}
		log.Error("activation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Activation failed"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"success": true,
		"token":   tok,
	}))
}
