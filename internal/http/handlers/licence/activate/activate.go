// Package activate реализует демонстрационный эндпоинт сервиса лицензий.
//
// Ответ не оборачивается в стандартный конверт портала: клиенты читают поля
// license и token (или message и error) с верхнего уровня тела.
package activate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Request — данные активации. Ключ принимается в любом из написаний.
type Request struct {
	Email             string `json:"email" validate:"required"`
	LicenseKey        string `json:"licenseKey"`
	LicenceKey        string `json:"licenceKey"`
	DeviceFingerprint string `json:"deviceFingerprint,omitempty"`
}

// Key возвращает ключ лицензии из любого из двух полей.
func (r Request) Key() string {
	if r.LicenseKey != "" {
		return r.LicenseKey
	}
	return r.LicenceKey
}

// Service выдаёт лицензии.
type Service interface {
	Activate(ctx context.Context, email, licenseKey string) (*licence.Activation, error)
}

// Handler обрабатывает активацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// statusFor сопоставляет отказ в активации HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, licence.ErrInvalidKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, licence.ErrExpiredKey):
		return http.StatusGone
	case errors.Is(err, licence.ErrLimitReached):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// ServeHTTP godoc
// @Summary Активация лицензии
// @Description Проверяет ключ и выдаёт запись лицензии на год вместе с подписанным токеном.
// @Tags Licence
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и ключ лицензии"
// @Success 200 {object} licence.Activation
// @Failure 400 {object} response.Response "Некорректные данные"
// @Failure 409 {object} response.Response "Исчерпан лимит активаций"
// @Failure 410 {object} response.Response "Ключ истёк"
// @Failure 422 {object} response.Response "Неверный ключ"
// @Failure 500 {object} response.Response "Внутренняя ошибка"
// @Router /api/v0/licence/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.licence.activate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ErrorWithMessage("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	key := strings.TrimSpace(req.Key())
	if key == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ErrorWithMessage("License key is required"))
		return
	}

	act, err := h.service.Activate(r.Context(), req.Email, key)
	if err != nil {
		if e, ok := licence.AsError(err); ok {
			log.Info("activation rejected", slog.String("reason", e.Message))
			w.WriteHeader(statusFor(err))
			render.JSON(w, r, response.ErrorWithMessage(e.Message))
			return
		}
		log.Error("activation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithMessage("License activation failed"))
		return
	}

	log.Info("licence activated",
		slog.String("email", req.Email),
		slog.String("device", req.DeviceFingerprint),
	)
	render.JSON(w, r, act)
}
