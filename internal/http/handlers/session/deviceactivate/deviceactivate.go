// Package deviceactivate реализует активацию лицензии с привязкой к устройству.
package deviceactivate

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
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Request — email и ключ лицензии.
type Request struct {
	Email      string `json:"email" validate:"required"`
	LicenceKey string `json:"licenceKey"`
}

// Service активирует ключ с отпечатком устройства.
type Service interface {
	ActivateDevice(ctx context.Context, sess activation.Session, email, licenceKey string) (*activation.DeviceResult, error)
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
// @Summary Активация лицензии на устройстве
// @Tags Session
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и ключ"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверный формат ключа или отказ в активации"
// @Failure 502 {object} response.ErrorResponse "Сервис лицензий недоступен"
// @Router /api/session/device-activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.deviceactivate"

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

	res, err := h.service.ActivateDevice(r.Context(), sess, req.Email, req.LicenceKey)
	switch {
	case errors.Is(err, activation.ErrNetwork):
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error(activation.ErrNetwork.Message))
		return
	case err != nil:
		if e, ok := licence.AsError(err); ok {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(e.Message))
			return
		}
		log.Error("device activation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("License activation failed"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"success": true,
		"message": res.Message,
		"data":    res.Data,
	}))
}
