// Package verify проверяет токен лицензии, выпущенный сервисом лицензий.
package verify

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
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
)

// Request — проверяемый токен.
type Request struct {
	Token string `json:"token" validate:"required"`
}

// Response — результат проверки.
type Response struct {
	Valid   bool                 `json:"valid"`
	License *models.LicenseToken `json:"license"`
}

// Service проверяет токены лицензий.
type Service interface {
	Verify(ctx context.Context, tok string) (*models.LicenseToken, error)
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
// @Summary Проверка токена лицензии
// @Tags Licence
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен лицензии"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Некорректные данные"
// @Failure 401 {object} response.Response "Токен недействителен"
// @Router /api/v0/licence/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.licence.verify"

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
	req.Token = strings.TrimSpace(req.Token)
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	lic, err := h.service.Verify(r.Context(), req.Token)
	if errors.Is(err, licence.ErrInvalidToken) {
		log.Info("licence token rejected", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.ErrorWithMessage("Invalid licence token"))
		return
	}
	if err != nil {
		log.Error("failed to verify licence token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.ErrorWithMessage("Internal server error"))
		return
	}

	render.JSON(w, r, Response{Valid: true, License: lic})
}
