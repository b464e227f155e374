// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успешном входе пользователь сохраняется в сессии под ключом auth_user.
// Неизвестный email и неверный пароль неразличимы для клиента: оба дают 401.
package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/services/auth"
)

// Request — учётные данные для входа.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler обрабатывает вход.
// Response — тело успешного ответа.
type Response struct {
	Success bool             `json:"success"`
	User    *models.AuthUser `json:"user"`
}

type Handler struct {
	log     *slog.Logger
	service Service
	metrics Metrics
}

// New создаёт Handler.
func New(log *slog.Logger, service Service, m Metrics) *Handler {
	return &Handler{
		log:     log,
		service: service,
		metrics: m,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль и сохраняет пользователя в сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учётные данные пользователя"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Не указан email или пароль"
// @Failure 401 {object} response.ErrorResponse "Неверные учётные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		h.metrics.Auth("login", metrics.OutcomeFailure)
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(auth.ErrMissingCredentials.Message))
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("invalid credentials", slog.String("email", req.Email))
		h.metrics.Auth("login", metrics.OutcomeFailure)
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(auth.ErrInvalidCredentials.Message))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		h.metrics.Auth("login", metrics.OutcomeFailure)
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	if err := sess.SetUser(r.Context(), *user); err != nil {
		log.Error("failed to store user in session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	h.metrics.Auth("login", metrics.OutcomeSuccess)
	log.Info("login success", slog.String("email", user.Email))
	render.JSON(w, r, Response{Success: true, User: user})
}
