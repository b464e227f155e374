// Package register реализует HTTP-обработчик регистрации по email и паролю.
// После успешной регистрации пользователь сразу считается вошедшим в текущей сессии.
package register

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

// Request — входные данные для регистрации.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler обрабатывает регистрацию.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя в таблице users и сохраняет его в сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и пароль"
// @Success 200 {object} Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или email занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			log.Info("registration rejected", slog.String("reason", authErr.Message))
			h.metrics.Auth("register", metrics.OutcomeFailure)
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(authErr.Message))
			return
		}
		log.Error("registration failed", sl.Err(err))
		h.metrics.Auth("register", metrics.OutcomeFailure)
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Failed to create user"))
		return
	}

	if err := sess.SetUser(r.Context(), *user); err != nil {
		log.Error("failed to store user in session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	h.metrics.Auth("register", metrics.OutcomeSuccess)
	log.Info("user registered", slog.Int64("id", user.ID))
	render.JSON(w, r, Response{Success: true, User: user})
}
