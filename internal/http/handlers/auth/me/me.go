// Package me возвращает пользователя текущей сессии.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Вход не выполнен"
// @Router /api/auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}
	user, err := sess.User(r.Context())
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("User not authenticated"))
		return
	}

	license, err := sess.License(r.Context())
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":    user,
		"license": license,
	}))
}
