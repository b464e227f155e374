// Package userdashboard отдаёт данные страниц вошедшего пользователя
// (/user-dashboard и /license-activation).
package userdashboard

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
	log  *slog.Logger
	page string
}

// New создаёт обработчик страницы с именем page.
func New(log *slog.Logger, page string) *Handler {
	return &Handler{log: log, page: page}
}

// ServeHTTP godoc
// @Summary Страница пользователя
// @Tags Pages
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 302 "Вход не выполнен, переход на /login"
// @Router /user-dashboard [get]
// @Router /license-activation [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pages.userdashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("page", h.page),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	user, err := sess.User(ctx)
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}
	license, err := sess.License(ctx)
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"page":    h.page,
		"user":    user,
		"license": license,
	}))
}
