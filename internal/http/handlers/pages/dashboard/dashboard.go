// Package dashboard отдаёт данные страницы /dashboard. Доступ к странице
// закрыт guard'ом лицензии, поэтому токен сессии здесь уже действителен.
package dashboard

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
// @Summary Страница лицензии
// @Tags Pages
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 302 "Нет действующей лицензии, переход на /activate"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pages.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}

	info, err := sess.LicenseInfo(r.Context())
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"page":    "dashboard",
		"license": info,
	}))
}
