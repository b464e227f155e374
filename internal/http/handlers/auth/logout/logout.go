// Package logout реализует выход: из сессии удаляются пользователь, запись лицензии и токен.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
)

// Handler обрабатывает выход.
type Handler struct {
	log *slog.Logger
}

// New создаёт Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Удаляет пользователя, запись лицензии и токен лицензии из сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /api/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}
	if err := sess.Logout(r.Context()); err != nil {
		log.Error("failed to clear session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{"success": true}))
}
