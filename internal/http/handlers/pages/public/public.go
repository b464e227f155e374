// Package public отдаёт описания открытых страниц (/login, /activate),
// на которые ведут редиректы guard'ов.
package public

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
)

// Page — описание открытой страницы: куда отправлять форму.
type Page struct {
	Page   string `json:"page"`
	Action string `json:"action"`
}

type Handler struct {
	log  *slog.Logger
	page Page
}

func New(log *slog.Logger, page Page) *Handler {
	return &Handler{log: log, page: page}
}

// ServeHTTP godoc
// @Summary Открытая страница
// @Tags Pages
// @Produce  json
// @Success 200 {object} response.Response{data=Page}
// @Router /login [get]
// @Router /activate [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.page))
}
