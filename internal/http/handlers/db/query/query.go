// Package query реализует мок-эндпоинт выполнения запросов к таблице users.
// Запрос не разбирается как SQL: ответ выбирается по подстрокам текста запроса.
package query

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/storage/mockdb"
)

// Request — текст запроса и позиционные параметры.
type Request struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

// Response — строки результата.
type Response struct {
	Rows []mockdb.Row `json:"rows"`
}

// Handler выполняет запросы через mockdb.Dispatch.
type Handler struct {
	log  *slog.Logger
	repo mockdb.Repository
}

// New создаёт Handler.
func New(log *slog.Logger, repo mockdb.Repository) *Handler {
	return &Handler{log: log, repo: repo}
}

// ServeHTTP godoc
// @Summary Мок-запрос к таблице users
// @Description Поддерживает выборку пользователя по email и вставку пользователя; остальные запросы возвращают пустой результат.
// @Tags DB
// @Accept  json
// @Produce  json
// @Param request body Request true "Запрос и параметры"
// @Success 200 {object} Response "Строки результата"
// @Failure 500 {object} response.ErrorResponse "Database query failed"
// @Router /api/db/query [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.db.query"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Database query failed"))
		return
	}

	rows, err := mockdb.Dispatch(r.Context(), h.repo, req.Query, req.Params)
	if err != nil {
		log.Error("query failed", sl.Err(err), slog.String("query", req.Query))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Database query failed"))
		return
	}

	log.Debug("query executed", slog.Int("rows", len(rows)))
	render.JSON(w, r, Response{Rows: rows})
}
