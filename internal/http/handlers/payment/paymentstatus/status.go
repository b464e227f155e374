// Package paymentstatus возвращает последнюю оформленную покупку сессии.
package paymentstatus

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/models"
)

// Response — ссылка на платёж и данные покупки. До оформления оба поля пустые.
type Response struct {
	PaymentRef string           `json:"paymentRef"`
	Purchase   *models.Purchase `json:"purchase"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Статус оформления покупки
// @Tags Checkout
// @Produce  json
// @Success 200 {object} response.Response{data=Response}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/checkout/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}

	purchase, ref, err := sess.Purchase(r.Context())
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Response{PaymentRef: ref, Purchase: purchase}))
}
