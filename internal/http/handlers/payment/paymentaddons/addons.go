// Package paymentaddons сохраняет в сессии выбранные дополнения.
package paymentaddons

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
)

// Request — идентификаторы выбранных дополнений.
type Request struct {
	AddOns []string `json:"addOns"`
}

// Service пересчитывает заказ.
type Service interface {
	SelectAddOns(ctx context.Context, sess payment.Session, selected []string) (payment.Summary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выбор дополнений
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Выбранные дополнения"
// @Success 200 {object} response.Response{data=payment.Summary}
// @Failure 400 {object} response.ErrorResponse "Неизвестное дополнение"
// @Router /api/checkout/addons [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.addons"

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
	if req.AddOns == nil {
		req.AddOns = []string{}
	}

	summary, err := h.service.SelectAddOns(r.Context(), sess, req.AddOns)
	if errors.Is(err, payment.ErrUnknownAddOn) {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	if err != nil {
		log.Error("failed to save add-ons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}
