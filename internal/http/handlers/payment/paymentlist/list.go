// Package paymentlist отдаёт каталог: лицензию и доступные дополнения.
package paymentlist

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
)

// Catalog — содержимое каталога.
type Catalog struct {
	License  payment.Product `json:"license"`
	AddOns   []payment.AddOn `json:"addOns"`
	Currency string          `json:"currency"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Каталог лицензии и дополнений
// @Tags Checkout
// @Produce  json
// @Success 200 {object} response.Response{data=Catalog}
// @Router /api/checkout/addons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(Catalog{
		License:  payment.License,
		AddOns:   payment.AddOns,
		Currency: payment.Currency,
	}))
}
