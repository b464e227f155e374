// Package paymentcreate инициирует оплату заказа: проверяет форму покупателя,
// передаёт заказ платёжному сервису и возвращает ссылку на оплату.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
)

// msgInitiateFailed — текст отказа платёжного сервиса для пользователя.
const msgInitiateFailed = "Failed to initiate payment. Please try again."

// Request — форма покупателя.
type Request struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// fieldMessages — тексты ошибок формы по полю и правилу.
var fieldMessages = map[string]string{
	"FirstName.required": "First name is required",
	"LastName.required":  "Last name is required",
	"Email.required":     "Email is required",
	"Email.email":        "Please enter a valid email",
}

// Service инициирует оплату.
type Service interface {
	Checkout(ctx context.Context, sess payment.Session, c payment.Customer) (*payment.Result, error)
}

// Handler обрабатывает отправку формы оформления заказа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить заказ
// @Description Инициирует оплату выбранной лицензии и дополнений и возвращает ссылку на страницу оплаты.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные покупателя"
// @Success 200 {object} response.Response{data=payment.Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибки формы"
// @Failure 502 {object} response.ErrorResponse "Платёжный сервис недоступен"
// @Router /api/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

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
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		fields := formErrors(err.(validator.ValidationErrors))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "validation failed",
			Data:   map[string]any{"fields": fields},
		})
		return
	}

	res, err := h.service.Checkout(r.Context(), sess, payment.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if errors.Is(err, payment.ErrInitiateFailed) {
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error(msgInitiateFailed))
		return
	}
	if err != nil {
		log.Error("checkout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	log.Info("payment initiated", slog.String("payment_ref", res.PaymentRef))
	render.JSON(w, r, response.StatusOKWithData(res))
}

// formErrors возвращает первую ошибку для каждого поля формы, ключи в формате JSON.
func formErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		key := jsonName(e.Field())
		if _, seen := out[key]; seen {
			continue
		}
		msg, ok := fieldMessages[e.Field()+"."+e.ActualTag()]
		if !ok {
			msg = e.Field() + " is not valid"
		}
		out[key] = msg
	}
	return out
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
