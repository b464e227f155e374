// Package info возвращает состояние лицензии текущей сессии: разобранный токен,
// запись лицензии пользователя и последнюю активацию устройства.
package info

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

// Response — состояние лицензии сессии. License заполняется только для
// корректного неистёкшего токена.
type Response struct {
	HasToken         bool                  `json:"hasToken"`
	IsValid          bool                  `json:"isValid"`
	IsExpired        bool                  `json:"isExpired"`
	License          *models.LicenseToken  `json:"license"`
	UserLicense      *models.LicenseRecord `json:"userLicense"`
	ActivatedLicense map[string]any        `json:"activatedLicense"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Состояние лицензии сессии
// @Tags Session
// @Produce  json
// @Success 200 {object} response.Response{data=Response}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/session/licence [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.info"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.Manager(log, w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var out Response
	decoded, found, err := sess.DecodedToken(ctx)
	if err == nil {
		out.HasToken = found
		out.IsValid = decoded.IsValid
		out.IsExpired = decoded.IsExpired
		if decoded.Active() {
			p := decoded.Payload
			out.License = &p
		}
		out.UserLicense, err = sess.License(ctx)
	}
	if err == nil {
		out.ActivatedLicense, err = sess.ActivatedLicense(ctx)
	}
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(out))
}
