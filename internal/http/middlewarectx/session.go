// Package middlewarectx содержит HTTP middleware портала: привязку запроса
// к серверной сессии, охрану защищённых страниц и ограничение частоты запросов.
package middlewarectx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

// SessionOptions — параметры cookie сессии.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Now        func() time.Time
}

// Session находит сессию по cookie или заводит новую и кладёт её Manager в контекст.
// Принимается только идентификатор, который backend уже знает: чужой или
// истёкший заменяется новым.
func Session(log *slog.Logger, backend session.Backend, opts SessionOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, err := knownSession(r, backend, opts.CookieName)
			if err != nil {
				log.Error("failed to look up session", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Internal server error"))
				return
			}
			if id == "" {
				id = uuid.NewString()
				if err := backend.Create(r.Context(), id); err != nil {
					log.Error("failed to create session", sl.Err(err))
					w.WriteHeader(http.StatusInternalServerError)
					render.JSON(w, r, response.Error("Internal server error"))
					return
				}
				log.Debug("new session")
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			m := session.NewManager(backend.Scope(id), opts.Now)
			next.ServeHTTP(w, r.WithContext(session.WithManager(r.Context(), m)))
		})
	}
}

// knownSession возвращает идентификатор из cookie, если это UUID живой сессии, иначе "".
func knownSession(r *http.Request, backend session.Backend, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", nil
	}
	ok, err := backend.Exists(r.Context(), c.Value)
	if err != nil || !ok {
		return "", err
	}
	return c.Value, nil
}

// Manager достаёт Manager сессии из запроса. Если Session middleware не подключён,
// отвечает 500 и возвращает false.
func Manager(log *slog.Logger, w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	m, ok := session.FromContext(r.Context())
	if !ok {
		log.Error("session missing in request context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return nil, false
	}
	return m, true
}
