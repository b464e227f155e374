package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/licence-portal/internal/http/response"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/session"
)

// Пути, на которые охрана перенаправляет посетителя без доступа.
const (
	ActivatePath = "/activate"
	LoginPath    = "/login"
)

// Checker решает, пускать ли посетителя на защищённую страницу.
type Checker func(ctx context.Context, m *session.Manager) (bool, error)

// Guard выдерживает паузу delay, проверяет сессию и либо пропускает запрос,
// либо перенаправляет (302) на redirectTo.
func Guard(log *slog.Logger, redirectTo string, delay time.Duration, check Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Guard"
			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("path", r.URL.Path),
			)

			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-r.Context().Done():
					timer.Stop()
					log.Debug("request canceled while checking access")
					return
				case <-timer.C:
				}
			}

			m, ok := Manager(log, w, r)
			if !ok {
				return
			}

			allowed, err := check(r.Context(), m)
			if err != nil {
				log.Error("failed to check access", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Internal server error"))
				return
			}
			if !allowed {
				log.Info("access denied, redirecting", slog.String("to", redirectTo))
				http.Redirect(w, r, redirectTo, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LicenseGuard пропускает только посетителей с действующим токеном лицензии.
func LicenseGuard(log *slog.Logger, delay time.Duration) func(http.Handler) http.Handler {
	return Guard(log, ActivatePath, delay, func(ctx context.Context, m *session.Manager) (bool, error) {
		return m.HasValidLicense(ctx)
	})
}

// AuthGuard пропускает только вошедших пользователей.
func AuthGuard(log *slog.Logger, delay time.Duration) func(http.Handler) http.Handler {
	return Guard(log, LoginPath, delay, func(ctx context.Context, m *session.Manager) (bool, error) {
		return m.IsAuthenticated(ctx)
	})
}
