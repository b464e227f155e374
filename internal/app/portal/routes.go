// Package portal собирает HTTP-приложение портала лицензий: маршруты и сервер.
package portal

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	// Регистрация swagger-документации.
	_ "github.com/magabrotheeeer/licence-portal/docs"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/db/query"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/health"
	licenceactivate "github.com/magabrotheeeer/licence-portal/internal/http/handlers/licence/activate"
	licenceverify "github.com/magabrotheeeer/licence-portal/internal/http/handlers/licence/verify"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/pages/dashboard"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/pages/public"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/pages/userdashboard"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/payment/paymentaddons"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/payment/paymentstatus"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/payment/paymentsummary"
	sessionactivate "github.com/magabrotheeeer/licence-portal/internal/http/handlers/session/activate"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/session/deviceactivate"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/session/info"
	"github.com/magabrotheeeer/licence-portal/internal/http/handlers/session/licenseactivate"
	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/auth"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
	"github.com/magabrotheeeer/licence-portal/internal/session"
	"github.com/magabrotheeeer/licence-portal/internal/storage/mockdb"
)

// Ограничение частоты запросов к /api/auth.
const (
	authRateLimit = rate.Limit(5)
	authRateBurst = 10
)

// Deps — зависимости маршрутов.
type Deps struct {
	Logger     *slog.Logger
	Users      mockdb.Repository
	Sessions   session.Backend
	Session    middlewarectx.SessionOptions
	GuardDelay time.Duration
	Auth       *auth.Service
	Licence    *licence.Service
	Activation *activation.Service
	Payment    *payment.Service
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	// Сервис лицензий не зависит от сессии посетителя.
	licenceHandler := licenceactivate.New(logger, d.Licence)
	r.Post("/api/v0/licence/activate", licenceHandler.ServeHTTP)
	r.Post("/licence/activate", licenceHandler.ServeHTTP)
	r.Post("/api/v0/licence/verify", licenceverify.New(logger, d.Licence).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Session(logger, d.Sessions, d.Session))

		r.Route("/api/auth", func(r chi.Router) {
			r.Use(middlewarectx.RateLimit(logger, authRateLimit, authRateBurst))
			r.Post("/register", register.New(logger, d.Auth, d.Metrics).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth, d.Metrics).ServeHTTP)
			r.Post("/logout", logout.New(logger).ServeHTTP)
			r.Get("/me", me.New(logger).ServeHTTP)
		})

		r.Post("/api/db/query", query.New(logger, d.Users).ServeHTTP)

		r.Route("/api/session", func(r chi.Router) {
			r.Post("/activate", sessionactivate.New(logger, d.Activation).ServeHTTP)
			r.Post("/licence", licenseactivate.New(logger, d.Activation).ServeHTTP)
			r.Get("/licence", info.New(logger).ServeHTTP)
			r.Post("/device-activate", deviceactivate.New(logger, d.Activation).ServeHTTP)
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Get("/", paymentsummary.New(logger, d.Payment).ServeHTTP)
			r.Post("/", paymentcreate.New(logger, d.Payment).ServeHTTP)
			r.Get("/addons", paymentlist.New(logger).ServeHTTP)
			r.Put("/addons", paymentaddons.New(logger, d.Payment).ServeHTTP)
			r.Get("/status", paymentstatus.New(logger).ServeHTTP)
		})

		// Страницы
		r.Get(middlewarectx.LoginPath, public.New(logger, public.Page{Page: "login", Action: "/api/auth/login"}).ServeHTTP)
		r.Get(middlewarectx.ActivatePath, public.New(logger, public.Page{Page: "activate", Action: "/api/session/activate"}).ServeHTTP)
		r.With(middlewarectx.LicenseGuard(logger, d.GuardDelay)).
			Get("/dashboard", dashboard.New(logger).ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthGuard(logger, d.GuardDelay))
			r.Get("/user-dashboard", userdashboard.New(logger, "user-dashboard").ServeHTTP)
			r.Get("/license-activation", userdashboard.New(logger, "license-activation").ServeHTTP)
		})
	})
}
