package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/licence-portal/internal/cache"
	"github.com/magabrotheeeer/licence-portal/internal/config"
	"github.com/magabrotheeeer/licence-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/licence-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/licence-portal/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/licence-portal/internal/lib/sl"
	"github.com/magabrotheeeer/licence-portal/internal/licenceapi"
	"github.com/magabrotheeeer/licence-portal/internal/metrics"
	"github.com/magabrotheeeer/licence-portal/internal/migrations"
	"github.com/magabrotheeeer/licence-portal/internal/paymentprovider"
	"github.com/magabrotheeeer/licence-portal/internal/services/activation"
	"github.com/magabrotheeeer/licence-portal/internal/services/auth"
	"github.com/magabrotheeeer/licence-portal/internal/services/licence"
	"github.com/magabrotheeeer/licence-portal/internal/services/payment"
	"github.com/magabrotheeeer/licence-portal/internal/session"
	"github.com/magabrotheeeer/licence-portal/internal/storage/mockdb"
	"github.com/magabrotheeeer/licence-portal/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

type publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
	workers []func(ctx context.Context)
}

// New собирает приложение. Без строки подключения к PostgreSQL используется
// таблица пользователей в памяти, без адреса Redis сессии хранятся в памяти,
// без URL RabbitMQ события не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.portal.New"
	app := &App{logger: logger}

	users, err := app.users(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sessions, err := app.sessions(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	events, err := app.publisher(cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	licenceClient := licenceapi.NewClient(cfg.LicenceBaseURL, cfg.LicenceTimeout)
	paymentClient := paymentprovider.NewClient(cfg.PaymentBaseURL, cfg.PaymentLicenceID, cfg.PaymentTimeout)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Users:    users,
		Sessions: sessions,
		Session: middlewarectx.SessionOptions{
			CookieName: cfg.CookieName,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.Env == "prod",
		},
		GuardDelay: cfg.GuardDelay,
		Auth:       auth.New(users),
		Licence:    licence.New(jwt.NewJWTMaker(cfg.JWTSecretKey), nil),
		Activation: activation.New(licenceClient, events, m, logger, cfg.SimulationDelay),
		Payment:    payment.New(paymentClient, events, m, logger),
		Metrics:    m,
		Gatherer:   reg,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) users(ctx context.Context, cfg *config.Config) (mockdb.Repository, error) {
	if cfg.StorageConnectionString == "" {
		users := mockdb.New()
		a.logger.Info("using in-memory user table", slog.Int("rows", users.Len()))
		return users, nil
	}
	db, err := postgresql.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	return db, nil
}

func (a *App) sessions(ctx context.Context, cfg *config.Config) (session.Backend, error) {
	if cfg.AddressRedis == "" {
		a.logger.Info("using in-memory sessions", slog.Duration("ttl", cfg.SessionTTL))
		b := session.NewMemoryBackend(session.WithTTL(cfg.SessionTTL))
		a.workers = append(a.workers, func(ctx context.Context) {
			b.Run(ctx, a.logger, cfg.SessionTTL)
		})
		return b, nil
	}
	c, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, c)
	return session.NewRedisBackend(c, cfg.SessionTTL), nil
}

func (a *App) publisher(cfg *config.Config) (publisher, error) {
	if cfg.RabbitURL == "" {
		a.logger.Info("event publishing disabled")
		return rabbitmq.NopPublisher{}, nil
	}
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn)

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	p, err := rabbitmq.NewPublisher(ch, cfg.RabbitExchange)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	a.closers = append(a.closers, p)
	return p, nil
}

// Handler возвращает корневой обработчик приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	for _, w := range a.workers {
		go w(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// close освобождает ресурсы в порядке, обратном открытию.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
