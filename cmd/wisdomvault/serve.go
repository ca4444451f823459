package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/modules/account"
	"github.com/ferdaws-ahmed/wisdomvault/modules/billing"
	"github.com/ferdaws-ahmed/wisdomvault/modules/pages"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/clientip"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/config"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/guard"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/httpserver"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/identity"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/metrics"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/payment"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/ratelimiter"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/redis"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/requestid"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/theme"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

const sessionKeyPrefix = "wisdomvault:session:"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	appCfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}
	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), session.LoggerExtractor()),
	)
	slog.SetDefault(log)

	a, err := build(ctx, appCfg, log)
	if err != nil {
		log.ErrorContext(ctx, "startup failed", logger.Error(err))
		return err
	}
	defer a.close()

	srvCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.sessions.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx, a.handler) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// app is the assembled process: the root handler plus what must be run and
// released alongside it.
type app struct {
	handler  http.Handler
	sessions *session.Manager
	closers  []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func build(ctx context.Context, appCfg appConfig, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	cookieCfg, err := config.Load[cookie.Config]()
	if err != nil {
		return nil, err
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return nil, fmt.Errorf("cookies: %w", err)
	}

	identityCfg, err := config.Load[identity.Config]()
	if err != nil {
		return nil, err
	}
	auth, err := identity.New(identityCfg, identity.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	a.closers = append(a.closers, auth.Close)

	backendCfg, err := config.Load[backend.Config]()
	if err != nil {
		return nil, err
	}
	api := backend.New(backendCfg, backend.WithLogger(log), backend.WithRegisterer(registry))

	sessionCfg, err := config.Load[session.Config]()
	if err != nil {
		return nil, err
	}
	var checks []httpserver.Check
	sessionOpts := []session.Option{
		session.WithConfig(sessionCfg),
		session.WithBackend(api),
		session.WithLogger(log),
		session.WithTransport(session.NewCookieTransport(cookies, sessionCfg)),
	}
	if sessionCfg.Store == "redis" {
		client, err := connectRedis(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		sessionOpts = append(sessionOpts, session.WithStore(session.NewRedisStore(client, sessionKeyPrefix)))
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}
	manager, err := session.New(auth, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	a.sessions = manager
	a.closers = append(a.closers, manager.Close)

	paddleCfg, err := config.Load[payment.PaddleConfig]()
	if err != nil {
		return nil, err
	}
	paddle, err := payment.NewPaddleProvider(paddleCfg)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	payments := payment.NewService(paddle, api, manager, paddleCfg.PriceIDs(), payment.WithLogger(log))

	limitCfg, err := config.Load[ratelimiter.Config]()
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimiter.New(limitCfg)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	a.closers = append(a.closers, limiter.Close)

	errorHandler := handler.NewErrorHandler(log, handler.ErrorHandlerConfig{
		ErrorPage:  views.ErrorPage,
		ErrorToast: views.ErrorToast,
	})
	throttle := ratelimiter.Middleware(limiter,
		ratelimiter.WithKeyFunc(ratelimiter.Composite(ratelimiter.ByIP, ratelimiter.ByPath)),
		ratelimiter.WithDeniedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			collector.RecordRateLimited(r)
			errorHandler(handler.NewContext(w, r), handler.ErrTooManyRequests)
		})),
	)

	accountOpts := []account.Option{
		account.WithRateLimit(throttle),
		account.WithErrorHandler(errorHandler),
		account.WithLogger(log),
	}
	if appCfg.GoogleOAuth {
		googleCfg, err := config.Load[identity.GoogleConfig]()
		if err != nil {
			return nil, err
		}
		accountOpts = append(accountOpts, account.WithGoogle(identity.NewGoogleOAuth(googleCfg)))
	}

	themes := theme.NewStore(cookies, theme.WithLogger(log))
	accountSvc := account.NewService(manager, cookies, accountOpts...)
	pagesSvc := pages.NewService(manager, api, themes, pages.WithErrorHandler(errorHandler), pages.WithLogger(log))
	billingSvc := billing.NewService(payments, paddle,
		billing.WithRecorder(collector),
		billing.WithErrorHandler(errorHandler),
		billing.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(collector.Middleware, requestid.Middleware, clientip.Middleware)
	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(log, appCfg.ReadinessTimeout, checks...))
	r.Handle("/metrics", metrics.Handler(registry))
	billingSvc.Webhooks(r)

	var mountErr error
	r.Group(func(r chi.Router) {
		r.Use(manager.Middleware, themes.Middleware)
		accountSvc.Routes(r)
		pagesSvc.Routes(r)
		billingSvc.Routes(r)

		all := routes.Pages{}
		for _, p := range []routes.Pages{accountSvc.Pages(), pagesSvc.Pages(), billingSvc.Pages()} {
			for name, h := range p {
				all[name] = h
			}
		}
		g := guard.New(
			guard.WithPending(pagesSvc.Pending()),
			guard.WithErrorHandler(errorHandler),
			guard.WithLogger(log),
		)
		mountErr = routes.Mount(r, all, g.Wrap)
	})
	if mountErr != nil {
		return nil, fmt.Errorf("routes: %w", mountErr)
	}

	a.handler = r
	return a, nil
}

func connectRedis(ctx context.Context) (*goredis.Client, error) {
	cfg, err := config.Load[redis.Config]()
	if err != nil {
		return nil, err
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return client, nil
}
