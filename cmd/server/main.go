package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/artesania/internal"
	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/cache"
	"github.com/dukerupert/artesania/internal/catalog"
	"github.com/dukerupert/artesania/internal/cookie"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/handler/admin"
	"github.com/dukerupert/artesania/internal/handler/storefront"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/profile"
	"github.com/dukerupert/artesania/internal/router"
	"github.com/dukerupert/artesania/internal/routes"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
	"github.com/dukerupert/artesania/web"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	settings, err := internal.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	// Initialize Sentry error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		logger.Warn("sentry initialization failed", "error", err)
	} else {
		defer flushSentry()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	businessMetrics := telemetry.NewBusinessMetrics("artesania", registry)

	// ==========================================================================
	// Stores
	// ==========================================================================

	var (
		sessionStore session.Store
		catalogCache cache.CatalogCache
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		logger.Info("Using redis for sessions and catalog cache", "addr", cfg.Redis.Addr)
		sessionStore = session.NewRedisStore(rdb, cfg.Session.TTL)
		catalogCache = cache.NewRedisCatalogCache(rdb)
	} else {
		logger.Info("Using in-memory sessions and catalog cache")
		sessionStore = session.NewMemoryStore(cfg.Session.TTL)
		catalogCache = cache.NewMemoryCatalogCache()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.ConnectNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return err
		}
		publisher = natsPublisher
		logger.Info("Publishing storefront events", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}
	defer publisher.Close()

	// ==========================================================================
	// Marketplace API and domain services
	// ==========================================================================

	api := backend.New(cfg.Backend.URL, cfg.Backend.Timeout,
		backend.WithHTTPClient(&http.Client{
			Timeout:   cfg.Backend.Timeout,
			Transport: &telemetry.HTTPTransport{Transport: http.DefaultTransport},
		}),
		backend.WithObserver(telemetry.NewBackendObserver(businessMetrics, logger)),
	)

	catalogService := catalog.NewService(api, catalogCache, cfg.Catalog.CacheTTL,
		catalog.Normalizer{PlaceholderImage: settings.PlaceholderImage})
	validator := auth.NewValidator(settings.Departments)

	cookieConfig := cookie.NewConfig(cfg.Session.CookieDomain, cfg.Session.SecureCookie)
	sessions := session.NewManager(sessionStore, cookieConfig, cfg.Session.TTL)
	sessions.OnExpired(func(ctx context.Context) {
		businessMetrics.SessionExpired()
		middleware.GetLogger(ctx).Info("session token expired")
	})

	renderer, err := handler.NewRenderer(web.Templates(), handler.TemplateFuncs(settings.Currency))
	if err != nil {
		return fmt.Errorf("template initialization failed: %w", err)
	}

	pages := &storefront.Pages{
		Renderer:  renderer,
		Sessions:  sessions,
		Events:    publisher,
		Metrics:   businessMetrics,
		StoreName: settings.StoreName,
	}
	profileLoader := storefront.NewProfileLoader(api, sessions, profile.Normalizer{DefaultPicture: settings.DefaultPicture})

	// ==========================================================================
	// Middleware
	// ==========================================================================

	metrics := middleware.NewMetrics("artesania", registry)

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0
	}

	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()
	authRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer authRateLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		router.Logger(logger),
		middleware.Sessions(sessions),
		telemetry.SentryContextMiddleware(sentryUser),
		middleware.CSRF(middleware.DefaultCSRFConfig(cookieConfig)),
	)

	r.Static("/static/", web.Static())

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Handle(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		CatalogHandler:  storefront.NewCatalogHandler(pages, catalogService, businessMetrics),
		CartHandler:     storefront.NewCartHandler(pages, catalogService, api, businessMetrics),
		CheckoutHandler: storefront.NewCheckoutHandler(pages, profileLoader, businessMetrics, settings.PaymentLink),
		AuthHandler:     storefront.NewAuthHandler(pages, api, validator, businessMetrics),
		ProfileHandler:  storefront.NewProfileHandler(pages, profileLoader, api, validator, businessMetrics, cfg.Backend.PersistProfile),
		OrdersHandler:   storefront.NewOrdersHandler(pages, api),
		ThemeHandler:    storefront.NewThemeHandler(pages),
		Sessions:        sessions,
		AuthLimiter:     authRateLimiter,
		NotFound:        pages.NotFound,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		LoginHandler:     admin.NewLoginHandler(pages, api, validator, businessMetrics),
		LogoutHandler:    admin.NewLogoutHandler(pages, api, businessMetrics),
		DashboardHandler: admin.NewDashboardHandler(pages, catalogService),
		ForbiddenHandler: admin.NewForbiddenHandler(pages),
		AuthLimiter:      authRateLimiter,
	})

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting storefront server", "address", srv.Addr, "backend", cfg.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sentryUser tags error reports with the signed-in shopper.
func sentryUser(ctx context.Context) *telemetry.UserInfo {
	u := domain.UserFromContext(ctx)
	if u == nil {
		return nil
	}
	return &telemetry.UserInfo{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
