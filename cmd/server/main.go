package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hmpps/incentives-ui/internal"
	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/csrf"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/handler"
	"github.com/hmpps/incentives-ui/internal/metrics"
	"github.com/hmpps/incentives-ui/internal/middleware"
	"github.com/hmpps/incentives-ui/internal/service"
	"github.com/hmpps/incentives-ui/internal/session"
	"github.com/hmpps/incentives-ui/internal/storage"
	"github.com/hmpps/incentives-ui/internal/upstream"
	"github.com/hmpps/incentives-ui/web"
)

// healthTimeout bounds each upstream ping made by /health.
const healthTimeout = 2 * time.Second

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
	isSecure := cfg.IsSecure()

	// ==========================================================================
	// Upstream APIs
	// ==========================================================================

	newClient := func(name, baseURL string, retries int, timeout time.Duration) *upstream.Client {
		return upstream.NewClient(upstream.Options{
			Name:    name,
			BaseURL: baseURL,
			Timeout: timeout,
			Retries: retries,
			Logger:  logger,
		})
	}

	prisonAPI := upstream.NewPrisonAPI(newClient("prison", cfg.PrisonAPIURL, cfg.APIRetries, cfg.APITimeout))
	incentivesAPI := upstream.NewIncentivesAPI(newClient("incentives", cfg.IncentivesAPIURL, cfg.APIRetries, cfg.APITimeout))
	manageUsersAPI := upstream.NewManageUsersAPI(newClient("manageUsers", cfg.ManageUsersAPIURL, cfg.APIRetries, cfg.APITimeout))

	healthClients := []*upstream.Client{
		newClient("hmppsAuth", cfg.AuthURL, 0, healthTimeout),
		newClient("prison", cfg.PrisonAPIURL, 0, healthTimeout),
		newClient("incentives", cfg.IncentivesAPIURL, 0, healthTimeout),
		newClient("manageUsers", cfg.ManageUsersAPIURL, 0, healthTimeout),
	}

	var components handler.ComponentsFetcher
	var componentsOrigin []string
	if cfg.ComponentAPIURL != "" {
		components = upstream.NewComponentsAPI(newClient("components", cfg.ComponentAPIURL, 0, cfg.APITimeout))
		componentsOrigin = append(componentsOrigin, cfg.ComponentAPIURL)
		healthClients = append(healthClients, newClient("components", cfg.ComponentAPIURL, 0, healthTimeout))
	}

	// ==========================================================================
	// Authentication and sessions
	// ==========================================================================

	provider := auth.NewProvider(auth.ProviderConfig{
		AuthURL:         cfg.AuthURL,
		AuthExternalURL: cfg.AuthExternalURL,
		ClientID:        cfg.APIClientID,
		ClientSecret:    cfg.APIClientSecret,
		IngressURL:      cfg.IngressURL,
		Secure:          isSecure,
	})
	systemTokens := auth.NewSystemTokens(cfg.AuthURL, cfg.SystemClientID, cfg.SystemClientSecret)

	// Redis, when configured, holds sessions and rate limit counters
	var redisClient *redis.Client
	if cfg.SessionStore == "redis" {
		redisClient, err = newRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		defer redisClient.Close()
	}

	sessions, err := newSessionStore(ctx, redisClient, logger)
	if err != nil {
		return fmt.Errorf("session store initialization failed: %w", err)
	}
	logger.Info("Session store ready", "store", cfg.SessionStore)

	// ==========================================================================
	// Analytics
	// ==========================================================================

	analyticsStore, err := newAnalyticsStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("analytics storage initialization failed: %w", err)
	}

	// ==========================================================================
	// Services
	// ==========================================================================

	userService := service.NewUserService(manageUsersAPI, prisonAPI, sessions, cfg.SessionTTL, logger)
	reviewsService := service.NewReviewsService(incentivesAPI, prisonAPI, logger)
	historyService := service.NewHistoryService(prisonAPI, incentivesAPI, logger)
	photoService := service.NewPhotoService(prisonAPI, service.NewImagingProcessor(), logger)
	levelService := service.NewLevelService(incentivesAPI, logger)
	analyticsService := service.NewAnalyticsService(analyticsStore, cfg.AnalyticsSource, logger)

	placeholder, err := service.PlaceholderPhoto()
	if err != nil {
		return fmt.Errorf("placeholder photo failed: %w", err)
	}

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: "web/templates",
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	}, web.Templates())
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	pages := &handler.Pages{
		Renderer:    renderer,
		Components:  components,
		Environment: cfg.EnvironmentName,
		Logger:      logger,
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(sessions, provider, logger, isSecure)
	requireUser := authMw.RequireUser
	requireLevelAdmin := middleware.Stack(authMw.RequireUser, authMw.RequireRole(domain.RoleMaintainIncentiveLevels))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(pages, provider, userService, isSecure)
	homeHandler := handler.NewHomeHandler(pages)
	reviewsHandler := handler.NewReviewsHandler(pages, reviewsService, systemTokens)
	prisonerHandler := handler.NewPrisonerHandler(pages, historyService, photoService, systemTokens, placeholder)
	analyticsHandler := handler.NewAnalyticsHandler(pages, analyticsService)
	levelHandler := handler.NewLevelHandler(pages, levelService)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(web.Static())))

	// Platform endpoints (no session)
	handler.NewPlatformHandler(upstream.NewHealthChecker(healthClients...), handler.BuildInfo{
		BuildNumber: cfg.BuildNumber,
		GitRef:      cfg.GitRef,
	}).RegisterRoutes(mux)

	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Auth routes (public - no auth required)
	authHandler.RegisterRoutes(mux)

	// Pages
	mux.Handle("GET /", requireUser(http.HandlerFunc(homeHandler.Home)))
	reviewsHandler.RegisterRoutes(mux, requireUser)
	prisonerHandler.RegisterRoutes(mux, requireUser)
	analyticsHandler.RegisterRoutes(mux, requireUser)
	levelHandler.RegisterRoutes(mux, requireLevelAdmin)

	if cfg.ZendeskEnabled() {
		zendesk := upstream.NewZendeskAPI(newClient("zendesk", cfg.ZendeskURL, 0, cfg.APITimeout), cfg.ZendeskUsername, cfg.ZendeskToken)
		feedbackHandler := handler.NewFeedbackHandler(pages, service.NewFeedbackService(zendesk, logger))

		rateStore := middleware.NewMemoryRateStore()
		if redisClient != nil {
			if rateStore, err = middleware.NewRedisRateStore(redisClient); err != nil {
				return fmt.Errorf("rate limit store initialization failed: %w", err)
			}
		}
		limit := middleware.NewRateLimitMiddleware(rateStore, "feedback", cfg.FeedbackRateLimit, time.Hour, logger)
		feedbackHandler.RegisterRoutes(mux, requireUser, limit.Limit)
	} else {
		logger.Info("Feedback form disabled", "reason", "Zendesk is not configured")
	}

	csrfFailure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("csrf validation failed", "path", r.URL.Path, "method", r.Method)
		handler.ForbiddenResponse(w, r, logger)
	})

	// Outermost first
	app := middleware.Stack(
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure, componentsOrigin...).Handler,
		csrf.Protect(isSecure, csrfFailure),
		authMw.WithUser,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func newRedisClient(ctx context.Context, cfg *internal.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// newSessionStore keeps sessions in redis when a client is given and in memory
// otherwise. Expired in-memory sessions are swept until ctx is done.
func newSessionStore(ctx context.Context, client *redis.Client, logger *slog.Logger) (session.Store, error) {
	if client != nil {
		return session.NewRedisStore(client), nil
	}

	store, err := session.NewMemoryStore()
	if err != nil {
		return nil, err
	}
	go store.Sweep(ctx, 5*time.Minute, logger)
	return store, nil
}

func newAnalyticsStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.AnalyticsSource == "s3" {
		return storage.NewS3Storage(storage.S3Config{
			Bucket:          cfg.AnalyticsBucket,
			Region:          cfg.AnalyticsRegion,
			Endpoint:        cfg.AnalyticsEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, logger)
	}
	return storage.NewLocalStorage(storage.LocalConfig{BasePath: cfg.AnalyticsLocalPath}, logger)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
