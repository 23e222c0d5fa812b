package config

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/modelscout/modelscout/internal/api"
	"github.com/modelscout/modelscout/internal/config"
	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/catalog"
	"github.com/modelscout/modelscout/internal/services/circuitbreaker"
	"github.com/modelscout/modelscout/internal/services/extract"
	"github.com/modelscout/modelscout/internal/services/llm"
	"github.com/modelscout/modelscout/internal/services/middleware"
	"github.com/modelscout/modelscout/internal/services/rank"
	"github.com/modelscout/modelscout/internal/services/recommend"
	"github.com/modelscout/modelscout/internal/services/request"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Server is a ModelScout server instance.
type Server struct {
	config *config.Config
	app    *fiber.App

	redis        *redis.Client
	fetcher      *catalog.Fetcher
	snapshots    *catalog.SnapshotStore
	recommendSvc *recommend.Service
}

// NewServer creates a new Server instance with the given configuration.
// The cfg parameter is required and must not be nil.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Server{config: cfg}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	s.app = createFiberApp(s.config)

	redisClient, err := createRedisClient(s.config)
	if err != nil {
		return err
	}
	s.redis = redisClient
	if s.redis != nil {
		defer func() {
			if err := s.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}

	setupMiddleware(s.app, s.config)

	if err := s.setupRoutes(); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}
	defer s.closeServices()

	s.app.Get("/", welcomeHandler())

	fmt.Printf("ModelScout starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	fiberlog.Info("Server shutdown completed successfully")
	return nil
}

// setupRoutes wires the pipeline services and binds them to the HTTP
// surface.
func (s *Server) setupRoutes() error {
	cfg := s.config

	// Catalog: fetcher, optional snapshot persistence, TTL cache.
	s.fetcher = catalog.NewFetcher(cfg.Catalog)

	if cfg.Catalog.Snapshot != nil {
		snapshots, err := catalog.NewSnapshotStore(*cfg.Catalog.Snapshot)
		if err != nil {
			// Snapshots only speed up cold starts; a broken snapshot DB
			// should not keep the server down.
			fiberlog.Warnf("snapshot store unavailable, continuing without it: %v", err)
		} else {
			s.snapshots = snapshots
		}
	}

	catalogCache := catalog.NewCache(s.fetcher, cfg.CatalogTTL(), s.snapshots)
	catalogCache.WarmStart()

	// Stage 1: constraint extraction.
	extractorProvider, _ := cfg.GetProviderConfig(cfg.Extractor.Stage.Provider)
	extractor, err := extract.NewExtractor(cfg.Extractor, extractorProvider)
	if err != nil {
		return fmt.Errorf("extractor initialization failed: %w", err)
	}

	// Stage 3: generative ranking, optionally guarded by a breaker.
	rankerProvider, ok := cfg.GetProviderConfig(cfg.Ranker.Stage.Provider)
	if !ok {
		return fmt.Errorf("no provider configured for ranker backend %q", cfg.Ranker.Stage.Provider)
	}
	rankClient, err := llm.NewClient(cfg.Ranker.Stage.Provider, rankerProvider)
	if err != nil {
		return fmt.Errorf("ranker initialization failed: %w", err)
	}

	var breaker *circuitbreaker.CircuitBreaker
	if cfg.Ranker.CircuitBreaker != nil && s.redis != nil {
		breaker = circuitbreaker.New(s.redis, "ranker", *cfg.Ranker.CircuitBreaker)
	}
	ranker := rank.NewRanker(rankClient, cfg.Ranker, breaker)

	// Optional semantic cache over whole responses.
	var responseCache *recommend.ResponseCache
	if cfg.RecommendCache != nil && cfg.RecommendCache.Enabled {
		responseCache, err = recommend.NewResponseCache(*cfg.RecommendCache)
		if err != nil {
			return fmt.Errorf("response cache initialization failed: %w", err)
		}
	}

	s.recommendSvc = recommend.NewService(catalogCache, extractor, ranker, cfg.Ranker.MinCandidates, responseCache)

	reqSvc := request.NewBaseService()
	respSvc := response.NewBaseService()

	recommendHandler := api.NewRecommendHandler(reqSvc, s.recommendSvc, respSvc)
	modelsHandler := api.NewModelsHandler(reqSvc, s.recommendSvc, respSvc)
	healthHandler := api.NewHealthHandler()

	s.app.Post("/recommend", recommendHandler.Recommend)
	s.app.Get("/models", modelsHandler.List)
	s.app.Get("/health", healthHandler.HealthCheck)

	adminConfig := models.AdminConfig{}
	if cfg.Admin != nil {
		adminConfig = *cfg.Admin
	}
	adminAuth := middleware.NewAdminAuth(adminConfig)
	if adminAuth.Enabled() {
		adminHandler := api.NewAdminHandler(reqSvc, catalogCache, respSvc)
		adminGroup := s.app.Group("/admin", adminAuth.RequireAdmin())
		adminGroup.Post("/catalog/invalidate", adminHandler.InvalidateCatalog)
		adminGroup.Get("/catalog/status", adminHandler.CatalogStatus)
	} else {
		fiberlog.Info("Admin API disabled - no JWT secret configured")
	}

	return nil
}

func (s *Server) closeServices() {
	if s.recommendSvc != nil {
		if err := s.recommendSvc.Close(); err != nil {
			fiberlog.Errorf("Failed to close recommendation service: %v", err)
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			fiberlog.Errorf("Failed to close snapshot store: %v", err)
		}
	}
	if s.fetcher != nil {
		s.fetcher.Close()
	}
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "ModelScout v1.0",
		EnablePrintRoutes: !isProd,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		ReadBufferSize:    8192,
		WriteBufferSize:   8192,
		CaseSensitive:     true,
		ServerHeader:      "ModelScout",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:               300,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fmt.Errorf("300 requests per minute")
		},
	}))

	// Per-request timeout. The two generative calls dominate, so the
	// ceiling is generous but bounded.
	app.Use(func(c *fiber.Ctx) error {
		const (
			defaultTimeout = 60 * time.Second
			maxTimeout     = 2 * time.Minute
		)

		timeout := defaultTimeout
		if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
			if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
				timeout = min(d, maxTimeout)
			}
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		return c.Next()
	})

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Request-Timeout",
		AllowMethods:  "GET, POST, OPTIONS",
		MaxAge:        86400,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
	}))

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info", "":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}
}

// createRedisClient connects to redis when the circuit breaker asks for it.
// Returns nil without error when redis is not configured at all.
func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL := ""
	if cfg.Ranker.CircuitBreaker != nil {
		redisURL = cfg.Ranker.CircuitBreaker.RedisURL
	}
	if redisURL == "" {
		fiberlog.Info("Redis not configured - ranking circuit breaker disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 20
	opt.MinIdleConns = 5
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3

	client := redis.NewClient(opt)
	return testRedisConnectionWithRetry(client)
}

func testRedisConnectionWithRetry(client *redis.Client) (*redis.Client, error) {
	const maxAttempts = 3
	const baseDelay = 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()

		if err == nil {
			fiberlog.Infof("Redis connection established successfully (attempt %d/%d)", attempt, maxAttempts)
			return client, nil
		}

		fiberlog.Warnf("Redis connection failed (attempt %d/%d): %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * baseDelay)
		}
	}

	if err := client.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client after connection failures: %v", err)
	}
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxAttempts)
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "ModelScout",
			"version": "1.0",
			"endpoints": []string{
				"POST /recommend",
				"GET /models",
				"GET /health",
			},
		})
	}
}
