package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coder4052/market-analysis/config"
	"github.com/coder4052/market-analysis/pkg/analysis"
	"github.com/coder4052/market-analysis/pkg/api/handlers"
	"github.com/coder4052/market-analysis/pkg/cache"
	"github.com/coder4052/market-analysis/pkg/jobs"
	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/metrics"
	custommiddleware "github.com/coder4052/market-analysis/pkg/middleware"
	"github.com/coder4052/market-analysis/pkg/normalize"
	"github.com/coder4052/market-analysis/pkg/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize Redis cache (optional)
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = cache.NewClient(cfg.RedisURL, time.Duration(cfg.CacheTTLHours)*time.Hour)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Printf("✅ Redis connected")
	} else {
		log.Printf("ℹ️  Report cache disabled (no REDIS_URL configured)")
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize services
	normalizer := normalize.NewService(appLogger)
	analyzer := analysis.NewAnalyzer(analysis.Config{
		OurBrand:             cfg.OurBrand,
		VolumeSimilarity:     cfg.VolumeSimilarity,
		TopBrandsCount:       cfg.TopBrandsCount,
		TopVolumeCombos:      cfg.TopVolumeCombos,
		MainCompetitorsCount: cfg.MainCompetitorsCount,
		ExcellentRating:      cfg.ExcellentRating,
		GoodRating:           cfg.GoodRating,
		HighEngagementRatio:  cfg.HighEngagementRatio,
		GoodEngagementRatio:  cfg.GoodEngagementRatio,
	}, appLogger)
	store := storage.New(storage.Config{
		Token:      cfg.GitHubToken,
		Repo:       cfg.GitHubRepo,
		ResultsDir: cfg.GitHubResultsDir,
		BaseURL:    cfg.GitHubAPIBaseURL,
		KeepFiles:  cfg.ReportKeepFiles,
	}, appLogger)

	// Initialize cron manager for report maintenance
	cronManager := jobs.NewCronManager(store, redisClient, cfg.ReportKeepFiles, appLogger)
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started successfully")

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(
		normalizer, analyzer, store, redisClient, prometheusMetrics, cfg.OurBrand, appLogger)
	reportsHandler := handlers.NewReportsHandler(
		store, redisClient, prometheusMetrics, cfg.ReportKeepFiles, cfg.GitHubRepo, appLogger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.AllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{}))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health and status endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Market Analysis API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		cacheStatus := "disabled"
		if redisClient != nil {
			cacheStatus = "up"
			if err := redisClient.Redis.Ping(c.Request().Context()).Err(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"cache":  "down",
				})
			}
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status": "healthy",
			"cache":  cacheStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	analysisGroup := v1.Group("/analysis")
	{
		analysisGroup.POST("/upload", analysisHandler.Upload)
	}

	reportsGroup := v1.Group("/reports")
	{
		reportsGroup.GET("/latest", reportsHandler.Latest)
		reportsGroup.GET("/history", reportsHandler.History)
		reportsGroup.POST("/cleanup", reportsHandler.Cleanup)
	}

	v1.GET("/storage/status", reportsHandler.StorageStatus)

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Market Analysis API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🏷️  Our brand: %s, report store: %s/%s", cfg.OurBrand, cfg.GitHubRepo, cfg.GitHubResultsDir)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: Daily 2AM (report cleanup), Daily 3AM (cache warm)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
