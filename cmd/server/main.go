package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/skyfare/internal/adapters"
	"github.com/dharmasatrya/skyfare/internal/cache"
	"github.com/dharmasatrya/skyfare/internal/config"
	"github.com/dharmasatrya/skyfare/internal/handler"
	"github.com/dharmasatrya/skyfare/internal/optimizer"
	"github.com/dharmasatrya/skyfare/internal/orchestrator"
	"github.com/dharmasatrya/skyfare/internal/progress"
	"github.com/dharmasatrya/skyfare/internal/ratelimit"
	"github.com/dharmasatrya/skyfare/internal/store"
	"github.com/dharmasatrya/skyfare/pkg/logging"
)

type Config struct {
	Port                  string
	LogLevel              string
	LogFormat             string
	RedisEnabled          bool
	RedisHost             string
	RedisPort             string
	CacheTTL              time.Duration
	ConfigDir             string
	ConfigPassphrase      string
	Airlines              []string
	SearchTimeout         time.Duration
	MaxConcurrentSearches int
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisHost + ":" + cfg.RedisPort,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		cancel()
		logger.Info().Str("addr", redisClient.Options().Addr).Msg("Redis connected")
	} else {
		logger.Info().Msg("Redis disabled, using in-memory stores")
	}

	var counterStore ratelimit.CounterStore
	var cacheStore cache.Store
	var searchStore store.SearchStore
	if redisClient != nil {
		counterStore = ratelimit.NewRedisCounterStore(redisClient)
		cacheStore = cache.NewRedisStore(redisClient)
		searchStore = store.NewRedisStore(redisClient, store.DefaultRecordTTL)
	} else {
		counterStore = ratelimit.NewMemoryCounterStore()
		cacheStore = cache.NewMemoryStore()
		searchStore = store.NewMemoryStore()
	}

	limiter := ratelimit.NewWindowLimiter(counterStore, ratelimit.DefaultLimits(), logger)
	pacer := ratelimit.NewPacer(ratelimit.PacerConfig{RequestsPerSecond: 10, Burst: 20})
	responseCache := cache.NewResponseCache(cacheStore, cfg.CacheTTL, logger)

	configRegistry, err := config.NewRegistry(cfg.ConfigDir, cfg.ConfigPassphrase, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize config registry")
	}

	adapterRegistry := adapters.NewRegistry(configRegistry, adapters.Deps{
		Limiter: limiter,
		Pacer:   pacer,
		Cache:   responseCache,
		Logger:  logger,
	}, "simulated")
	adapterRegistry.Register("simulated", adapters.SimulatedConstructor(adapters.ScenarioDefault))
	defer adapterRegistry.Cleanup()

	for _, airline := range cfg.Airlines {
		if _, err := adapterRegistry.GetAdapter(airline); err != nil {
			logger.Fatal().Err(err).Str("airline", airline).Msg("failed to initialize adapter")
		}
	}
	logger.Info().Strs("airlines", cfg.Airlines).Msg("adapters initialized")

	hub := progress.NewHub(logger)
	go hub.Run()

	orch := orchestrator.New(adapterRegistry, searchStore, hub, orchestrator.Config{
		MaxConcurrentSearches: cfg.MaxConcurrentSearches,
		SearchTimeout:         cfg.SearchTimeout,
		MaxRetries:            2,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}, logger)

	opt := optimizer.New(logger)

	searchHandler := handler.NewSearchHandler(orch, logger)
	optimizeHandler := handler.NewOptimizeHandler(opt, searchStore, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.POST("/flights/optimize/multi-city", optimizeHandler.OptimizeMultiCity)
	api.GET("/searches/:id/progress", searchHandler.GetProgress)
	api.POST("/searches/:id/filter", searchHandler.Filter)
	api.POST("/searches/:id/sort", searchHandler.Sort)
	api.POST("/searches/:id/optimize", optimizeHandler.Optimize)
	api.DELETE("/searches/:id", searchHandler.Cancel)
	e.GET("/ws/searches/:id", func(c echo.Context) error {
		return hub.ServeWS(c.Response(), c.Request(), c.Param("id"))
	})
	e.GET("/health", searchHandler.Health)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func loadConfig() Config {
	return Config{
		Port:                  getEnv("PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		RedisEnabled:          getEnvBool("REDIS_ENABLED", false),
		RedisHost:             getEnv("REDIS_HOST", "localhost"),
		RedisPort:             getEnv("REDIS_PORT", "6379"),
		CacheTTL:              getEnvDuration("CACHE_TTL", cache.DefaultTTL),
		ConfigDir:             getEnv("CONFIG_DIR", "configs"),
		ConfigPassphrase:      getEnv("CONFIG_PASSPHRASE", "dev-only-passphrase"),
		Airlines:              getEnvList("AIRLINES", []string{"garuda", "lionair", "batikair", "airasia"}),
		SearchTimeout:         getEnvDuration("SEARCH_TIMEOUT", 15*time.Second),
		MaxConcurrentSearches: getEnvInt("MAX_CONCURRENT_SEARCHES", 10),
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
