package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/cache"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/logger"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalw("failed to load config", "error", err)
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.Get()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client and response cache for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client:   &http.Client{Timeout: cfg.HTTPTimeout},
		Cache:    cache.New(),
		CacheTTL: cfg.CacheTTL,
	}
	svc := weather.NewService(newProvider(cfg, httpCfg))

	kv, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalw("failed to open preference store", "backend", cfg.Store.Backend, "error", err)
	}
	defer kv.Close()

	session := dashboard.NewSession(svc, dashboard.NewPreferences(kv), dashboard.Options{
		Retry:           &dashboard.RetryPolicy{MaxRetries: cfg.RetryMax, Delay: cfg.RetryDelay},
		DebounceDelay:   cfg.DebounceDelay,
		DefaultLanguage: cfg.Language,
	})
	session.AttachRefresher(scheduler.New(cfg.AutoRefreshInterval, session.Refresh))
	session.Load(ctx)
	defer session.Close()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          time.Minute,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-dashboard",
			"provider": svc.ProviderName(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, session)

	go func() {
		log.Infow("http server listening", "port", cfg.Port, "provider", svc.ProviderName(), "store", cfg.Store.Backend)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorw("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("error during shutdown", "error", err)
	}
}

func newProvider(cfg *config.AppConfig, httpCfg providers.HTTPClientConfig) weather.Provider {
	switch cfg.Provider {
	case config.ProviderOpenMeteo:
		// Open-Meteo needs no key, but city names are geocoded through Google.
		return providers.NewOpenMeteoProvider(httpCfg, providers.NewGoogleGeocoder(cfg.GeocoderAPIKey))
	default:
		return providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherAPIKey,
			providers.WithOpenWeatherLanguage(cfg.Language))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendSQLite:
		return store.NewSQLite(cfg.SQLitePath)
	case config.BackendRedis:
		return store.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown preference store backend %q", cfg.Backend)
	}
}
