package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-consensus/internal/api/http"
	"github.com/i474232898/weather-consensus/internal/config"
	"github.com/i474232898/weather-consensus/internal/observability"
	"github.com/i474232898/weather-consensus/internal/scheduler"
	"github.com/i474232898/weather-consensus/internal/store"
	"github.com/i474232898/weather-consensus/internal/weather"
	"github.com/i474232898/weather-consensus/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Shared HTTP client for outbound provider calls. Each call is bounded by
	// its provider's own timeout, so the client itself has none.
	httpClient := &http.Client{}

	weatherAPI := providers.NewWeatherAPIProvider(httpClient, cfg.Settings(cfg.WeatherAPI))
	weatherbit := providers.NewWeatherbitProvider(httpClient, cfg.Settings(cfg.Weatherbit))

	provs := []weather.Provider{
		providers.NewOpenWeatherProvider(httpClient, cfg.Settings(cfg.OpenWeather)),
		weatherAPI,
		weatherbit,
	}

	// Open-Meteo is keyless but needs a geocoder to turn names into coordinates.
	if cfg.GeocoderAPIKey != "" {
		gc := providers.NewGoogleGeocoder(httpClient, cfg.GeocoderAPIKey)
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, gc, cfg.Settings(cfg.OpenMeteo)))
	}

	service := weather.NewService(provs, [2]weather.ForecastProvider{weatherAPI, weatherbit}, logger)
	logger.Info("providers configured", zap.Strings("providers", service.Providers()))

	// Probe reports with configured retention.
	reports := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)

	sched := scheduler.New(cfg.ProbeLocations, cfg.ProbeInterval, service, reports, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-consensus",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         "weather-consensus",
			"providers":       service.Providers(),
			"probedLocations": reports.Locations(),
		})
	})

	httpapi.RegisterRoutes(app, service, reports, logger)

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
