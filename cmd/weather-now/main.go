package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-now/internal/api/http"
	"github.com/i474232898/weather-now/internal/config"
	"github.com/i474232898/weather-now/internal/device"
	"github.com/i474232898/weather-now/internal/logging"
	"github.com/i474232898/weather-now/internal/metrics"
	"github.com/i474232898/weather-now/internal/pipeline"
	"github.com/i474232898/weather-now/internal/presenter"
	"github.com/i474232898/weather-now/internal/store"
	"github.com/i474232898/weather-now/internal/weather"
	"github.com/i474232898/weather-now/internal/weather/providers"
)

func main() {
	serve := flag.Bool("serve", false, "serve the pipeline over HTTP instead of running it once")
	rationale := flag.String("rationale", string(presenter.ChooseCancel), "answer to the rationale dialog in one-shot mode (cancel or settings)")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	host := newHost(cfg)
	client := newClient(cfg)
	slog.Info("weather client ready", "provider", client.Name())

	opts := pipeline.Options{
		Units:  weather.NewUnitPolicy(cfg.Display.FahrenheitRegions),
		Region: cfg.Region(),
		Clock:  weather.NewClock(cfg.Display.ZoneOffsetMinutes),
	}
	slog.Info("display settings", "region", opts.Region, "unit", opts.Units.SymbolFor(opts.Region))

	deps := pipeline.Deps{
		Permissions: host,
		Requester:   host,
		Settings:    host,
		Providers:   host,
		Positions:   host,
		Client:      client,
	}

	if *serve {
		runServer(cfg, host, deps, opts)
		return
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps.Presenter = presenter.NewTerminal(os.Stdout, presenter.RationaleChoice(*rationale))
	ctrl := pipeline.NewController(deps, opts)

	out, err := ctrl.Run(ctx)
	if err != nil {
		slog.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	// The prompt is answered asynchronously; once it closes the screen is
	// ready again, which is a new trigger.
	if out.Kind == pipeline.KindNeedsPermissionPrompt && awaitAnswer(ctx, host) {
		out, err = ctrl.Run(ctx)
		if err != nil {
			slog.Error("pipeline run failed", "error", err)
			os.Exit(1)
		}
	}

	if out.Kind != pipeline.KindSuccess {
		os.Exit(2)
	}
}

func newHost(cfg *config.AppConfig) *device.Host {
	state := device.HostState{
		Granted: map[device.Permission]bool{
			device.FineLocation:   cfg.Device.FineGranted,
			device.CoarseLocation: cfg.Device.CoarseGranted,
		},
		ShowRationale: map[device.Permission]bool{
			device.FineLocation:   cfg.Device.ShowRationale,
			device.CoarseLocation: cfg.Device.ShowRationale,
		},
		GPS:            cfg.Device.GPSEnabled,
		Network:        cfg.Device.NetworkEnabled,
		Position:       cfg.Position(),
		GrantOnRequest: cfg.Device.GrantOnRequest,
		SettingsURL:    cfg.Device.SettingsURL,
	}

	var pos device.PositionSource
	if cfg.Geocoder.APIKey != "" && state.Position == nil {
		pos = device.NewGeocodedPosition(cfg.Geocoder.APIKey, cfg.Geocoder.City, cfg.Geocoder.Country)
	}
	return device.NewHost(state, pos)
}

func newClient(cfg *config.AppConfig) *providers.OpenWeatherClient {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.OpenWeather.HTTPTimeout,
	}

	var network device.Reachability = device.AlwaysReachable{}
	if cfg.Device.ProbeReachability {
		probe, err := device.NewTCPReachability(cfg.OpenWeather.BaseURL, 3*time.Second)
		if err != nil {
			slog.Warn("reachability probe disabled", "error", err)
		} else {
			network = probe
		}
	}

	return providers.NewOpenWeatherClient(
		providers.OpenWeatherConfig{
			BaseURL: cfg.OpenWeather.BaseURL,
			APIKey:  cfg.OpenWeather.APIKey,
		},
		providers.HTTPClientConfig{
			Client: httpClient,
			Breaker: providers.BreakerConfig{
				MaxRequests: cfg.Breaker.MaxRequests,
				Interval:    cfg.Breaker.Interval,
				Timeout:     cfg.Breaker.Timeout,
				Failures:    cfg.Breaker.Failures,
			},
			RatePerSecond: cfg.OpenWeather.RatePerSecond,
			Burst:         cfg.OpenWeather.Burst,
		},
		network,
	)
}

// awaitAnswer waits for the host to record an answer to the permission prompt.
func awaitAnswer(ctx context.Context, host *device.Host) bool {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(2 * time.Second)

	for {
		snap := host.PermissionSnapshot()
		for _, p := range device.LocationPermissions {
			if snap.Granted[p] || snap.ShowRationale[p] {
				return true
			}
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

func runServer(cfg *config.AppConfig, host *device.Host, deps pipeline.Deps, opts pipeline.Options) {
	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.Server.MaxHistory, cfg.Server.MaxAge)
	rec := presenter.NewRecorder(memStore)

	// The recorder comes first so that it owns the rationale dialog.
	deps.Presenter = presenter.Multi{rec, presenter.NewTerminal(os.Stdout, presenter.ChooseCancel)}
	ctrl := pipeline.NewController(deps, opts)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-now",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.Server.RunTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-now",
			"state":   ctrl.State(),
		})
	})
	app.Get("/metrics", metrics.Handler())

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Handlers{
		Runner:     ctrl,
		Grants:     host,
		Recorder:   rec,
		Store:      memStore,
		RunTimeout: cfg.Server.RunTimeout,
	})

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()
	slog.Info("listening", "port", cfg.Server.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
