package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/wayfinder/internal/adapters/http"
	natsadapter "github.com/samirrijal/wayfinder/internal/adapters/nats"
	"github.com/samirrijal/wayfinder/internal/adapters/nominatim"
	"github.com/samirrijal/wayfinder/internal/adapters/osrm"
	"github.com/samirrijal/wayfinder/internal/adapters/valkey"
	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
	"github.com/samirrijal/wayfinder/internal/pkg/config"
	"github.com/samirrijal/wayfinder/internal/pkg/logging"
	"github.com/samirrijal/wayfinder/internal/pkg/telemetry"
)

const service = "wayfinder-api"

func main() {
	cfg, err := config.Load(service)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.CollectorAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstreams
	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout)
	router := osrm.New(cfg.Router.BaseURL, cfg.Router.Timeout)

	// Use cases
	searchSvc := usecases.NewPlaceSearchService(geocoder, cfg.Search.MinQueryLength, cfg.Geocoder.Limit)
	routeSvc := usecases.NewRouteService(router)

	deps := &http.Dependencies{
		Search: searchSvc,
		Routes: routeSvc,
		Screen: usecases.ScreenOptions{
			Search:         searchSvc,
			Routes:         routeSvc,
			SearchDebounce: cfg.Search.Debounce,
			DefaultCenter:  domain.Coordinate{Lat: cfg.Location.DefaultLat, Lon: cfg.Location.DefaultLon},
		},
		LocateTimeout:   cfg.Location.Timeout,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		Version:         version(),
		SpecPath:        http.DefaultSpecPath,
	}

	// Shared rate-limit storage
	if cfg.Valkey.Enabled {
		store, err := valkey.New(cfg.Valkey.Addr, valkey.DefaultPrefix)
		if err != nil {
			slog.Warn("valkey unavailable, rate limits are per instance", "error", err)
		} else {
			defer store.Close()
			deps.Limiter = store
		}
	}

	// NATS: screen events out, relay in
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			deps.Screen.Publisher = pub
		}

		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats relay conn unavailable", "error", err)
		} else {
			sub := natsadapter.NewSubscriber(natsConn)
			defer sub.Close()
			deps.NATS = natsConn
			deps.Events = sub
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Wayfinder API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowOrigins, ", "),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		ExposeHeaders:    "ETag, X-Request-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr,
			"geocoder", cfg.Geocoder.BaseURL, "router", cfg.Router.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func version() string {
	if v := os.Getenv("WAYFINDER_VERSION"); v != "" {
		return v
	}
	return "dev"
}
