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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/jelajah/internal/adapters/dataset"
	"github.com/samirrijal/jelajah/internal/adapters/http"
	"github.com/samirrijal/jelajah/internal/adapters/memory"
	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
	"github.com/samirrijal/jelajah/internal/adapters/nominatim"
	"github.com/samirrijal/jelajah/internal/adapters/osrm"
	"github.com/samirrijal/jelajah/internal/adapters/postgres"
	"github.com/samirrijal/jelajah/internal/adapters/valkey"
	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/pkg/config"
	"github.com/samirrijal/jelajah/internal/pkg/logging"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
	"github.com/samirrijal/jelajah/internal/pkg/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.Load("jelajah-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (optional unless it holds the POIs)
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go reportPoolStats(ctx, db)
	}

	// Cache
	var geocodeCache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		slog.Warn("valkey unavailable, geocodes will not be cached", "error", err)
		vc = nil
	} else if err := vc.Ping(ctx); err != nil {
		slog.Warn("valkey unreachable, geocodes will not be cached", "error", err)
		vc.Close()
		vc = nil
	} else {
		defer vc.Close()
		geocodeCache = vc
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, live route updates disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// POI dataset, loaded once. A failed load leaves an empty store and the
	// server keeps running.
	var source ports.POISource
	switch cfg.POI.Source {
	case "postgres":
		source = postgres.NewPOIRepo(db)
	default:
		source = dataset.NewGeoJSONSource(cfg.POI.Path, dataset.PropertyKeys{
			Name:        cfg.POI.NameKeys,
			Description: cfg.POI.DescriptionKeys,
		})
	}
	store := usecases.NewPOIStore(source)
	if err := store.Load(ctx); err != nil {
		slog.Error("poi dataset failed to load, serving empty dataset", "error", err)
	} else {
		slog.Info("poi dataset loaded", "source", source.Describe(), "count", store.Status().Count)
	}

	// Reload when the ingestor announces a new import.
	if cfg.POI.Source == "postgres" {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("dataset reload subscription unavailable", "error", err)
		} else {
			defer sub.Close()
			host, _ := os.Hostname()
			durable := "jelajah-api-" + strings.NewReplacer(".", "-", ":", "-").Replace(host)
			err := sub.SubscribeDatasetImported(ctx, durable, func(ctx context.Context, ev natsadapter.DatasetImported) error {
				slog.Info("dataset import announced, reloading", "count", ev.Count)
				return store.Load(ctx)
			})
			if err != nil {
				slog.Warn("subscribe dataset imported", "error", err)
			}
		}
	}

	// External services
	geocoder := nominatim.New(nominatim.Config{
		BaseURL:      cfg.Geocoder.BaseURL,
		UserAgent:    cfg.Geocoder.UserAgent,
		RatePerSec:   cfg.Geocoder.RatePerSec,
		Limit:        cfg.Geocoder.Limit,
		CountryCodes: cfg.Geocoder.CountryCodes,
		Timeout:      time.Duration(cfg.Geocoder.Timeout) * time.Second,
	})
	router := osrm.New(osrm.Config{
		BaseURL:    cfg.Routing.BaseURL,
		RatePerSec: cfg.Routing.RatePerSec,
		Timeout:    time.Duration(cfg.Routing.Timeout) * time.Second,
	})

	// Use cases
	ranker := usecases.NewTravelTimeRanker(router, domain.TravelMode(cfg.Routing.Profile))
	explorer := usecases.NewExplorerService(store, geocoder, ranker,
		memory.NewSessionStore(cfg.Session.TTL), geocodeCache, publisher,
		usecases.ExplorerOptions{
			CandidateLimit:   cfg.Ranking.CandidateLimit,
			TopN:             cfg.Ranking.TopN,
			ToleranceDegrees: cfg.Ranking.ToleranceDegrees,
			GeocodeCacheTTL:  cfg.Geocoder.CacheTTL,
		})

	deps := &http.Dependencies{
		Explorer: explorer,
		Store:    store,
		MapView: domain.MapView{
			Center: domain.GeoPoint{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
			Zoom:   cfg.Map.Zoom,
		},
		NATS:           natsConn,
		DB:             db,
		Cache:          vc,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Jelajah API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowOrigins, ", "),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
