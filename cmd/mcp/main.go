package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/samirrijal/jelajah/internal/adapters/dataset"
	mcptools "github.com/samirrijal/jelajah/internal/adapters/mcp"
	"github.com/samirrijal/jelajah/internal/adapters/memory"
	"github.com/samirrijal/jelajah/internal/adapters/nominatim"
	"github.com/samirrijal/jelajah/internal/adapters/osrm"
	"github.com/samirrijal/jelajah/internal/adapters/postgres"
	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/pkg/config"
	"github.com/samirrijal/jelajah/internal/pkg/logging"
)

// The MCP server speaks JSON-RPC on stdout, so logs go to stderr.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.Load("jelajah-mcp")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx := context.Background()

	var source ports.POISource
	if cfg.POI.Source == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer db.Close()
		source = postgres.NewPOIRepo(db)
	} else {
		source = dataset.NewGeoJSONSource(cfg.POI.Path, dataset.PropertyKeys{
			Name:        cfg.POI.NameKeys,
			Description: cfg.POI.DescriptionKeys,
		})
	}

	store := usecases.NewPOIStore(source)
	if err := store.Load(ctx); err != nil {
		logger.Error("poi dataset failed to load, serving empty dataset", "error", err)
	}

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

	explorer := usecases.NewExplorerService(store, geocoder,
		usecases.NewTravelTimeRanker(router, domain.TravelMode(cfg.Routing.Profile)),
		memory.NewSessionStore(cfg.Session.TTL), nil, nil,
		usecases.ExplorerOptions{
			CandidateLimit:   cfg.Ranking.CandidateLimit,
			TopN:             cfg.Ranking.TopN,
			ToleranceDegrees: cfg.Ranking.ToleranceDegrees,
		})

	logger.Info("starting MCP server", "name", mcptools.ServerName, "pois", store.Status().Count)
	if err := server.ServeStdio(mcptools.New(explorer, logger).NewServer()); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
