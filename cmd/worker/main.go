package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/jelajah/internal/adapters/dataset"
	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
	"github.com/samirrijal/jelajah/internal/adapters/postgres"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/pkg/config"
	"github.com/samirrijal/jelajah/internal/pkg/logging"
	"github.com/samirrijal/jelajah/internal/workflows"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.Load("jelajah-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, imports will not be announced", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	repo := postgres.NewPOIRepo(db)
	keys := dataset.PropertyKeys{Name: cfg.POI.NameKeys, Description: cfg.POI.DescriptionKeys}

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ImportWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{
		Source: func(location string) ports.POISource {
			return dataset.NewGeoJSONSource(location, keys)
		},
		Importer: usecases.NewDatasetImporter(repo, publisher),
		Repo:     repo,
	})

	slog.Info("import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
