package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/jelajah/internal/adapters/dataset"
	natsadapter "github.com/samirrijal/jelajah/internal/adapters/nats"
	"github.com/samirrijal/jelajah/internal/adapters/postgres"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/pkg/config"
	"github.com/samirrijal/jelajah/internal/pkg/logging"
	"github.com/samirrijal/jelajah/internal/workflows"
)

// The ingestor loads a GeoJSON POI dataset into Postgres. By default it runs
// the import in-process; with --temporal it hands the import to the worker.
func main() {
	useTemporal := pflag.Bool("temporal", false, "run the import as a Temporal workflow")
	wait := pflag.Bool("wait", true, "with --temporal, wait for the workflow result")
	pflag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env: %v", err)
	}

	cfg, err := config.Load("jelajah-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	location := cfg.POI.Path
	if pflag.NArg() > 0 {
		location = pflag.Arg(0)
	}
	if location == "" {
		log.Fatal("usage: ingestor [--temporal] <path-or-url>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *useTemporal {
		runWorkflow(ctx, cfg, location, *wait)
		return
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, import will not be announced", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	source := dataset.NewGeoJSONSource(location, dataset.PropertyKeys{
		Name:        cfg.POI.NameKeys,
		Description: cfg.POI.DescriptionKeys,
	})
	importer := usecases.NewDatasetImporter(postgres.NewPOIRepo(db), publisher)

	start := time.Now()
	n, err := importer.Import(ctx, source)
	if err != nil {
		log.Fatalf("import %s: %v", source.Describe(), err)
	}
	slog.Info("dataset imported", "source", source.Describe(), "count", n, "took", time.Since(start))
}

func runWorkflow(ctx context.Context, cfg *config.Config, location string, wait bool) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "poi-import-" + uuid.NewString(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.ImportWorkflow, workflows.ImportInput{Location: location})
	if err != nil {
		log.Fatalf("start import workflow: %v", err)
	}
	slog.Info("import workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	if !wait {
		return
	}

	var result workflows.ImportResult
	if err := run.Get(ctx, &result); err != nil {
		log.Fatalf("import workflow: %v", err)
	}
	slog.Info("dataset imported", "source", location, "count", result.Count)
}
