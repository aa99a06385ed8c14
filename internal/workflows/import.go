package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// ImportInput is the input for ImportWorkflow.
type ImportInput struct {
	Location string // GeoJSON file path or http(s) URL
}

// ImportResult reports how many POIs were stored.
type ImportResult struct {
	Count int
}

// ImportWorkflow fetches a POI dataset, replaces the stored one and checks
// the row count. An invalid dataset fails without retries and leaves the
// stored dataset untouched.
func ImportWorkflow(ctx workflow.Context, input ImportInput) (ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting POI import", "location", input.Location)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidDataset},
		},
	})

	var pois []domain.PointOfInterest
	if err := workflow.ExecuteActivity(ctx, "FetchDataset", input.Location).Get(ctx, &pois); err != nil {
		return ImportResult{}, err
	}

	var count int
	if err := workflow.ExecuteActivity(ctx, "StoreDataset", pois).Get(ctx, &count); err != nil {
		return ImportResult{}, err
	}

	if err := workflow.ExecuteActivity(ctx, "VerifyDataset", count).Get(ctx, nil); err != nil {
		logger.Warn("import verification failed", "error", err)
		return ImportResult{}, err
	}

	logger.Info("POI import complete", "count", count)
	return ImportResult{Count: count}, nil
}
