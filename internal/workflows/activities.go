package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

// ErrTypeInvalidDataset marks a dataset that will never import, so Temporal
// does not retry it.
const ErrTypeInvalidDataset = "InvalidDataset"

// ImportActivities holds the activity implementations for ImportWorkflow.
type ImportActivities struct {
	// Source opens the dataset at location (file path or URL).
	Source   func(location string) ports.POISource
	Importer *usecases.DatasetImporter
	Repo     ports.POIRepository
}

// FetchDataset loads and validates the dataset at location.
func (a *ImportActivities) FetchDataset(ctx context.Context, location string) ([]domain.PointOfInterest, error) {
	src := a.Source(location)
	pois, err := src.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	if err := usecases.ValidateDataset(pois); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDataset, err)
	}
	activity.GetLogger(ctx).Info("dataset fetched", "source", src.Describe(), "count", len(pois))
	return pois, nil
}

// StoreDataset replaces the stored POIs and announces the import.
func (a *ImportActivities) StoreDataset(ctx context.Context, pois []domain.PointOfInterest) (int, error) {
	return a.Importer.Store(ctx, pois)
}

// VerifyDataset checks the repository holds exactly want POIs.
func (a *ImportActivities) VerifyDataset(ctx context.Context, want int) error {
	got, err := a.Repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count pois: %w", err)
	}
	if got != want {
		return fmt.Errorf("stored POI count mismatch: got %d, want %d", got, want)
	}
	return nil
}
