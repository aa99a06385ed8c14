package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
)

// DatasetImporter copies a POI dataset into the repository in one step.
type DatasetImporter struct {
	repo      ports.POIRepository
	publisher ports.EventPublisher
}

// NewDatasetImporter creates a new DatasetImporter. publisher may be nil.
func NewDatasetImporter(repo ports.POIRepository, publisher ports.EventPublisher) *DatasetImporter {
	return &DatasetImporter{repo: repo, publisher: publisher}
}

// Import loads source, validates it and replaces the stored dataset.
func (i *DatasetImporter) Import(ctx context.Context, source ports.POISource) (int, error) {
	pois, err := source.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrLoad, source.Describe(), err)
	}
	if err := ValidateDataset(pois); err != nil {
		return 0, err
	}
	return i.Store(ctx, pois)
}

// Store replaces the repository contents with pois.
func (i *DatasetImporter) Store(ctx context.Context, pois []domain.PointOfInterest) (int, error) {
	if err := i.repo.ReplaceAll(ctx, pois); err != nil {
		return 0, fmt.Errorf("replace pois: %w", err)
	}
	if i.publisher != nil {
		if err := i.publisher.PublishDatasetImported(ctx, len(pois)); err != nil {
			slog.WarnContext(ctx, "publish dataset imported failed", "error", err)
		}
	}
	return len(pois), nil
}

// ValidateDataset rejects the whole dataset if any POI is unusable.
func ValidateDataset(pois []domain.PointOfInterest) error {
	if len(pois) == 0 {
		return fmt.Errorf("%w: dataset is empty", domain.ErrLoad)
	}
	seen := make(map[string]struct{}, len(pois))
	for idx, p := range pois {
		if p.ID == "" {
			return fmt.Errorf("%w: feature %d has no id", domain.ErrLoad, idx)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", domain.ErrLoad, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Name == "" {
			return fmt.Errorf("%w: feature %q has no name", domain.ErrLoad, p.ID)
		}
		if !p.Location.Valid() {
			return fmt.Errorf("%w: feature %q has invalid coordinates %v,%v",
				domain.ErrLoad, p.ID, p.Location.Lat, p.Location.Lon)
		}
	}
	return nil
}
