package usecases

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/pkg/metrics"
)

// POIStore holds the static POI set in memory for the life of the process.
type POIStore struct {
	source ports.POISource

	mu     sync.RWMutex
	pois   []domain.PointOfInterest
	status domain.StoreStatus
}

// NewPOIStore creates an empty store backed by source.
func NewPOIStore(source ports.POISource) *POIStore {
	return &POIStore{
		source: source,
		status: domain.StoreStatus{Source: source.Describe()},
	}
}

// Load reads and validates the whole dataset. On failure the store is left empty and the
// returned error wraps domain.ErrLoad.
func (s *POIStore) Load(ctx context.Context) error {
	pois, err := s.source.LoadAll(ctx)
	if err == nil {
		err = ValidateDataset(pois)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.pois = nil
		s.status = domain.StoreStatus{Source: s.source.Describe(), Error: err.Error()}
		metrics.POIsLoaded.Set(0)
		return fmt.Errorf("%w: %s: %v", domain.ErrLoad, s.source.Describe(), err)
	}

	s.pois = pois
	s.status = domain.StoreStatus{
		Loaded:   true,
		Count:    len(pois),
		Source:   s.source.Describe(),
		LoadedAt: time.Now(),
	}
	metrics.POIsLoaded.Set(float64(len(pois)))
	return nil
}

// All returns a copy of the loaded POIs; empty if the load failed.
func (s *POIStore) All() []domain.PointOfInterest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pois)
}

// Page returns a window of the dataset and the total size.
func (s *POIStore) Page(offset, limit int) ([]domain.PointOfInterest, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.pois)
	if offset >= total {
		return []domain.PointOfInterest{}, total
	}
	end := min(offset+limit, total)
	return slices.Clone(s.pois[offset:end]), total
}

// Status reports the outcome of the last load.
func (s *POIStore) Status() domain.StoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
