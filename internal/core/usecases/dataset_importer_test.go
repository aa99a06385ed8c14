package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/usecases"
)

func TestDatasetImporter_Import(t *testing.T) {
	repo := &mockRepo{}
	pub := &mockPublisher{}
	imp := usecases.NewDatasetImporter(repo, pub)

	n, err := imp.Import(context.Background(), staticSource(poi("a", yogya), poi("b", northOf(yogya, 1))))

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, []string{"a", "b"}, ids(repo.replaced[0]))
	assert.Equal(t, []int{2}, pub.imports)
}

func TestDatasetImporter_InvalidDatasetWritesNothing(t *testing.T) {
	repo := &mockRepo{}
	imp := usecases.NewDatasetImporter(repo, nil)

	_, err := imp.Import(context.Background(), staticSource(poi("a", yogya), poi("a", northOf(yogya, 1))))

	require.ErrorIs(t, err, domain.ErrLoad)
	assert.Empty(t, repo.replaced)
}

func TestDatasetImporter_SourceError(t *testing.T) {
	repo := &mockRepo{}
	imp := usecases.NewDatasetImporter(repo, nil)
	src := &mockSource{loadAllFn: func(ctx context.Context) ([]domain.PointOfInterest, error) {
		return nil, errNetwork
	}}

	_, err := imp.Import(context.Background(), src)
	require.ErrorIs(t, err, domain.ErrLoad)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDatasetImporter_RepoErrorIsReturned(t *testing.T) {
	repo := &mockRepo{replaceFn: func(ctx context.Context, pois []domain.PointOfInterest) error {
		return errors.New("tx aborted")
	}}
	pub := &mockPublisher{}
	imp := usecases.NewDatasetImporter(repo, pub)

	_, err := imp.Store(context.Background(), []domain.PointOfInterest{poi("a", yogya)})
	require.Error(t, err)
	assert.Empty(t, pub.imports)
}

func TestDatasetImporter_PublishFailureIsNotFatal(t *testing.T) {
	repo := &mockRepo{}
	imp := usecases.NewDatasetImporter(repo, &mockPublisher{err: errors.New("nats: no responders")})

	n, err := imp.Store(context.Background(), []domain.PointOfInterest{poi("a", yogya)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name string
		pois []domain.PointOfInterest
		ok   bool
	}{
		{"valid", []domain.PointOfInterest{poi("a", yogya)}, true},
		{"empty", nil, false},
		{"missing id", []domain.PointOfInterest{poi("", yogya)}, false},
		{"duplicate id", []domain.PointOfInterest{poi("a", yogya), poi("a", yogya)}, false},
		{"missing name", []domain.PointOfInterest{{ID: "a", Location: yogya}}, false},
		{"latitude out of range", []domain.PointOfInterest{poi("a", domain.GeoPoint{Lat: -91, Lon: 0})}, false},
		{"longitude out of range", []domain.PointOfInterest{poi("a", domain.GeoPoint{Lat: 0, Lon: 181})}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usecases.ValidateDataset(tt.pois)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrLoad)
			}
		})
	}
}
