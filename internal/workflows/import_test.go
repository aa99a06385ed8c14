package workflows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/jelajah/internal/core/domain"
	"github.com/samirrijal/jelajah/internal/core/ports"
	"github.com/samirrijal/jelajah/internal/core/usecases"
	"github.com/samirrijal/jelajah/internal/workflows"
)

type fakeSource struct {
	pois []domain.PointOfInterest
	err  error
}

func (f *fakeSource) Describe() string { return "fake" }
func (f *fakeSource) LoadAll(ctx context.Context) ([]domain.PointOfInterest, error) {
	return f.pois, f.err
}

type fakeRepo struct {
	fakeSource
	stored []domain.PointOfInterest
}

func (f *fakeRepo) ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error {
	f.stored = pois
	return nil
}
func (f *fakeRepo) Count(ctx context.Context) (int, error) { return len(f.stored), nil }

func newEnv(t *testing.T, src *fakeSource, repo *fakeRepo) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.ImportWorkflow)
	env.RegisterActivity(&workflows.ImportActivities{
		Source:   func(location string) ports.POISource { return src },
		Importer: usecases.NewDatasetImporter(repo, nil),
		Repo:     repo,
	})
	return env
}

func TestImportWorkflow_StoresDataset(t *testing.T) {
	src := &fakeSource{pois: []domain.PointOfInterest{
		{ID: "tugu", Name: "Tugu", Location: domain.GeoPoint{Lat: -7.7829, Lon: 110.3671}},
		{ID: "kraton", Name: "Kraton", Location: domain.GeoPoint{Lat: -7.8053, Lon: 110.3642}},
	}}
	repo := &fakeRepo{}
	env := newEnv(t, src, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{Location: "data/wisata_diy.geojson"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res workflows.ImportResult
	require.NoError(t, env.GetWorkflowResult(&res))
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, src.pois, repo.stored)
}

func TestImportWorkflow_InvalidDatasetIsNotRetried(t *testing.T) {
	src := &fakeSource{pois: []domain.PointOfInterest{
		{ID: "dup", Name: "A", Location: domain.GeoPoint{Lat: -7.7, Lon: 110.3}},
		{ID: "dup", Name: "B", Location: domain.GeoPoint{Lat: -7.8, Lon: 110.4}},
	}}
	repo := &fakeRepo{}
	env := newEnv(t, src, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{Location: "bad.geojson"})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, workflows.ErrTypeInvalidDataset, appErr.Type())
	assert.Nil(t, repo.stored)
}

func TestImportWorkflow_SourceErrorFails(t *testing.T) {
	repo := &fakeRepo{}
	env := newEnv(t, &fakeSource{err: errors.New("404 Not Found")}, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{Location: "https://example.org/missing.geojson"})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Nil(t, repo.stored)
}
