package service

import (
	"context"
	"testing"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMetricsUsesSearchIndex(t *testing.T) {
	metrics := &fakeMetrics{items: libraryMetrics()}
	svc := NewLibraryService(newFakeReadmes(), metrics, &fakeProjects{}, &fakeSearcher{ids: []int64{3, 1}})

	got, err := svc.ListMetrics(context.Background(), domain.MetricFilter{Query: "tone"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Tone", got[0].Name)
	assert.Equal(t, "Accuracy", got[1].Name)
	assert.Empty(t, metrics.listed)
}

func TestListMetricsFallsBackToSQL(t *testing.T) {
	metrics := &fakeMetrics{items: libraryMetrics()}
	svc := NewLibraryService(newFakeReadmes(), metrics, &fakeProjects{}, &fakeSearcher{err: errSearchDown})

	filter := domain.MetricFilter{Query: "tone", Type: domain.MetricTypeCustom}
	_, err := svc.ListMetrics(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []domain.MetricFilter{filter}, metrics.listed)
}

func TestListMetricsWithoutSearcher(t *testing.T) {
	metrics := &fakeMetrics{items: libraryMetrics()}
	svc := NewLibraryService(newFakeReadmes(), metrics, &fakeProjects{}, nil)

	got, err := svc.ListMetrics(context.Background(), domain.MetricFilter{Query: "tone"})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	_, err = svc.ListMetrics(context.Background(), domain.MetricFilter{Type: "OTHER"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateMetric(t *testing.T) {
	metrics := &fakeMetrics{}
	searcher := &fakeSearcher{}
	svc := NewLibraryService(newFakeReadmes(), metrics, &fakeProjects{}, searcher)
	ctx := context.Background()

	m := &domain.Metric{Type: " custom ", Name: " Tone ", Weight: strPtr("  ")}
	require.NoError(t, svc.CreateMetric(ctx, m))
	assert.Equal(t, domain.MetricTypeCustom, m.Type)
	assert.Equal(t, "Tone", m.Name)
	assert.Nil(t, m.Weight)
	require.Len(t, searcher.indexed, 1)
	assert.Equal(t, m.ID, searcher.indexed[0].ID)

	assert.ErrorIs(t, svc.CreateMetric(ctx, &domain.Metric{Type: "CUSTOM"}), ErrInvalidInput)
	assert.ErrorIs(t, svc.CreateMetric(ctx, &domain.Metric{Type: "OTHER", Name: "X"}), ErrInvalidInput)
	assert.Len(t, metrics.created, 1)
}

func TestCreateMetricIgnoresIndexFailure(t *testing.T) {
	svc := NewLibraryService(newFakeReadmes(), &fakeMetrics{}, &fakeProjects{}, &fakeSearcher{err: errSearchDown})
	assert.NoError(t, svc.CreateMetric(context.Background(), &domain.Metric{Type: "EVERGREEN", Name: "Accuracy"}))
}

func TestReadmeLifecycle(t *testing.T) {
	svc := NewLibraryService(newFakeReadmes(), &fakeMetrics{}, &fakeProjects{}, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.CreateReadme(ctx, &domain.ReadmeInstruction{Title: "  "}), ErrInvalidInput)

	ri := &domain.ReadmeInstruction{Title: " MT ", Text: "line"}
	require.NoError(t, svc.CreateReadme(ctx, ri))
	assert.Equal(t, "MT", ri.Title)

	ri.Status = "bogus"
	require.NoError(t, svc.UpdateReadme(ctx, ri))
	got, err := svc.GetReadme(ctx, ri.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	require.NoError(t, svc.DeleteReadme(ctx, ri.ID))
	_, err = svc.GetReadme(ctx, ri.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrganizationsAndProjects(t *testing.T) {
	svc := NewLibraryService(newFakeReadmes(), &fakeMetrics{}, &fakeProjects{}, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.CreateOrganization(ctx, &domain.Organization{}), ErrInvalidInput)
	org := &domain.Organization{Name: "Acme"}
	require.NoError(t, svc.CreateOrganization(ctx, org))

	assert.ErrorIs(t, svc.CreateProject(ctx, &domain.Project{Name: "P"}), ErrInvalidInput)
	require.NoError(t, svc.CreateProject(ctx, &domain.Project{Name: "Launch", OrganizationID: org.ID}))

	projects, err := svc.ListProjects(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Launch", projects[0].Name)
}
