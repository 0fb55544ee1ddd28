package service

import (
	"context"
	"errors"
	"sync"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/pkg/evalworkbook"
)

func strPtr(s string) *string { return &s }

type fakeReadmes struct {
	items map[int64]*domain.ReadmeInstruction
}

func newFakeReadmes(items ...domain.ReadmeInstruction) *fakeReadmes {
	f := &fakeReadmes{items: map[int64]*domain.ReadmeInstruction{}}
	for i := range items {
		f.items[items[i].ID] = &items[i]
	}
	return f
}

func (f *fakeReadmes) Create(_ context.Context, r *domain.ReadmeInstruction) error {
	r.ID = int64(len(f.items) + 1)
	f.items[r.ID] = r
	return nil
}

func (f *fakeReadmes) GetByID(_ context.Context, id int64) (*domain.ReadmeInstruction, error) {
	if r, ok := f.items[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReadmes) Update(_ context.Context, r *domain.ReadmeInstruction) error {
	if _, ok := f.items[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.items[r.ID] = r
	return nil
}

func (f *fakeReadmes) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeReadmes) List(context.Context, domain.ReadmeFilter) ([]domain.ReadmeInstruction, error) {
	var out []domain.ReadmeInstruction
	for _, r := range f.items {
		out = append(out, *r)
	}
	return out, nil
}

type fakeMetrics struct {
	mu      sync.Mutex
	items   []domain.Metric
	listed  []domain.MetricFilter
	created []domain.Metric
}

func (f *fakeMetrics) Create(_ context.Context, m *domain.Metric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.items) + 100)
	f.items = append(f.items, *m)
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMetrics) List(_ context.Context, filter domain.MetricFilter) ([]domain.Metric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, filter)
	return f.items, nil
}

func (f *fakeMetrics) GetByIDs(_ context.Context, ids []int64) ([]domain.Metric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byID := map[int64]domain.Metric{}
	for _, m := range f.items {
		byID[m.ID] = m
	}
	var out []domain.Metric
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeProjects struct {
	orgs     []domain.Organization
	projects []domain.Project
}

func (f *fakeProjects) CreateOrganization(_ context.Context, o *domain.Organization) error {
	o.ID = int64(len(f.orgs) + 1)
	f.orgs = append(f.orgs, *o)
	return nil
}

func (f *fakeProjects) ListOrganizations(context.Context) ([]domain.Organization, error) {
	return f.orgs, nil
}

func (f *fakeProjects) CreateProject(_ context.Context, p *domain.Project) error {
	p.ID = int64(len(f.projects) + 1)
	f.projects = append(f.projects, *p)
	return nil
}

func (f *fakeProjects) GetProject(_ context.Context, id int64) (*domain.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjects) ListProjects(_ context.Context, organizationID int64) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSearcher struct {
	ids     []int64
	err     error
	indexed []domain.Metric
}

func (f *fakeSearcher) IndexMetric(_ context.Context, m domain.Metric) error {
	f.indexed = append(f.indexed, m)
	return f.err
}

func (f *fakeSearcher) SearchMetrics(context.Context, domain.MetricFilter) ([]int64, error) {
	return f.ids, f.err
}

type fakeAuditor struct {
	mu      sync.Mutex
	records []domain.GenerationRecord
	err     error
}

func (f *fakeAuditor) Record(_ context.Context, rec *domain.GenerationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return f.err
}

func (f *fakeAuditor) ListByProject(_ context.Context, projectID int64, _ int) ([]domain.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.GenerationRecord
	for _, r := range f.records {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

type failingBuilder struct{}

func (failingBuilder) Build(context.Context, *evalworkbook.Configuration) ([]byte, error) {
	return nil, &evalworkbook.GenerationError{Step: evalworkbook.StepReadme, Message: "disk full"}
}

var errSearchDown = errors.New("search cluster unavailable")

// libraryMetrics mirrors the default catalog, with one malformed weight.
func libraryMetrics() []domain.Metric {
	return []domain.Metric{
		{ID: 1, Type: domain.MetricTypeEvergreen, Name: "Accuracy", Weight: strPtr("8")},
		{ID: 2, Type: domain.MetricTypeEvergreen, Name: "Fluency", Weight: strPtr("5")},
		{ID: 3, Type: domain.MetricTypeCustom, Name: "Tone", Weight: strPtr("heavy")},
		{ID: 4, Type: domain.MetricTypeCustom, Name: "Red Flags"},
	}
}
