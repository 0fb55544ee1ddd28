package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/logger"
)

// ErrInvalidInput marks request data the library refuses to store.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// LibraryService handles business logic for README templates, metrics, organizations and projects
type LibraryService struct {
	readmes  domain.ReadmeRepository
	metrics  domain.MetricRepository
	projects domain.ProjectRepository
	searcher domain.MetricSearcher
}

// NewLibraryService creates a new LibraryService instance. searcher may be nil,
// in which case metric search runs in SQL.
func NewLibraryService(
	readmes domain.ReadmeRepository,
	metrics domain.MetricRepository,
	projects domain.ProjectRepository,
	searcher domain.MetricSearcher,
) *LibraryService {
	return &LibraryService{
		readmes:  readmes,
		metrics:  metrics,
		projects: projects,
		searcher: searcher,
	}
}

// ==================== README Operations ====================

func (s *LibraryService) ListReadmes(ctx context.Context, filter domain.ReadmeFilter) ([]domain.ReadmeInstruction, error) {
	return s.readmes.List(ctx, filter)
}

func (s *LibraryService) GetReadme(ctx context.Context, id int64) (*domain.ReadmeInstruction, error) {
	return s.readmes.GetByID(ctx, id)
}

func (s *LibraryService) CreateReadme(ctx context.Context, ri *domain.ReadmeInstruction) error {
	if err := validateReadme(ri); err != nil {
		return err
	}
	return s.readmes.Create(ctx, ri)
}

func (s *LibraryService) UpdateReadme(ctx context.Context, ri *domain.ReadmeInstruction) error {
	if err := validateReadme(ri); err != nil {
		return err
	}
	if ri.Status != domain.StatusActive && ri.Status != domain.StatusInactive {
		ri.Status = domain.StatusActive
	}
	return s.readmes.Update(ctx, ri)
}

func (s *LibraryService) DeleteReadme(ctx context.Context, id int64) error {
	return s.readmes.Delete(ctx, id)
}

func validateReadme(ri *domain.ReadmeInstruction) error {
	ri.Title = strings.TrimSpace(ri.Title)
	if ri.Title == "" {
		return invalid("readme title cannot be empty")
	}
	return nil
}

// ==================== Metric Operations ====================

// ListMetrics lists the metric library. A query goes to the search index when one
// is configured and falls back to SQL matching when the index fails.
func (s *LibraryService) ListMetrics(ctx context.Context, filter domain.MetricFilter) ([]domain.Metric, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, invalid("unknown metric type %q", filter.Type)
	}
	if strings.TrimSpace(filter.Query) == "" || s.searcher == nil {
		return s.metrics.List(ctx, filter)
	}

	ids, err := s.searcher.SearchMetrics(ctx, filter)
	if err != nil {
		logger.WarnLog(ctx, "Metric search index unavailable, falling back to SQL: %v", err)
		return s.metrics.List(ctx, filter)
	}
	return s.metrics.GetByIDs(ctx, ids)
}

func (s *LibraryService) CreateMetric(ctx context.Context, m *domain.Metric) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Type = domain.MetricType(strings.ToUpper(strings.TrimSpace(string(m.Type))))
	if m.Name == "" {
		return invalid("metric name cannot be empty")
	}
	if !m.Type.Valid() {
		return invalid("metric type must be %s or %s", domain.MetricTypeEvergreen, domain.MetricTypeCustom)
	}
	if m.Weight != nil && strings.TrimSpace(*m.Weight) == "" {
		m.Weight = nil
	}

	if err := s.metrics.Create(ctx, m); err != nil {
		return err
	}
	if s.searcher != nil {
		// the SQL row is the source of truth
		if err := s.searcher.IndexMetric(ctx, *m); err != nil {
			logger.WarnLog(ctx, "Failed to index metric %d: %v", m.ID, err)
		}
	}
	return nil
}

// ==================== Organization / Project Operations ====================

func (s *LibraryService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return s.projects.ListOrganizations(ctx)
}

func (s *LibraryService) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		return invalid("organization name cannot be empty")
	}
	return s.projects.CreateOrganization(ctx, o)
}

func (s *LibraryService) ListProjects(ctx context.Context, organizationID int64) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, organizationID)
}

func (s *LibraryService) CreateProject(ctx context.Context, p *domain.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("project name cannot be empty")
	}
	if p.OrganizationID <= 0 {
		return invalid("invalid organization ID")
	}
	return s.projects.CreateProject(ctx, p)
}
