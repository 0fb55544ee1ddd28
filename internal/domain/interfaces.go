package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ReadmeFilter defines criteria for listing README templates
type ReadmeFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// MetricFilter defines criteria for listing metrics
type MetricFilter struct {
	Type       MetricType
	Query      string
	ActiveOnly bool
	Limit      int
}

// ReadmeRepository defines the interface for README template data access
type ReadmeRepository interface {
	Create(ctx context.Context, r *ReadmeInstruction) error
	GetByID(ctx context.Context, id int64) (*ReadmeInstruction, error)
	Update(ctx context.Context, r *ReadmeInstruction) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ReadmeFilter) ([]ReadmeInstruction, error)
}

// MetricRepository defines the interface for metric data access
type MetricRepository interface {
	Create(ctx context.Context, m *Metric) error
	List(ctx context.Context, filter MetricFilter) ([]Metric, error)
	// GetByIDs returns the metrics in the order of ids, skipping unknown ids.
	GetByIDs(ctx context.Context, ids []int64) ([]Metric, error)
}

// ProjectRepository defines the interface for organization and project data access
type ProjectRepository interface {
	CreateOrganization(ctx context.Context, o *Organization) error
	ListOrganizations(ctx context.Context) ([]Organization, error)
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListProjects(ctx context.Context, organizationID int64) ([]Project, error)
}

// MetricSearcher is a full-text index over the metric library.
type MetricSearcher interface {
	IndexMetric(ctx context.Context, m Metric) error
	SearchMetrics(ctx context.Context, filter MetricFilter) ([]int64, error)
}

// GenerationAuditor stores one record per generated workbook.
type GenerationAuditor interface {
	Record(ctx context.Context, rec *GenerationRecord) error
	ListByProject(ctx context.Context, projectID int64, limit int) ([]GenerationRecord, error)
}
