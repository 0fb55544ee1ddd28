package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/repository/builder"
)

var metricColumns = []string{
	"id", "metric_type", "metric_name", "metric_def", "metric_notes", "weight",
	"genai_ind", "mt_llm_ind", "score_type", "eval_type", "status_ind", "created_at", "modified_at",
}

type metricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a new instance of MetricRepository
func NewMetricRepository(db *sql.DB) domain.MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) Create(ctx context.Context, m *domain.Metric) error {
	if m.Status == "" {
		m.Status = domain.StatusActive
	}
	query, args := builder.NewSQLBuilder().
		Insert("metric", "metric_type", "metric_name", "metric_def", "metric_notes", "weight",
			"genai_ind", "mt_llm_ind", "score_type", "eval_type", "status_ind").
		Values(string(m.Type), m.Name, m.Definition, m.Notes, nullString(m.Weight),
			m.GenAIInd, m.MTLLMInd, m.ScoreType, m.EvalType, m.Status).
		Returning("id", "created_at", "modified_at").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt, &m.ModifiedAt); err != nil {
		return fmt.Errorf("failed to create metric %q: %w", m.Name, err)
	}
	return nil
}

// List returns metrics ordered by type then name. A non-empty Query matches name
// or definition case-insensitively.
func (r *metricRepository) List(ctx context.Context, filter domain.MetricFilter) ([]domain.Metric, error) {
	b := builder.NewSQLBuilder()
	b.Select(metricColumns...).
		From("metric").
		OrderBy("metric_type DESC").
		OrderBy("metric_name ASC")

	if filter.Type != "" {
		b.Where("metric_type = ?", string(filter.Type))
	}
	if filter.ActiveOnly {
		b.Where("status_ind = ?", domain.StatusActive)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			return g.Where("metric_name ILIKE ?", pattern).Or("metric_def ILIKE ?", pattern)
		})
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}

	query, args := b.Build()
	return r.query(ctx, query, args)
}

func (r *metricRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Metric, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := builder.NewSQLBuilder().
		Select(metricColumns...).
		From("metric").
		Where("id = ANY(?)", pq.Array(ids)).
		Build()

	metrics, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return OrderByIDs(metrics, ids), nil
}

func (r *metricRepository) query(ctx context.Context, query string, args []interface{}) ([]domain.Metric, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		var (
			m      domain.Metric
			mType  string
			weight sql.NullString
		)
		if err := rows.Scan(&m.ID, &mType, &m.Name, &m.Definition, &m.Notes, &weight,
			&m.GenAIInd, &m.MTLLMInd, &m.ScoreType, &m.EvalType, &m.Status, &m.CreatedAt, &m.ModifiedAt); err != nil {
			return nil, err
		}
		m.Type = domain.MetricType(mType)
		if weight.Valid {
			w := weight.String
			m.Weight = &w
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// OrderByIDs arranges metrics in the order of ids. Repeated ids repeat the metric;
// ids without a metric are skipped.
func OrderByIDs(metrics []domain.Metric, ids []int64) []domain.Metric {
	byID := make(map[int64]domain.Metric, len(metrics))
	for _, m := range metrics {
		byID[m.ID] = m
	}
	ordered := make([]domain.Metric, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
