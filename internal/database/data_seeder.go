package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/logger"
	"github.com/locvowork/ltxbench/internal/repository"
	"github.com/locvowork/ltxbench/internal/repository/builder"
	"github.com/locvowork/ltxbench/pkg/dataflow"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

// Catalog is the seed content of the metric library.
type Catalog struct {
	Readmes []CatalogReadme `yaml:"readmes"`
	Metrics []CatalogMetric `yaml:"metrics"`
}

type CatalogReadme struct {
	Title          string   `yaml:"title"`
	EvalType       string   `yaml:"eval_type"`
	ScoreType      string   `yaml:"score_type"`
	PreEvalContext string   `yaml:"pre_eval_context"`
	Default        bool     `yaml:"default"`
	Lines          []string `yaml:"lines"`
}

type CatalogMetric struct {
	Type       domain.MetricType `yaml:"type"`
	Name       string            `yaml:"name"`
	Definition string            `yaml:"definition"`
	Notes      string            `yaml:"notes"`
	Weight     *string           `yaml:"weight"`
	GenAI      bool              `yaml:"genai"`
	MTLLM      bool              `yaml:"mt_llm"`
}

// DefaultCatalog parses the embedded default catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and checks a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, m := range c.Metrics {
		if !m.Type.Valid() {
			return nil, fmt.Errorf("catalog metric %d (%s): unknown type %q", i+1, m.Name, m.Type)
		}
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("catalog metric %d: name is required", i+1)
		}
	}
	return &c, nil
}

// MetricIndexer receives the seeded metrics for full-text search.
type MetricIndexer interface {
	BulkIndexMetrics(ctx context.Context, metrics []domain.Metric) error
}

type DataSeeder struct {
	db      *sql.DB
	indexer MetricIndexer
	backoff func(attempt int) time.Duration
}

// Bulk indexing sends chunks of indexChunkSize metrics, retrying each chunk while the
// search cluster is unavailable.
const (
	indexChunkSize = 200
	indexRetries   = 3
)

func indexBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}

// NewDataSeeder creates a seeder. indexer may be nil when search is not configured.
func NewDataSeeder(db *sql.DB, indexer MetricIndexer) *DataSeeder {
	return &DataSeeder{db: db, indexer: indexer, backoff: indexBackoff}
}

// SeedCatalog inserts the catalog, skipping metrics and README templates that already exist.
func (ds *DataSeeder) SeedCatalog(ctx context.Context, c *Catalog) error {
	start := time.Now()

	if err := EnsureSchema(ctx, ds.db); err != nil {
		return err
	}

	readmes, err := ds.seedReadmes(ctx, c.Readmes)
	if err != nil {
		return fmt.Errorf("failed to insert readmes: %w", err)
	}

	metrics, err := ds.seedMetrics(ctx, c.Metrics)
	if err != nil {
		return fmt.Errorf("failed to insert metrics: %w", err)
	}

	if ds.indexer != nil {
		all, err := repository.NewMetricRepository(ds.db).List(ctx, domain.MetricFilter{})
		if err != nil {
			return err
		}
		if err := ds.indexMetrics(ctx, all); err != nil {
			return fmt.Errorf("failed to index metrics: %w", err)
		}
		logger.InfoLog(ctx, "Indexed %d metrics", len(all))
	}

	logger.InfoLog(ctx, "Seeded %d readmes and %d metrics in %v", readmes, metrics, time.Since(start))
	return nil
}

func (ds *DataSeeder) indexMetrics(ctx context.Context, metrics []domain.Metric) error {
	var chunks [][]domain.Metric
	for len(metrics) > 0 {
		n := min(indexChunkSize, len(metrics))
		chunks = append(chunks, metrics[:n])
		metrics = metrics[n:]
	}
	return dataflow.ForEach(ctx, dataflow.From(ctx, chunks...), func(chunk []domain.Metric) error {
		return ds.indexer.BulkIndexMetrics(ctx, chunk)
	}, dataflow.WithRetry(indexRetries, ds.backoff))
}

func (ds *DataSeeder) seedReadmes(ctx context.Context, readmes []CatalogReadme) (int, error) {
	repo := repository.NewReadmeRepository(ds.db)
	existing, err := repo.List(ctx, domain.ReadmeFilter{})
	if err != nil {
		return 0, err
	}
	titles := make(map[string]bool, len(existing))
	for _, ri := range existing {
		titles[ri.Title] = true
	}

	created := 0
	for _, cr := range readmes {
		if titles[cr.Title] {
			continue
		}
		ri := &domain.ReadmeInstruction{
			Title:          cr.Title,
			Text:           strings.Join(cr.Lines, "\n"),
			ScoreType:      cr.ScoreType,
			EvalType:       cr.EvalType,
			PreEvalContext: cr.PreEvalContext,
			DefaultInd:     cr.Default,
			CustomInd:      !cr.Default,
		}
		if err := repo.Create(ctx, ri); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (ds *DataSeeder) seedMetrics(ctx context.Context, metrics []CatalogMetric) (int64, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	b := builder.NewSQLBuilder().
		Insert("metric", "metric_type", "metric_name", "metric_def", "metric_notes", "weight", "genai_ind", "mt_llm_ind")
	for _, m := range metrics {
		var weight interface{}
		if m.Weight != nil {
			weight = *m.Weight
		}
		b.Values(string(m.Type), m.Name, m.Definition, m.Notes, weight, m.GenAI, m.MTLLM)
	}
	query, args, err := b.OnConflictDoNothing("metric_type", "metric_name").BuildSafe()
	if err != nil {
		return 0, err
	}

	res, err := ds.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearData removes the whole library, including organizations and projects.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	for _, table := range []string{"project", "organization", "metric", "readme_instruction"} {
		query, args := builder.NewSQLBuilder().Delete(table).Build()
		if _, err := ds.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	logger.InfoLog(ctx, "Cleared library data")
	return nil
}
