package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/logger"
	"github.com/locvowork/ltxbench/pkg/dataflow"
	"github.com/locvowork/ltxbench/pkg/evalworkbook"
)

// WorkbookBuilder renders a configuration into xlsx bytes.
type WorkbookBuilder interface {
	Build(ctx context.Context, cfg *evalworkbook.Configuration) ([]byte, error)
}

// CustomMetricInput is a custom metric typed in for one template only.
type CustomMetricInput struct {
	Name       string      `json:"name"`
	Definition string      `json:"definition"`
	Notes      string      `json:"notes"`
	Weight     interface{} `json:"weight"`
}

// GenerateRequest describes one workbook to generate.
type GenerateRequest struct {
	ProjectID                 int64               `json:"projectId"`
	IncludeReadme             bool                `json:"includeReadme"`
	ReadmeID                  int64               `json:"readmeId"`
	CustomReadmeLines         []string            `json:"customReadmeLines"`
	StakeholderPerspective    string              `json:"stakeholderPerspective"`
	Terminology               map[string]string   `json:"terminology"`
	MetricIDs                 []int64             `json:"metricIds"`
	CustomMetrics             []CustomMetricInput `json:"customMetrics"`
	NumModels                 int                 `json:"numModels"`
	Filename                  string              `json:"filename"`
	IncludeYellowWarning      bool                `json:"includeYellowWarning"`
	IncludeDataAnalysis       bool                `json:"includeDataAnalysis"`
	IncludeCriteriaAssessment bool                `json:"includeCriteriaAssessment"`
	HighlightTerms            bool                `json:"highlightTerms"`
}

// GeneratedWorkbook is a finished xlsx file.
type GeneratedWorkbook struct {
	Filename       string
	Data           []byte
	Sheets         []string
	CoercedWeights []string
}

// TemplateOptions tunes TemplateService.
type TemplateOptions struct {
	DefaultWeight int
	BatchWorkers  int
}

// TemplateService assembles workbook configurations from the library and generates workbooks
type TemplateService struct {
	readmes  domain.ReadmeRepository
	metrics  domain.MetricRepository
	projects domain.ProjectRepository
	auditor  domain.GenerationAuditor
	builder  WorkbookBuilder
	opts     TemplateOptions
}

// NewTemplateService creates a new TemplateService instance. auditor may be nil.
func NewTemplateService(
	readmes domain.ReadmeRepository,
	metrics domain.MetricRepository,
	projects domain.ProjectRepository,
	auditor domain.GenerationAuditor,
	builder WorkbookBuilder,
	opts TemplateOptions,
) *TemplateService {
	if opts.DefaultWeight < evalworkbook.MinWeight || opts.DefaultWeight > evalworkbook.MaxWeight {
		opts.DefaultWeight = evalworkbook.DefaultWeight
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = 1
	}
	return &TemplateService{
		readmes:  readmes,
		metrics:  metrics,
		projects: projects,
		auditor:  auditor,
		builder:  builder,
		opts:     opts,
	}
}

var workbookSuffix = regexp.MustCompile(`(?i)\.xls[xm]$`)

// NormalizeFilename trims the name and strips an .xlsx or .xlsm suffix.
func NormalizeFilename(name string) string {
	return strings.TrimSpace(workbookSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}

// Generate validates req, assembles its configuration and builds the workbook.
func (s *TemplateService) Generate(ctx context.Context, req GenerateRequest) (*GeneratedWorkbook, error) {
	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"project_id": req.ProjectID,
		"filename":   req.Filename,
	})

	cfg, filename, err := s.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := s.builder.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	out := &GeneratedWorkbook{
		Filename:       filename + ".xlsx",
		Data:           data,
		Sheets:         evalworkbook.SheetNames(cfg),
		CoercedWeights: cfg.CoercedWeights(),
	}
	if len(out.CoercedWeights) > 0 {
		logger.WarnLog(ctx, "Weights replaced by default %d for: %s", s.opts.DefaultWeight, strings.Join(out.CoercedWeights, ", "))
	}
	s.audit(ctx, req.ProjectID, out, len(cfg.EvergreenMetrics)+len(cfg.CustomMetrics))
	logger.InfoLog(ctx, "Generated workbook %s (%d bytes, %d sheets)", out.Filename, len(out.Data), len(out.Sheets))
	return out, nil
}

// Assemble turns a request into a validated workbook configuration and the bare filename.
func (s *TemplateService) Assemble(ctx context.Context, req GenerateRequest) (*evalworkbook.Configuration, string, error) {
	if len(req.MetricIDs) == 0 && len(req.CustomMetrics) == 0 {
		return nil, "", &evalworkbook.ConfigurationError{Field: "metrics", Err: evalworkbook.ErrNoMetrics}
	}
	filename := NormalizeFilename(req.Filename)
	if filename == "" {
		return nil, "", &evalworkbook.ConfigurationError{Field: "filename", Err: evalworkbook.ErrEmptyFilename}
	}
	if req.NumModels < 1 || req.NumModels > evalworkbook.MaxModelSheets {
		return nil, "", &evalworkbook.ConfigurationError{
			Field: "numModels",
			Err:   fmt.Errorf("%w: got %d", evalworkbook.ErrModelCount, req.NumModels),
		}
	}
	if req.ProjectID > 0 && s.projects != nil {
		if _, err := s.projects.GetProject(ctx, req.ProjectID); err != nil {
			return nil, "", err
		}
	}

	cfg := &evalworkbook.Configuration{
		Terminology:               req.Terminology,
		StakeholderPerspective:    strings.TrimSpace(req.StakeholderPerspective),
		NumModelSheets:            req.NumModels,
		IncludeYellowWarning:      req.IncludeYellowWarning,
		IncludeDataAnalysis:       req.IncludeDataAnalysis,
		IncludeCriteriaAssessment: req.IncludeCriteriaAssessment,
		HighlightTerms:            req.HighlightTerms,
	}

	if req.IncludeReadme && req.ReadmeID > 0 {
		ri, err := s.readmes.GetByID(ctx, req.ReadmeID)
		if err != nil {
			return nil, "", err
		}
		cfg.ReadmeText = splitLines(ri.Text)
	}
	cfg.ReadmeText = append(cfg.ReadmeText, req.CustomReadmeLines...)

	if len(req.MetricIDs) > 0 {
		metrics, err := s.metrics.GetByIDs(ctx, req.MetricIDs)
		if err != nil {
			return nil, "", err
		}
		for _, m := range metrics {
			row := s.metricRow(m)
			if m.Type == domain.MetricTypeEvergreen {
				cfg.EvergreenMetrics = append(cfg.EvergreenMetrics, row)
			} else {
				cfg.CustomMetrics = append(cfg.CustomMetrics, row)
			}
		}
	}
	for _, cm := range req.CustomMetrics {
		cfg.CustomMetrics = append(cfg.CustomMetrics, evalworkbook.NewMetricRowWithFallback(
			evalworkbook.CategoryCustom, cm.Name, cm.Definition, cm.Notes, cm.Weight, s.opts.DefaultWeight))
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, filename, nil
}

func (s *TemplateService) metricRow(m domain.Metric) evalworkbook.MetricRow {
	category := evalworkbook.CategoryCustom
	if m.Type == domain.MetricTypeEvergreen {
		category = evalworkbook.CategoryEvergreen
	}
	var raw interface{}
	if m.Weight != nil {
		raw = *m.Weight
	}
	return evalworkbook.NewMetricRowWithFallback(category, m.Name, m.Definition, m.Notes, raw, s.opts.DefaultWeight)
}

// splitLines splits stored README text into lines, dropping trailing blank lines.
func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (s *TemplateService) audit(ctx context.Context, projectID int64, wb *GeneratedWorkbook, metricCount int) {
	if s.auditor == nil {
		return
	}
	rec := &domain.GenerationRecord{
		ProjectID:      projectID,
		Filename:       wb.Filename,
		Sheets:         wb.Sheets,
		MetricCount:    metricCount,
		CoercedWeights: wb.CoercedWeights,
		SizeBytes:      len(wb.Data),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.auditor.Record(ctx, rec); err != nil {
		logger.WarnLog(ctx, "Failed to record generation audit: %v", err)
	}
}

// ==================== Batch ====================

// batchItem carries one request through the batch pipeline.
type batchItem struct {
	index    int
	req      GenerateRequest
	workbook *GeneratedWorkbook
	err      error
}

// BatchErrorsEntry names the zip entry listing failed requests.
const BatchErrorsEntry = "errors.txt"

// GenerateBatch builds every request on a bounded worker pool and packs the results
// into one zip archive. Failed requests are listed in errors.txt instead of
// failing the batch; the call only fails when nothing could be generated.
func (s *TemplateService) GenerateBatch(ctx context.Context, reqs []GenerateRequest) ([]byte, error) {
	if len(reqs) == 0 {
		return nil, invalid("batch contains no requests")
	}

	items := make([]batchItem, len(reqs))
	for i, r := range reqs {
		items[i] = batchItem{index: i, req: r}
	}

	built := dataflow.Map(ctx, dataflow.From(ctx, items...), func(it batchItem) (batchItem, error) {
		it.workbook, it.err = s.Generate(ctx, it.req)
		return it, nil
	}, dataflow.WithWorkers(s.opts.BatchWorkers), dataflow.WithBufferSize(len(items)))

	done, err := dataflow.Collect(ctx, built)
	if err != nil {
		return nil, err
	}
	results := make([]batchItem, len(items))
	for _, it := range done {
		results[it.index] = it
	}
	return packBatch(results)
}

func packBatch(results []batchItem) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int)
	var failures []string
	var firstErr error

	for _, it := range results {
		if it.err != nil {
			if firstErr == nil {
				firstErr = it.err
			}
			failures = append(failures, fmt.Sprintf("request %d (%s): %v", it.index+1, it.req.Filename, it.err))
			continue
		}
		w, err := zw.Create(uniqueName(used, it.workbook.Filename))
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(it.workbook.Data); err != nil {
			return nil, err
		}
	}
	if len(failures) == len(results) {
		return nil, fmt.Errorf("every batch request failed: %w", firstErr)
	}
	if len(failures) > 0 {
		w, err := zw.Create(BatchErrorsEntry)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(strings.Join(failures, "\n") + "\n")); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uniqueName suffixes repeated filenames as "name (2).xlsx".
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		ext := path.Ext(name)
		return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	}
	return name
}
