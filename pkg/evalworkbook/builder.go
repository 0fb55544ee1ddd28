// Package evalworkbook builds the multi-sheet evaluation workbook used to score
// machine translation and generative AI output.
package evalworkbook

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetReadme        = "READ ME"
	SheetFormulaHelper = "FORMULA_HELPER"
	SheetDataAnalysis  = "PART 2 - DATA ANALYSIS"
	SheetCriteria      = "PART 3 - CRITERIA BASED ASSESS"
	starterSheet       = "Sheet1"
)

// Build step names reported in GenerationError.
const (
	StepReadme        = "readme"
	StepFormulaHelper = "formula_helper"
	StepModelSheets   = "part1_model_sheets"
	StepDataAnalysis  = "part2_data_analysis"
	StepCriteria      = "part3_criteria_assessment"
	StepFinalize      = "finalize"
)

// Option configures a Builder.
type Option func(*options)

type options struct {
	evaluationRows int
	protectHelper  bool
	helperPassword string
}

func defaultOptions() *options {
	return &options{evaluationRows: DefaultEvaluationRows}
}

// WithEvaluationRows sets how many formula rows each Part 1 sheet gets.
func WithEvaluationRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.evaluationRows = n
		}
	}
}

// WithHelperProtection protects the hidden helper sheet. An empty password still protects it.
func WithHelperProtection(password string) Option {
	return func(o *options) {
		o.protectHelper = true
		o.helperPassword = password
	}
}

// Builder turns a Configuration into xlsx bytes. It holds no per-build state and is safe
// for concurrent use.
type Builder struct {
	opts options
}

func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Builder{opts: *o}
}

// Build validates cfg and generates the workbook with default options.
func Build(ctx context.Context, cfg *Configuration) ([]byte, error) {
	return NewBuilder().Build(ctx, cfg)
}

// SheetNames lists the sheets Build produces for cfg, in workbook order. A nil cfg has none.
func SheetNames(cfg *Configuration) []string {
	if cfg == nil {
		return nil
	}
	names := []string{SheetReadme, SheetFormulaHelper}
	for i := 0; i < cfg.NumModelSheets; i++ {
		names = append(names, ModelSheetName(i))
	}
	if cfg.IncludeDataAnalysis {
		names = append(names, SheetDataAnalysis)
	}
	if cfg.IncludeCriteriaAssessment {
		names = append(names, SheetCriteria)
	}
	return names
}

// workbook is the state of one build.
type workbook struct {
	f         *excelize.File
	cfg       *Configuration
	opts      options
	styles    *styleSheet
	planner   *FormulaPlanner
	table     *MetricsTable
	totalCell string
}

func (w *workbook) layout(sheet string) *SheetLayout {
	return newSheetLayout(w.f, sheet, w.styles)
}

type buildStep struct {
	name string
	run  func(*workbook) error
}

func (b *Builder) steps(cfg *Configuration) []buildStep {
	steps := []buildStep{
		{StepReadme, (*workbook).buildReadme},
		{StepFormulaHelper, (*workbook).buildFormulaHelper},
		{StepModelSheets, (*workbook).buildEvaluationSheets},
	}
	if cfg.IncludeDataAnalysis {
		steps = append(steps, buildStep{StepDataAnalysis, func(w *workbook) error {
			return w.buildStubSheet(SheetDataAnalysis, "Data Analysis Summary", PresetPart2)
		}})
	}
	if cfg.IncludeCriteriaAssessment {
		steps = append(steps, buildStep{StepCriteria, func(w *workbook) error {
			return w.buildStubSheet(SheetCriteria, "Criteria Based Assessment", PresetPart3)
		}})
	}
	return append(steps, buildStep{StepFinalize, (*workbook).finalize})
}

// Build validates cfg, runs every sheet step in order and serializes the result once.
// Configuration problems return *ConfigurationError before any sheet exists; any failure
// after that returns *GenerationError naming the step.
func (b *Builder) Build(ctx context.Context, cfg *Configuration) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return b.run(ctx, cfg, b.steps(cfg))
}

func (b *Builder) run(ctx context.Context, cfg *Configuration, steps []buildStep) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	w := &workbook{
		f:       f,
		cfg:     cfg,
		opts:    b.opts,
		styles:  newStyleSheet(f),
		planner: NewFormulaPlanner(cfg),
	}
	for _, step := range steps {
		if err := runStep(w, step); err != nil {
			contextLogger(ctx).Error().Str("step", step.name).Err(err).Msg("workbook generation step failed")
			return nil, &GenerationError{Step: step.name, Message: err.Error()}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		contextLogger(ctx).Error().Str("step", StepFinalize).Err(err).Msg("failed to serialize workbook")
		return nil, &GenerationError{Step: StepFinalize, Message: err.Error()}
	}
	return buf.Bytes(), nil
}

func runStep(w *workbook, step buildStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.run(w)
}

// finalize drops the starter sheet and opens the workbook on README.
func (w *workbook) finalize() error {
	if idx, err := w.f.GetSheetIndex(starterSheet); err == nil && idx >= 0 {
		if err := w.f.DeleteSheet(starterSheet); err != nil {
			return err
		}
	}
	idx, err := w.f.GetSheetIndex(SheetReadme)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("sheet %q is missing", SheetReadme)
	}
	w.f.SetActiveSheet(idx)
	return nil
}

func contextLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
