package evalworkbook

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups metric rows in the README table.
type Category string

const (
	CategoryEvergreen Category = "EVERGREEN"
	CategoryCustom    Category = "CUSTOM"
)

// Terminology keys recognised in README placeholders.
const (
	TermSourceIssue        = "source_issue"
	TermTargetIssue        = "target_issue"
	TermScoringInstruction = "scoring_instruction"
)

const (
	DefaultSourceIssue = "Incomprehensible Input"
	DefaultTargetIssue = "Irrelevant Output"
	MaxModelSheets     = 26
	unknownMetricName  = "Unknown Metric"
)

// MetricRow is one scoring criterion placed in the README metrics table.
// A nil Weight leaves the weight cell blank and keeps the metric out of every weight sum.
type MetricRow struct {
	Name       string
	Definition string
	Notes      string
	Weight     *int
	Category   Category
	// WeightCoerced is set when the raw weight was replaced by DefaultWeight.
	WeightCoerced bool
}

// NewMetricRow builds a MetricRow, coercing the raw weight with DefaultWeight as fallback.
func NewMetricRow(category Category, name, definition, notes string, rawWeight interface{}) MetricRow {
	return NewMetricRowWithFallback(category, name, definition, notes, rawWeight, DefaultWeight)
}

// NewMetricRowWithFallback is NewMetricRow with a caller-chosen fallback weight.
func NewMetricRowWithFallback(category Category, name, definition, notes string, rawWeight interface{}, fallback int) MetricRow {
	weight, coerced := CoerceWeight(rawWeight, fallback)
	if strings.TrimSpace(name) == "" {
		name = unknownMetricName
	}
	return MetricRow{
		Name:          name,
		Definition:    definition,
		Notes:         notes,
		Weight:        weight,
		Category:      category,
		WeightCoerced: coerced,
	}
}

// Configuration is the immutable input of one workbook build.
type Configuration struct {
	ReadmeText                []string
	Terminology               map[string]string
	StakeholderPerspective    string
	EvergreenMetrics          []MetricRow
	CustomMetrics             []MetricRow
	NumModelSheets            int
	IncludeYellowWarning      bool
	IncludeDataAnalysis       bool
	IncludeCriteriaAssessment bool
	// HighlightTerms renders known README terms as coloured rich text.
	HighlightTerms bool
}

// Validate rejects configurations that must never reach generation.
func (c *Configuration) Validate() error {
	if c == nil {
		return &ConfigurationError{Field: "configuration", Err: fmt.Errorf("configuration is nil")}
	}
	if len(c.EvergreenMetrics) == 0 && len(c.CustomMetrics) == 0 {
		return &ConfigurationError{Field: "metrics", Err: ErrNoMetrics}
	}
	if c.NumModelSheets < 1 || c.NumModelSheets > MaxModelSheets {
		return &ConfigurationError{Field: "num_model_sheets", Err: fmt.Errorf("%w: got %d", ErrModelCount, c.NumModelSheets)}
	}
	return nil
}

// PreEvalOptions returns the two labels offered by the Pre-Eval dropdown.
func (c *Configuration) PreEvalOptions() (source, target string) {
	source, target = DefaultSourceIssue, DefaultTargetIssue
	if v := strings.TrimSpace(c.Terminology[TermSourceIssue]); v != "" {
		source = v
	}
	if v := strings.TrimSpace(c.Terminology[TermTargetIssue]); v != "" {
		target = v
	}
	return source, target
}

// CoercedWeights lists the names of metrics whose weight fell back to the default.
func (c *Configuration) CoercedWeights() []string {
	var names []string
	for _, group := range [][]MetricRow{c.EvergreenMetrics, c.CustomMetrics} {
		for _, m := range group {
			if m.WeightCoerced {
				names = append(names, m.Name)
			}
		}
	}
	return names
}

// =============================================================================
// YAML
// =============================================================================

type configurationDocument struct {
	ReadmeText                []string          `yaml:"readme_text"`
	Terminology               map[string]string `yaml:"terminology"`
	StakeholderPerspective    string            `yaml:"stakeholder_perspective"`
	EvergreenMetrics          []metricDocument  `yaml:"evergreen_metrics"`
	CustomMetrics             []metricDocument  `yaml:"custom_metrics"`
	NumModelSheets            int               `yaml:"num_model_sheets"`
	IncludeYellowWarning      *bool             `yaml:"include_yellow_warning"`
	IncludeDataAnalysis       *bool             `yaml:"include_data_analysis"`
	IncludeCriteriaAssessment *bool             `yaml:"include_criteria_assessment"`
	HighlightTerms            bool              `yaml:"highlight_terms"`
}

type metricDocument struct {
	Name       string      `yaml:"name"`
	Definition string      `yaml:"definition"`
	Notes      string      `yaml:"notes"`
	Weight     interface{} `yaml:"weight"`
}

// LoadConfigurationYAML decodes a workbook configuration file.
// Omitted toggles default to true and an omitted model count defaults to one sheet.
func LoadConfigurationYAML(data []byte) (*Configuration, error) {
	var doc configurationDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration yaml: %w", err)
	}

	cfg := &Configuration{
		ReadmeText:                doc.ReadmeText,
		Terminology:               doc.Terminology,
		StakeholderPerspective:    doc.StakeholderPerspective,
		NumModelSheets:            doc.NumModelSheets,
		IncludeYellowWarning:      boolOr(doc.IncludeYellowWarning, true),
		IncludeDataAnalysis:       boolOr(doc.IncludeDataAnalysis, true),
		IncludeCriteriaAssessment: boolOr(doc.IncludeCriteriaAssessment, true),
		HighlightTerms:            doc.HighlightTerms,
	}
	if cfg.NumModelSheets == 0 {
		cfg.NumModelSheets = 1
	}
	for _, m := range doc.EvergreenMetrics {
		cfg.EvergreenMetrics = append(cfg.EvergreenMetrics, NewMetricRow(CategoryEvergreen, m.Name, m.Definition, m.Notes, m.Weight))
	}
	for _, m := range doc.CustomMetrics {
		cfg.CustomMetrics = append(cfg.CustomMetrics, NewMetricRow(CategoryCustom, m.Name, m.Definition, m.Notes, m.Weight))
	}
	return cfg, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
