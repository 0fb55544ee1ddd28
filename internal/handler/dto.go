package handler

import (
	"strconv"
	"strings"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/service"
)

// ReadmeRequest is the body of README create and update calls.
type ReadmeRequest struct {
	Title          string `json:"title"`
	Text           string `json:"text"`
	ScoreType      string `json:"score_type"`
	EvalType       string `json:"eval_type"`
	PreEvalContext string `json:"pre_eval_context"`
	ContentType    string `json:"content_type"`
	Status         string `json:"status"`
}

func (r ReadmeRequest) toDomain() *domain.ReadmeInstruction {
	return &domain.ReadmeInstruction{
		Title:          r.Title,
		Text:           r.Text,
		ScoreType:      r.ScoreType,
		EvalType:       r.EvalType,
		PreEvalContext: r.PreEvalContext,
		ContentType:    r.ContentType,
		Status:         r.Status,
		CustomInd:      true,
	}
}

// MetricRequest is the body of a metric create call. Weight may be a number or a string.
type MetricRequest struct {
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	Definition string      `json:"definition"`
	Notes      string      `json:"notes"`
	Weight     interface{} `json:"weight"`
	GenAIInd   bool        `json:"genai_ind"`
	MTLLMInd   bool        `json:"mt_llm_ind"`
	ScoreType  string      `json:"score_type"`
	EvalType   string      `json:"eval_type"`
}

func (r MetricRequest) toDomain() *domain.Metric {
	return &domain.Metric{
		Type:       domain.MetricType(r.Type),
		Name:       r.Name,
		Definition: r.Definition,
		Notes:      r.Notes,
		Weight:     weightText(r.Weight),
		GenAIInd:   r.GenAIInd,
		MTLLMInd:   r.MTLLMInd,
		ScoreType:  r.ScoreType,
		EvalType:   r.EvalType,
	}
}

// weightText stores the weight as the user typed it; coercion happens at generation.
func weightText(v interface{}) *string {
	var s string
	switch w := v.(type) {
	case nil:
		return nil
	case string:
		s = w
	case float64:
		s = strconv.FormatFloat(w, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(w)
	default:
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

type OrganizationRequest struct {
	Name string `json:"name"`
}

type ProjectRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	OrganizationID int64  `json:"organization_id"`
}

// GenerateTemplateRequest is the body of POST /templates/generate.
// Omitted sheet toggles default to true.
type GenerateTemplateRequest struct {
	ProjectID                 int64                       `json:"projectId"`
	IncludeReadme             *bool                       `json:"includeReadme"`
	ReadmeID                  int64                       `json:"readmeId"`
	CustomReadmeLines         []string                    `json:"customReadmeLines"`
	StakeholderPerspective    string                      `json:"stakeholderPerspective"`
	Terminology               map[string]string           `json:"terminology"`
	MetricIDs                 []int64                     `json:"metricIds"`
	CustomMetrics             []service.CustomMetricInput `json:"customMetrics"`
	NumModels                 int                         `json:"numModels"`
	Filename                  string                      `json:"filename"`
	IncludeYellowWarning      *bool                       `json:"includeYellowWarning"`
	IncludeDataAnalysis       *bool                       `json:"includeDataAnalysis"`
	IncludeCriteriaAssessment *bool                       `json:"includeCriteriaAssessment"`
	HighlightTerms            bool                        `json:"highlightTerms"`
}

func (r GenerateTemplateRequest) toService() service.GenerateRequest {
	return service.GenerateRequest{
		ProjectID:                 r.ProjectID,
		IncludeReadme:             boolOr(r.IncludeReadme, true),
		ReadmeID:                  r.ReadmeID,
		CustomReadmeLines:         r.CustomReadmeLines,
		StakeholderPerspective:    r.StakeholderPerspective,
		Terminology:               r.Terminology,
		MetricIDs:                 r.MetricIDs,
		CustomMetrics:             r.CustomMetrics,
		NumModels:                 r.NumModels,
		Filename:                  r.Filename,
		IncludeYellowWarning:      boolOr(r.IncludeYellowWarning, true),
		IncludeDataAnalysis:       boolOr(r.IncludeDataAnalysis, true),
		IncludeCriteriaAssessment: boolOr(r.IncludeCriteriaAssessment, true),
		HighlightTerms:            r.HighlightTerms,
	}
}

// BatchTemplateRequest is the body of POST /templates/batch.
type BatchTemplateRequest struct {
	Filename string                    `json:"filename"`
	Requests []GenerateTemplateRequest `json:"requests"`
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
