package domain

import "time"

// ==================== LIBRARY ====================

// MetricType separates the two metric groups of the README table.
type MetricType string

const (
	MetricTypeEvergreen MetricType = "EVERGREEN"
	MetricTypeCustom    MetricType = "CUSTOM"
)

// Valid reports whether t is one of the known metric types.
func (t MetricType) Valid() bool {
	return t == MetricTypeEvergreen || t == MetricTypeCustom
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// ReadmeInstruction represents the readme_instruction table in SQL DB
type ReadmeInstruction struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Text           string    `json:"text" db:"readme_text"`
	ScoreType      string    `json:"score_type" db:"score_type"`
	EvalType       string    `json:"eval_type" db:"eval_type"`
	PreEvalContext string    `json:"pre_eval_context" db:"pre_eval_context"`
	ContentType    string    `json:"content_type" db:"content_type"`
	Status         string    `json:"status" db:"status_ind"`
	DefaultInd     bool      `json:"default_ind" db:"default_ind"`
	CustomInd      bool      `json:"custom_ind" db:"custom_ind"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	ModifiedAt     time.Time `json:"modified_at" db:"modified_at"`
}

// Metric represents the metric table in SQL DB.
// Weight is free text; it is coerced into an integer only when a workbook is built.
type Metric struct {
	ID         int64      `json:"id" db:"id"`
	Type       MetricType `json:"type" db:"metric_type"`
	Name       string     `json:"name" db:"metric_name"`
	Definition string     `json:"definition" db:"metric_def"`
	Notes      string     `json:"notes" db:"metric_notes"`
	Weight     *string    `json:"weight" db:"weight"`
	GenAIInd   bool       `json:"genai_ind" db:"genai_ind"`
	MTLLMInd   bool       `json:"mt_llm_ind" db:"mt_llm_ind"`
	ScoreType  string     `json:"score_type" db:"score_type"`
	EvalType   string     `json:"eval_type" db:"eval_type"`
	Status     string     `json:"status" db:"status_ind"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt time.Time  `json:"modified_at" db:"modified_at"`
}

// Organization represents the organization table in SQL DB
type Organization struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Project represents the project table in SQL DB
type Project struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	OrganizationID int64     `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// ==================== AUDIT ====================

// GenerationRecord is one generated workbook, stored in GCP Datastore ONLY
type GenerationRecord struct {
	ProjectID      int64     `datastore:"ProjectID" json:"project_id"`
	Filename       string    `datastore:"Filename" json:"filename"`
	Sheets         []string  `datastore:"Sheets,noindex" json:"sheets"`
	MetricCount    int       `datastore:"MetricCount" json:"metric_count"`
	CoercedWeights []string  `datastore:"CoercedWeights,noindex" json:"coerced_weights"`
	SizeBytes      int       `datastore:"SizeBytes,noindex" json:"size_bytes"`
	CreatedAt      time.Time `datastore:"CreatedAt" json:"created_at"`
}
