package evalworkbook

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// Evaluation sheet columns.
const (
	colType          = "A"
	colSource        = "B"
	colTarget        = "C"
	colWordCount     = "D"
	colPreEval       = "E"
	colApplicableSrc = "F"
	colApplicableTgt = "G"
	colOverall       = "H"
	colAccuracy      = "I"
	colOmission      = "J"
	colCompliance    = "K"
	colFluency       = "L"
	colRating        = "M"
	colWeighted      = "N"
	colCustomScore   = "O"
	colNotes         = "P"
)

// Defined names pointing into the helper sheet.
const (
	NameAccuracy         = "W_ACCURACY"
	NameOmissionAddition = "W_OMISSION_ADDITION"
	NameCompliance       = "W_COMPLIANCE"
	NameFluency          = "W_FLUENCY"
	NameCustom           = "W_CUSTOM"
	NameTotalWeight      = "TOTAL_WEIGHT"
)

const (
	scoreMin               = 1
	scoreMax               = 5
	scoreErrorTitle        = "Invalid Score"
	scoreErrorMessage      = "Score must be between 1 and 5"
	preEvalErrorTitle      = "Invalid Entry"
	preEvalErrorMessage    = "Please select from the list"
	helperFirstRow         = 2
	helperTotalCell        = "G2"
	helperEvergreenTotal   = "C2"
	helperCustomTotal      = "F2"
	helperEvergreenNameCol = "A"
	helperEvergreenCol     = "B"
	helperCustomNameCol    = "D"
	helperCustomCol        = "E"
	helperPreEvalHeader    = "Pre-Eval Options"
	helperPreEvalHeadCell  = "I1"
	helperPreEvalSource    = "I2"
	helperPreEvalTarget    = "I3"
)

// weightSlot ties an evaluation score column to the helper cell of one metric's weight.
type weightSlot struct {
	column string
	name   string
	match  string
	metric *MetricRow
	helper string
}

// FormulaPlanner emits the evaluation-sheet formulas, defined names and validation rules.
type FormulaPlanner struct {
	slots []*weightSlot
}

// NewFormulaPlanner binds the weighted score columns I..L to evergreen metrics and O to the
// first custom metric. Evergreen metrics are matched by name first; slots left over take the
// remaining evergreen metrics in order.
func NewFormulaPlanner(cfg *Configuration) *FormulaPlanner {
	p := &FormulaPlanner{
		slots: []*weightSlot{
			{column: colAccuracy, name: NameAccuracy, match: "accuracy"},
			{column: colOmission, name: NameOmissionAddition, match: "omissionaddition"},
			{column: colCompliance, name: NameCompliance, match: "compliance"},
			{column: colFluency, name: NameFluency, match: "fluency"},
		},
	}

	used := make([]bool, len(cfg.EvergreenMetrics))
	for _, slot := range p.slots {
		for i := range cfg.EvergreenMetrics {
			if !used[i] && normalizeMetricName(cfg.EvergreenMetrics[i].Name) == slot.match {
				p.bind(slot, &cfg.EvergreenMetrics[i], helperEvergreenCol, i)
				used[i] = true
				break
			}
		}
	}
	for _, slot := range p.slots {
		if slot.metric != nil {
			continue
		}
		for i := range cfg.EvergreenMetrics {
			if !used[i] {
				p.bind(slot, &cfg.EvergreenMetrics[i], helperEvergreenCol, i)
				used[i] = true
				break
			}
		}
	}

	custom := &weightSlot{column: colCustomScore, name: NameCustom}
	if len(cfg.CustomMetrics) > 0 {
		p.bind(custom, &cfg.CustomMetrics[0], helperCustomCol, 0)
	}
	p.slots = append(p.slots, custom)
	return p
}

func (p *FormulaPlanner) bind(slot *weightSlot, m *MetricRow, col string, index int) {
	slot.metric = m
	slot.helper = Cell(col, helperFirstRow+index)
}

func normalizeMetricName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// weighted reports whether the slot contributes a term: bound to a metric with a weight.
func (s *weightSlot) weighted() bool {
	return s.metric != nil && s.metric.Weight != nil
}

// WeightedColumns lists the score columns that contribute a weighted term, in formula order.
func (p *FormulaPlanner) WeightedColumns() []string {
	var cols []string
	for _, s := range p.slots {
		if s.weighted() {
			cols = append(cols, s.column)
		}
	}
	return cols
}

// DefinedNames returns one name per weighted slot plus TOTAL_WEIGHT.
func (p *FormulaPlanner) DefinedNames() []*excelize.DefinedName {
	var names []*excelize.DefinedName
	for _, s := range p.slots {
		if !s.weighted() {
			continue
		}
		names = append(names, &excelize.DefinedName{
			Name:     s.name,
			RefersTo: Render(Ref{Sheet: SheetFormulaHelper, Cell: s.helper, Absolute: true}),
		})
	}
	names = append(names, &excelize.DefinedName{
		Name:     NameTotalWeight,
		RefersTo: Render(Ref{Sheet: SheetFormulaHelper, Cell: helperTotalCell, Absolute: true}),
	})
	return names
}

// WeightedRating is the per-segment weighted score for row. ok is false when no slot carries
// a weight, in which case no formula should be written.
func (p *FormulaPlanner) WeightedRating(row int) (e Expr, ok bool) {
	var terms []Expr
	for _, s := range p.slots {
		if !s.weighted() {
			continue
		}
		score := Ref{Cell: Cell(s.column, row)}
		term := Expr(Mul(score, Name(s.name)))
		if s.column == colCustomScore {
			term = Fn("IF", Fn("ISNUMBER", score), term, Num(0))
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, false
	}
	guard := Fn("OR",
		Eq(Fn("COUNT", scoreRange(row)), Num(0)),
		Eq(Name(NameTotalWeight), Num(0)),
	)
	return Fn("IF", guard, Str(""), Div(Sum(terms...), Name(NameTotalWeight))), true
}

// UnweightedRating averages I..L, blank when none are scored.
func (p *FormulaPlanner) UnweightedRating(row int) Expr {
	return Fn("IF", Eq(Fn("COUNT", scoreRange(row)), Num(0)), Str(""), Fn("AVERAGE", scoreRange(row)))
}

// WordCount counts space separated words of the source text.
func (p *FormulaPlanner) WordCount(row int) Expr {
	src := Ref{Cell: Cell(colSource, row)}
	return Fn("IF", Eq(src, Str("")), Str(""),
		Sum(Sub(Fn("LEN", src), Fn("LEN", Fn("SUBSTITUTE", src, Str(" "), Str("")))), Num(1)))
}

// ApplicableSourceCount drops the word count of segments marked with the source issue.
func (p *FormulaPlanner) ApplicableSourceCount(row int) Expr {
	pre := Ref{Cell: Cell(colPreEval, row)}
	return Fn("IF", Eq(pre, preEvalLabel(helperPreEvalSource)), Str("-"), Ref{Cell: Cell(colWordCount, row)})
}

// ApplicableTargetCount keeps the word count of unmarked segments and of target issue segments.
func (p *FormulaPlanner) ApplicableTargetCount(row int) Expr {
	pre := Ref{Cell: Cell(colPreEval, row)}
	wc := Ref{Cell: Cell(colWordCount, row)}
	return Fn("IF", Eq(pre, preEvalLabel(helperPreEvalTarget)), wc, Fn("IF", Eq(pre, Str("")), wc, Str("-")))
}

// preEvalLabel references a pre-eval label cell on the helper sheet; labels never appear as
// formula literals or list items.
func preEvalLabel(cell string) Ref {
	return Ref{Sheet: SheetFormulaHelper, Cell: cell, Absolute: true}
}

// PreEvalListSource is the helper range backing the Pre-Eval dropdown.
func PreEvalListSource() string {
	return fmt.Sprintf("%s!%s:%s", SheetFormulaHelper, absolute(helperPreEvalSource), absolute(helperPreEvalTarget))
}

func scoreRange(row int) Range {
	return Range{From: Cell(colAccuracy, row), To: Cell(colFluency, row)}
}

// scoreRanges are the score columns H..L and O over rows.
func scoreRanges(rows RowSpan) []string {
	return []string{
		fmt.Sprintf("%s:%s", Cell(colOverall, rows.First), Cell(colFluency, rows.Last)),
		fmt.Sprintf("%s:%s", Cell(colCustomScore, rows.First), Cell(colCustomScore, rows.Last)),
	}
}

// ScoreValidation accepts whole numbers 1..5 or blank on the score columns.
func (p *FormulaPlanner) ScoreValidation(rows RowSpan) (*excelize.DataValidation, error) {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = strings.Join(scoreRanges(rows), " ")
	if err := dv.SetRange(scoreMin, scoreMax, excelize.DataValidationTypeWhole, excelize.DataValidationOperatorBetween); err != nil {
		return nil, err
	}
	dv.SetError(excelize.DataValidationErrorStyleStop, scoreErrorTitle, scoreErrorMessage)
	return dv, nil
}

// PreEvalValidation offers the two pre-eval labels as a dropdown, blank allowed.
func (p *FormulaPlanner) PreEvalValidation(rows RowSpan) *excelize.DataValidation {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s:%s", Cell(colPreEval, rows.First), Cell(colPreEval, rows.Last))
	dv.SetSqrefDropList(PreEvalListSource())
	dv.SetError(excelize.DataValidationErrorStyleStop, preEvalErrorTitle, preEvalErrorMessage)
	return dv
}

// MissingScoreRanges are the ranges shaded when blank.
func (p *FormulaPlanner) MissingScoreRanges(rows RowSpan) []string {
	return scoreRanges(rows)
}
