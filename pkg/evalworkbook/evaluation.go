package evalworkbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	heightEvalHeader      = 85
	defaultCustomHeader   = "Custom Metric"
	DefaultEvaluationRows = 100
)

// ModelSheetName returns the Part 1 sheet name for the zero-based model index.
func ModelSheetName(i int) string {
	return fmt.Sprintf("PART 1 - MODEL %c", rune('A'+i))
}

func (w *workbook) evaluationHeaders() []string {
	custom := defaultCustomHeader
	if len(w.cfg.CustomMetrics) > 0 {
		custom = w.cfg.CustomMetrics[0].Name
	}
	source, target := w.cfg.PreEvalOptions()
	return []string{
		"TYPE", "SOURCE", "TARGET", "Word Count", "Pre-Eval",
		fmt.Sprintf("Applicable Word Count (excl. %s)", source),
		fmt.Sprintf("Applicable Word Count (incl. %s)", target),
		"Overall", "Accuracy", "Omission/Addition", "Compliance", "Fluency",
		"RATING (Not Weighted)", "RATING (Weighted)", custom, "Additional Notes",
	}
}

func (w *workbook) buildEvaluationSheets() error {
	for i := 0; i < w.cfg.NumModelSheets; i++ {
		if err := w.buildEvaluationSheet(ModelSheetName(i)); err != nil {
			return fmt.Errorf("%s: %w", ModelSheetName(i), err)
		}
	}
	return nil
}

func (w *workbook) buildEvaluationSheet(sheet string) error {
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}
	l := w.layout(sheet)
	if err := l.ApplyColumnWidths(PresetPart1); err != nil {
		return err
	}
	for i, h := range w.evaluationHeaders() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := l.PlaceValue(cell, h, styleEvalHeader); err != nil {
			return err
		}
	}
	if err := l.SetRowHeights(Rows(1, 1), heightEvalHeader); err != nil {
		return err
	}

	body := Rows(2, w.opts.evaluationRows+1)
	for row := body.First; row <= body.Last; row++ {
		if err := w.placeEvaluationRow(l, row); err != nil {
			return err
		}
	}

	score, err := w.planner.ScoreValidation(body)
	if err != nil {
		return err
	}
	preEval := w.planner.PreEvalValidation(body)
	for _, dv := range []*excelize.DataValidation{preEval, score} {
		if err := w.f.AddDataValidation(sheet, dv); err != nil {
			return err
		}
	}

	if w.cfg.IncludeYellowWarning {
		format, err := w.styles.missingScore()
		if err != nil {
			return err
		}
		for _, rng := range w.planner.MissingScoreRanges(body) {
			if err := w.f.SetConditionalFormat(sheet, rng, []excelize.ConditionalFormatOptions{
				{Type: "blanks", Format: format},
			}); err != nil {
				return fmt.Errorf("failed to add missing score format on %s: %w", rng, err)
			}
		}
	}

	return l.present(sheetPresentation{tabColor: colorWhite, freezeHeader: true})
}

type cellFormula struct {
	col string
	e   Expr
}

func (w *workbook) placeEvaluationRow(l *SheetLayout, row int) error {
	formulas := []cellFormula{
		{colWordCount, w.planner.WordCount(row)},
		{colApplicableSrc, w.planner.ApplicableSourceCount(row)},
		{colApplicableTgt, w.planner.ApplicableTargetCount(row)},
		{colRating, w.planner.UnweightedRating(row)},
	}
	if weighted, ok := w.planner.WeightedRating(row); ok {
		formulas = append(formulas, cellFormula{colWeighted, weighted})
	}
	for _, fm := range formulas {
		if err := l.PlaceFormula(Cell(fm.col, row), fm.e, ""); err != nil {
			return err
		}
	}
	return nil
}

// buildStubSheet writes a titled placeholder sheet for parts 2 and 3.
func (w *workbook) buildStubSheet(sheet, title, preset string) error {
	if _, err := w.f.NewSheet(sheet); err != nil {
		return err
	}
	l := w.layout(sheet)
	if err := l.ApplyColumnWidths(preset); err != nil {
		return err
	}
	if err := l.PlaceValue("A1", title, styleSheetTitle); err != nil {
		return err
	}
	return l.present(sheetPresentation{tabColor: colorWhite})
}
