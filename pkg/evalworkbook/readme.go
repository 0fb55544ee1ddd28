package evalworkbook

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	readmeTitle           = "Instructions for Use:"
	readmeTitleCell       = "B1"
	readmeBodyStartRow    = 3
	readmeFirstCol        = "B"
	readmeLastCol         = "Q"
	stakeholderRowCount   = 7
	scoringDefinitionRows = 6
	scoringLabel          = "Scoring Definitions:"
	totalLabel            = "Total:"

	heightInstruction  = 20
	heightMetricHeader = 35
	heightMetricRow    = 40
)

var scoringDefinitions = strings.Join([]string{
	"5 - Excellent: No issues found",
	"4 - Good: Minor issues that don't affect understanding",
	"3 - Average: Noticeable issues but still acceptable",
	"2 - Below Average: Significant issues affecting quality",
	"1 - Poor: Major issues, needs complete revision",
}, "\n")

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolvePlaceholders substitutes {key} tokens from terms. When any token in the line has no
// matching key the line is returned unchanged.
func ResolvePlaceholders(line string, terms map[string]string) string {
	matches := placeholderPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return line
	}
	for _, m := range matches {
		if _, ok := terms[m[1]]; !ok {
			return line
		}
	}
	return placeholderPattern.ReplaceAllStringFunc(line, func(tok string) string {
		return terms[tok[1:len(tok)-1]]
	})
}

// buildReadme builds the README sheet and keeps the composed metrics table for later steps.
func (w *workbook) buildReadme() error {
	if _, err := w.f.NewSheet(SheetReadme); err != nil {
		return err
	}
	l := w.layout(SheetReadme)
	if err := l.ApplyColumnWidths(PresetReadme); err != nil {
		return err
	}
	if err := l.PlaceValue(readmeTitleCell, readmeTitle, styleTitle); err != nil {
		return err
	}

	cur := NewCursor(readmeBodyStartRow)
	if err := w.placeInstructions(l, cur); err != nil {
		return err
	}

	stakeholder := cur.Take(stakeholderRowCount)
	if err := l.PlaceMergedText(stakeholder, Cols(readmeFirstCol, readmeLastCol), w.cfg.StakeholderPerspective, styleStakeholder); err != nil {
		return err
	}
	if err := l.BorderBlock(stakeholder, Cols(readmeFirstCol, readmeLastCol), BorderThin); err != nil {
		return err
	}

	w.table = ComposeMetricsTable(cur, w.cfg.EvergreenMetrics, w.cfg.CustomMetrics)
	if err := renderMetricsTable(l, w.table); err != nil {
		return err
	}

	totalRow := cur.Row()
	if err := l.PlaceMergedText(Rows(totalRow, totalRow), Cols(colNotesFirst, colNotesLast), totalLabel, styleTotalLabel); err != nil {
		return err
	}
	w.totalCell = Cell(colWeight, totalRow)
	if err := l.PlaceFormula(w.totalCell, w.table.Registry.SumExpr(), styleTotalValue); err != nil {
		return err
	}
	if err := l.BorderBlock(Rows(totalRow, totalRow), Cols(colNotesFirst, colWeight), BorderThick); err != nil {
		return err
	}
	cur.Advance(2)

	labelRow := cur.Next()
	if err := l.PlaceMergedText(Rows(labelRow, labelRow), Cols(readmeFirstCol, readmeLastCol), scoringLabel, styleSectionLabel); err != nil {
		return err
	}
	if err := l.PlaceMergedText(cur.Take(scoringDefinitionRows), Cols(readmeFirstCol, readmeLastCol), scoringDefinitions, styleScoringText); err != nil {
		return err
	}

	return l.present(sheetPresentation{tabColor: colorWhite})
}

func (w *workbook) placeInstructions(l *SheetLayout, cur *Cursor) error {
	start := cur.Row()
	highlights := w.highlights()
	for _, raw := range w.cfg.ReadmeText {
		line := ResolvePlaceholders(raw, w.cfg.Terminology)
		row := cur.Next()
		span, cols := Rows(row, row), Cols(readmeFirstCol, readmeLastCol)
		var err error
		if runs, ok := highlightRuns(line, highlights); ok {
			err = l.PlaceMergedRichText(span, cols, runs, styleInstruction)
		} else {
			err = l.PlaceMergedText(span, cols, line, styleInstruction)
		}
		if err != nil {
			return err
		}
		if err := l.SetRowHeights(span, heightInstruction); err != nil {
			return err
		}
	}
	if cur.Row() > start {
		return l.BorderBlock(Rows(start, cur.Row()-1), Cols(readmeFirstCol, readmeLastCol), BorderThin)
	}
	return nil
}

func renderMetricsTable(l *SheetLayout, t *MetricsTable) error {
	header := Rows(t.HeaderRow, t.HeaderRow)
	for _, g := range t.Header {
		if err := l.PlaceMergedText(header, g.Cols, g.Label, styleTableHeader); err != nil {
			return err
		}
	}
	if err := l.BorderBlock(header, Cols(readmeFirstCol, readmeLastCol), BorderThick); err != nil {
		return err
	}
	if err := l.SetRowHeights(header, heightMetricHeader); err != nil {
		return err
	}

	body, ok := t.BodySpan()
	if !ok {
		return nil
	}
	for _, pm := range t.Rows() {
		row := Rows(pm.Row, pm.Row)
		if err := l.PlaceMergedText(row, Cols(colNameFirst, colNameLast), pm.Metric.Name, styleMetricCell); err != nil {
			return err
		}
		if err := l.PlaceMergedText(row, Cols(colDefinitionFirst, colDefinitionLast), pm.Metric.Definition, styleMetricText); err != nil {
			return err
		}
		if err := l.PlaceMergedText(row, Cols(colNotesFirst, colNotesLast), pm.Metric.Notes, styleMetricText); err != nil {
			return err
		}
		var weight interface{}
		if pm.Metric.Weight != nil {
			weight = *pm.Metric.Weight
		}
		if err := l.PlaceValue(pm.WeightCell, weight, styleMetricCell); err != nil {
			return err
		}
	}
	for _, span := range t.Spans {
		style := styleEvergreenLabel
		if span.Category == CategoryCustom {
			style = styleCustomLabel
		}
		if err := l.PlaceMergedText(span.Rows, Cols(colCategoryFirst, colCategoryLast), span.Label, style); err != nil {
			return err
		}
	}
	if err := l.PlaceMergedText(body, Cols(colWeightDefFirst, colWeightDefLast), weightDefinitionText, styleMetricText); err != nil {
		return err
	}
	if err := l.PlaceMergedText(body, Cols(colScoringDefFirst, colScoringDefLast), scoringDefinitionText, styleMetricText); err != nil {
		return err
	}
	if err := l.SetRowHeights(body, heightMetricRow); err != nil {
		return err
	}
	return l.BorderBlock(body, Cols(readmeFirstCol, readmeLastCol), BorderThin)
}

// =============================================================================
// Term highlighting
// =============================================================================

type highlight struct {
	term  string
	color string
	bold  bool
}

var boldTerms = []string{
	"SOURCE", "TARGET", "Overall", "Part 1", "Part 2 - Data Analysis",
	"Part 3 - Criteria Based Assess", "Additional Notes", "RATING", "Data Analysis Summary",
}

func (w *workbook) highlights() []highlight {
	if !w.cfg.HighlightTerms {
		return nil
	}
	source, target := w.cfg.PreEvalOptions()
	hs := []highlight{
		{term: "Evergreen", color: colorEvergreen, bold: true},
		{term: "Customized", color: colorCustom, bold: true},
		{term: source, color: colorBlueText, bold: true},
		{term: target, color: colorBlueText, bold: true},
	}
	for _, t := range boldTerms {
		hs = append(hs, highlight{term: t, bold: true})
	}
	// longest first so "Part 2 - Data Analysis" wins over "Part 2"
	sort.SliceStable(hs, func(i, j int) bool { return len(hs[i].term) > len(hs[j].term) })
	return hs
}

// highlightRuns splits line into rich text runs. ok is false when no term occurs.
func highlightRuns(line string, hs []highlight) (runs []excelize.RichTextRun, ok bool) {
	if len(hs) == 0 {
		return nil, false
	}
	pos := 0
	for pos < len(line) {
		at, hit := -1, highlight{}
		for _, h := range hs {
			if h.term == "" {
				continue
			}
			if i := strings.Index(line[pos:], h.term); i >= 0 && (at < 0 || pos+i < at) {
				at, hit = pos+i, h
			}
		}
		if at < 0 {
			break
		}
		if at > pos {
			runs = append(runs, plainRun(line[pos:at]))
		}
		runs = append(runs, excelize.RichTextRun{
			Text: hit.term,
			Font: &excelize.Font{Family: fontFamily, Size: 14, Bold: hit.bold, Color: hit.color},
		})
		pos = at + len(hit.term)
	}
	if len(runs) == 0 {
		return nil, false
	}
	if pos < len(line) {
		runs = append(runs, plainRun(line[pos:]))
	}
	return runs, true
}

func plainRun(text string) excelize.RichTextRun {
	return excelize.RichTextRun{Text: text, Font: &excelize.Font{Family: fontFamily, Size: 14}}
}
