package evalworkbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleConfiguration() *Configuration {
	return &Configuration{
		ReadmeText: []string{
			"Select {source_issue} to skip",
			"Unresolved {unknown_key} stays verbatim",
		},
		Terminology: map[string]string{
			TermSourceIssue:        "Bad Input",
			TermTargetIssue:        "Irrelevant Output",
			TermScoringInstruction: "score 0.9 under every metric",
		},
		StakeholderPerspective: "customer",
		EvergreenMetrics: []MetricRow{
			NewMetricRow(CategoryEvergreen, "Accuracy", "Meaning is preserved", "", 8),
			NewMetricRow(CategoryEvergreen, "Fluency", "Reads naturally", "", 5),
			NewMetricRow(CategoryEvergreen, "Omission/Addition", "Nothing dropped or added", "", 4),
			NewMetricRow(CategoryEvergreen, "Compliance", "Follows the style guide", "", 6),
		},
		CustomMetrics: []MetricRow{
			NewMetricRow(CategoryCustom, "Tone", "Matches brand voice", "", "abc"),
			NewMetricRow(CategoryCustom, "Red Flags", "Offensive content", "", nil),
		},
		NumModelSheets:            2,
		IncludeYellowWarning:      true,
		IncludeDataAnalysis:       true,
		IncludeCriteriaAssessment: true,
	}
}

func buildAndOpen(t *testing.T, cfg *Configuration, opts ...Option) *excelize.File {
	t.Helper()
	data, err := NewBuilder(append([]Option{WithEvaluationRows(5)}, opts...)...).Build(context.Background(), cfg)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func findMerge(t *testing.T, f *excelize.File, sheet, start string) (excelize.MergeCell, bool) {
	t.Helper()
	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	for _, m := range merges {
		if m.GetStartAxis() == start {
			return m, true
		}
	}
	return nil, false
}

func TestBuildSheetOrder(t *testing.T) {
	cfg := sampleConfiguration()
	f := buildAndOpen(t, cfg)

	assert.Equal(t, SheetNames(cfg), f.GetSheetList())
	assert.Equal(t, []string{
		SheetReadme,
		SheetFormulaHelper,
		"PART 1 - MODEL A",
		"PART 1 - MODEL B",
		SheetDataAnalysis,
		SheetCriteria,
	}, f.GetSheetList())

	visible, err := f.GetSheetVisible(SheetFormulaHelper)
	require.NoError(t, err)
	assert.False(t, visible)
	assert.Equal(t, 0, f.GetActiveSheetIndex())
}

func TestSheetNamesNilConfiguration(t *testing.T) {
	assert.Nil(t, SheetNames(nil))
}

func TestBuildOptionalSheetsOff(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.IncludeDataAnalysis = false
	cfg.IncludeCriteriaAssessment = false
	cfg.NumModelSheets = 1

	f := buildAndOpen(t, cfg)
	assert.Equal(t, []string{SheetReadme, SheetFormulaHelper, "PART 1 - MODEL A"}, f.GetSheetList())
}

func TestBuildModelSheetCount(t *testing.T) {
	for _, n := range []int{1, 3, 26} {
		t.Run(fmt.Sprintf("%d sheets", n), func(t *testing.T) {
			cfg := sampleConfiguration()
			cfg.NumModelSheets = n
			f := buildAndOpen(t, cfg, WithEvaluationRows(1))

			var models []string
			for _, name := range f.GetSheetList() {
				if len(name) > len("PART 1") && name[:len("PART 1")] == "PART 1" {
					models = append(models, name)
				}
			}
			require.Len(t, models, n)
			for i, name := range models {
				assert.Equal(t, ModelSheetName(i), name)
			}
			assert.Equal(t, "PART 1 - MODEL A", models[0])
		})
	}
	assert.Equal(t, "PART 1 - MODEL Z", ModelSheetName(25))
}

func TestBuildReadmeLayout(t *testing.T) {
	f := buildAndOpen(t, sampleConfiguration())

	title, err := f.GetCellValue(SheetReadme, "B1")
	require.NoError(t, err)
	assert.Equal(t, readmeTitle, title)

	line, err := f.GetCellValue(SheetReadme, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Select Bad Input to skip", line)

	verbatim, err := f.GetCellValue(SheetReadme, "B4")
	require.NoError(t, err)
	assert.Equal(t, "Unresolved {unknown_key} stays verbatim", verbatim)

	// two instruction lines, then seven stakeholder rows
	stakeholder, ok := findMerge(t, f, SheetReadme, "B5")
	require.True(t, ok)
	assert.Equal(t, "Q11", stakeholder.GetEndAxis())
	assert.Equal(t, "customer", stakeholder.GetCellValue())

	header, err := f.GetCellValue(SheetReadme, "M12")
	require.NoError(t, err)
	assert.Equal(t, "Weights", header)

	name, err := f.GetCellValue(SheetReadme, "D13")
	require.NoError(t, err)
	assert.Equal(t, "Accuracy", name)

	evergreen, ok := findMerge(t, f, SheetReadme, "B13")
	require.True(t, ok)
	assert.Equal(t, "C16", evergreen.GetEndAxis())
	assert.Equal(t, labelEvergreen, evergreen.GetCellValue())

	custom, ok := findMerge(t, f, SheetReadme, "B17")
	require.True(t, ok)
	assert.Equal(t, "C18", custom.GetEndAxis())
	assert.Equal(t, labelCustom, custom.GetCellValue())

	total, err := f.GetCellValue(SheetReadme, "J19")
	require.NoError(t, err)
	assert.Equal(t, totalLabel, total)

	scoring, err := f.GetCellValue(SheetReadme, "B21")
	require.NoError(t, err)
	assert.Equal(t, scoringLabel, scoring)
}

func TestBuildWeightSum(t *testing.T) {
	f := buildAndOpen(t, sampleConfiguration())

	formula, err := f.GetCellFormula(SheetReadme, "M19")
	require.NoError(t, err)
	assert.Equal(t, "SUM(M13,M14,M15,M16,M17)", formula)

	// Tone's "abc" weight is placed as the default and still counted; Red Flags stays blank.
	tone, err := f.GetCellValue(SheetReadme, "M17")
	require.NoError(t, err)
	assert.Equal(t, "5", tone)
	redFlags, err := f.GetCellValue(SheetReadme, "M18")
	require.NoError(t, err)
	assert.Equal(t, "", redFlags)

	sum, err := f.CalcCellValue(SheetReadme, "M19")
	require.NoError(t, err)
	assert.Equal(t, "28", sum)
}

func TestBuildWeightSumWithoutWeights(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.EvergreenMetrics = nil
	cfg.CustomMetrics = []MetricRow{NewMetricRow(CategoryCustom, "Red Flags", "", "", nil)}
	f := buildAndOpen(t, cfg)

	// header row 12, one metric row 13, total row 14
	formula, err := f.GetCellFormula(SheetReadme, "M14")
	require.NoError(t, err)
	assert.Equal(t, "0", formula)

	weighted, err := f.GetCellFormula("PART 1 - MODEL A", "N2")
	require.NoError(t, err)
	assert.Empty(t, weighted)

	_, ok := findMerge(t, f, SheetReadme, "B13")
	require.True(t, ok)
	merges, err := f.GetMergeCells(SheetReadme)
	require.NoError(t, err)
	for _, m := range merges {
		assert.NotEqual(t, labelEvergreen, m.GetCellValue())
	}
}

func TestBuildWithoutCustomMetrics(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.CustomMetrics = nil
	f := buildAndOpen(t, cfg)

	evergreen, ok := findMerge(t, f, SheetReadme, "B13")
	require.True(t, ok)
	assert.Equal(t, "C16", evergreen.GetEndAxis())

	merges, err := f.GetMergeCells(SheetReadme)
	require.NoError(t, err)
	for _, m := range merges {
		assert.NotEqual(t, labelCustom, m.GetCellValue())
	}

	weighted, err := f.GetCellFormula("PART 1 - MODEL A", "N2")
	require.NoError(t, err)
	assert.NotContains(t, weighted, "O2")

	header, err := f.GetCellValue("PART 1 - MODEL A", "O1")
	require.NoError(t, err)
	assert.Equal(t, defaultCustomHeader, header)
}

func TestBuildFormulaHelper(t *testing.T) {
	f := buildAndOpen(t, sampleConfiguration())

	cases := map[string]string{
		"B2": "'READ ME'!M13",
		"B5": "'READ ME'!M16",
		"E2": "'READ ME'!M17",
		"C2": "SUM(B2:B5)",
		"F2": "SUM(E2:E3)",
		"G2": "C2+F2",
	}
	for cell, want := range cases {
		got, err := f.GetCellFormula(SheetFormulaHelper, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	blank, err := f.GetCellFormula(SheetFormulaHelper, "E3")
	require.NoError(t, err)
	assert.Empty(t, blank)

	name, err := f.GetCellValue(SheetFormulaHelper, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Red Flags", name)

	for cell, want := range map[string]string{"I1": "Pre-Eval Options", "I2": "Bad Input", "I3": "Irrelevant Output"} {
		got, err := f.GetCellValue(SheetFormulaHelper, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	refs := map[string]string{}
	for _, dn := range f.GetDefinedName() {
		refs[dn.Name] = dn.RefersTo
	}
	assert.Equal(t, "FORMULA_HELPER!$G$2", refs[NameTotalWeight])
	assert.Equal(t, "FORMULA_HELPER!$E$2", refs[NameCustom])
}

func TestBuildEvaluationSheet(t *testing.T) {
	f := buildAndOpen(t, sampleConfiguration())
	sheet := "PART 1 - MODEL B"

	header, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.NotEmpty(t, header)
	assert.Equal(t, "TYPE", header[0][0])
	assert.Equal(t, "Overall", header[0][7])
	assert.Equal(t, "Tone", header[0][14])
	assert.Equal(t, "Additional Notes", header[0][15])

	weighted, err := f.GetCellFormula(sheet, "N6")
	require.NoError(t, err)
	assert.Equal(t,
		`IF(OR(COUNT(I6:L6)=0,TOTAL_WEIGHT=0),"",(I6*W_ACCURACY+J6*W_OMISSION_ADDITION+K6*W_COMPLIANCE+L6*W_FLUENCY+IF(ISNUMBER(O6),O6*W_CUSTOM,0))/TOTAL_WEIGHT)`,
		weighted)

	beyond, err := f.GetCellFormula(sheet, "N7")
	require.NoError(t, err)
	assert.Empty(t, beyond)

	source, err := f.GetCellFormula(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, `IF(E2=FORMULA_HELPER!$I$2,"-",D2)`, source)

	validations, err := f.GetDataValidations(sheet)
	require.NoError(t, err)
	require.Len(t, validations, 2)
	sqrefs := []string{validations[0].Sqref, validations[1].Sqref}
	assert.ElementsMatch(t, []string{"E2:E6", "H2:L6 O2:O6"}, sqrefs)
	for _, dv := range validations {
		assert.True(t, dv.AllowBlank)
		if dv.Sqref == "E2:E6" {
			assert.Equal(t, "FORMULA_HELPER!$I$2:$I$3", dv.Formula1)
		} else {
			assert.Equal(t, "whole", dv.Type)
			require.NotNil(t, dv.Error)
			assert.Equal(t, scoreErrorMessage, *dv.Error)
		}
	}

	formats, err := f.GetConditionalFormats(sheet)
	require.NoError(t, err)
	assert.Contains(t, formats, "H2:L6")
	assert.Contains(t, formats, "O2:O6")
}

func TestBuildWithoutYellowWarning(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.IncludeYellowWarning = false
	f := buildAndOpen(t, cfg)

	formats, err := f.GetConditionalFormats("PART 1 - MODEL A")
	require.NoError(t, err)
	assert.Empty(t, formats)
}

func TestBuildHighlightTerms(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.HighlightTerms = true
	cfg.ReadmeText = []string{"Metrics are divided into Evergreen and Customized groups"}
	f := buildAndOpen(t, cfg)

	runs, err := f.GetCellRichText(SheetReadme, "B3")
	require.NoError(t, err)
	var texts []string
	for _, r := range runs {
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"Metrics are divided into ", "Evergreen", " and ", "Customized", " groups"}, texts)
}

func TestBuildDeterministic(t *testing.T) {
	a := buildAndOpen(t, sampleConfiguration())
	b := buildAndOpen(t, sampleConfiguration())

	require.Equal(t, a.GetSheetList(), b.GetSheetList())
	for _, sheet := range a.GetSheetList() {
		rowsA, err := a.GetRows(sheet)
		require.NoError(t, err)
		rowsB, err := b.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, rowsA, rowsB, sheet)
	}
	for _, cell := range []string{"D2", "F2", "G2", "M2", "N2"} {
		fa, err := a.GetCellFormula("PART 1 - MODEL A", cell)
		require.NoError(t, err)
		fb, err := b.GetCellFormula("PART 1 - MODEL A", cell)
		require.NoError(t, err)
		assert.Equal(t, fa, fb, cell)
	}
}

func TestBuildRejectsConfiguration(t *testing.T) {
	cfg := sampleConfiguration()
	cfg.EvergreenMetrics = nil
	cfg.CustomMetrics = nil

	data, err := Build(context.Background(), cfg)
	assert.Nil(t, data)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrNoMetrics)

	cfg = sampleConfiguration()
	cfg.NumModelSheets = 27
	_, err = Build(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrModelCount)

	cfg.NumModelSheets = 0
	_, err = Build(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrModelCount)
}

func TestBuildWrapsStepFailure(t *testing.T) {
	underlying := errors.New("disk on fire")
	steps := []buildStep{
		{StepReadme, (*workbook).buildReadme},
		{"exploding", func(*workbook) error { return underlying }},
	}

	data, err := NewBuilder().run(context.Background(), sampleConfiguration(), steps)
	assert.Nil(t, data)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "exploding", genErr.Step)
	assert.Equal(t, "disk on fire", genErr.Message)
	assert.False(t, errors.Is(err, underlying))
}

func TestBuildRecoversPanic(t *testing.T) {
	steps := []buildStep{
		{StepFormulaHelper, func(w *workbook) error { return w.buildFormulaHelper() }},
	}

	// the helper step reads the README table, which was never composed
	_, err := NewBuilder().run(context.Background(), sampleConfiguration(), steps)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, StepFormulaHelper, genErr.Step)
	assert.Contains(t, genErr.Message, "panic")
}

func TestBuildProtectsHelper(t *testing.T) {
	f := buildAndOpen(t, sampleConfiguration(), WithHelperProtection("secret"))

	assert.ErrorIs(t, f.UnprotectSheet(SheetFormulaHelper, "wrong"), excelize.ErrUnprotectSheetPassword)
	assert.ErrorIs(t, f.UnprotectSheet(SheetReadme, "secret"), excelize.ErrUnprotectSheet)
	assert.NoError(t, f.UnprotectSheet(SheetFormulaHelper, "secret"))
}

func TestBuildFreeTextPreEvalLabels(t *testing.T) {
	cases := map[string]map[string]string{
		"comma in label": {
			TermSourceIssue: "Bad, unreadable input",
			TermTargetIssue: "Off topic, irrelevant output",
		},
		"label over list limit": {
			TermSourceIssue: strings.Repeat("x", 260),
			TermTargetIssue: strings.Repeat("y", 300),
		},
	}
	for name, terms := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := sampleConfiguration()
			cfg.Terminology = terms
			f := buildAndOpen(t, cfg)
			sheet := ModelSheetName(0)

			source, err := f.GetCellValue(SheetFormulaHelper, "I2")
			require.NoError(t, err)
			assert.Equal(t, terms[TermSourceIssue], source)
			target, err := f.GetCellValue(SheetFormulaHelper, "I3")
			require.NoError(t, err)
			assert.Equal(t, terms[TermTargetIssue], target)

			validations, err := f.GetDataValidations(sheet)
			require.NoError(t, err)
			var lists int
			for _, dv := range validations {
				if dv.Type == "list" {
					lists++
					assert.Equal(t, "FORMULA_HELPER!$I$2:$I$3", dv.Formula1)
				}
			}
			assert.Equal(t, 1, lists)

			require.NoError(t, f.SetCellValue(sheet, "B2", "two words"))
			require.NoError(t, f.SetCellValue(sheet, "E2", terms[TermSourceIssue]))
			skipped, err := f.CalcCellValue(sheet, "F2")
			require.NoError(t, err)
			assert.Equal(t, "-", skipped)

			require.NoError(t, f.SetCellValue(sheet, "E2", terms[TermTargetIssue]))
			kept, err := f.CalcCellValue(sheet, "G2")
			require.NoError(t, err)
			assert.Equal(t, "2", kept)
		})
	}
}
