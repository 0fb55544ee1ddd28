package evalworkbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Palette
const (
	colorPurpleHeader = "7030A0"
	colorLightBlue    = "DDEBF7"
	colorYellow       = "FFFF00"
	colorWhite        = "FFFFFF"
	colorEvergreen    = "00A500"
	colorCustom       = "D87A00"
	colorBlueText     = "0070C0"
	fontFamily        = "Calibri"
)

// BorderStyle is an excelize border line style.
type BorderStyle int

const (
	BorderNone  BorderStyle = 0
	BorderThin  BorderStyle = 1
	BorderThick BorderStyle = 5
)

// Named cell styles.
const (
	styleTitle          = "title"
	styleInstruction    = "instruction"
	styleStakeholder    = "stakeholder"
	styleTableHeader    = "table_header"
	styleMetricCell     = "metric_cell"
	styleMetricText     = "metric_text"
	styleEvergreenLabel = "evergreen_label"
	styleCustomLabel    = "custom_label"
	styleTotalLabel     = "total_label"
	styleTotalValue     = "total_value"
	styleSectionLabel   = "section_label"
	styleScoringText    = "scoring_text"
	styleHelperHeader   = "helper_header"
	styleSheetTitle     = "sheet_title"
	styleEvalHeader     = "eval_header"
)

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate
	Fill      string
	Alignment *AlignmentTemplate
	Border    BorderStyle
}

type FontTemplate struct {
	Size  float64
	Bold  bool
	Color string
}

type AlignmentTemplate struct {
	Horizontal string
	Vertical   string
	WrapText   bool
}

var styleTemplates = map[string]*StyleTemplate{
	styleTitle: {
		Font: &FontTemplate{Size: 16, Bold: true, Color: "000000"},
	},
	styleInstruction: {
		Font:      &FontTemplate{Size: 14},
		Alignment: &AlignmentTemplate{Horizontal: "left", Vertical: "top", WrapText: true},
	},
	styleStakeholder: {
		Font:      &FontTemplate{Size: 14},
		Alignment: &AlignmentTemplate{Horizontal: "left", Vertical: "top", WrapText: true},
	},
	styleTableHeader: {
		Font:      &FontTemplate{Size: 18, Bold: true, Color: colorWhite},
		Fill:      colorPurpleHeader,
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center", WrapText: true},
	},
	styleMetricCell: {
		Font:      &FontTemplate{Size: 16},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
	},
	styleMetricText: {
		Font:      &FontTemplate{Size: 16},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center", WrapText: true},
	},
	styleEvergreenLabel: {
		Font:      &FontTemplate{Size: 14, Bold: true, Color: colorEvergreen},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
	},
	styleCustomLabel: {
		Font:      &FontTemplate{Size: 14, Bold: true, Color: colorCustom},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
	},
	styleTotalLabel: {
		Font:      &FontTemplate{Size: 16, Bold: true},
		Alignment: &AlignmentTemplate{Horizontal: "right", Vertical: "center"},
	},
	styleTotalValue: {
		Font:      &FontTemplate{Size: 16, Bold: true},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center"},
	},
	styleSectionLabel: {
		Font: &FontTemplate{Size: 14, Bold: true},
	},
	styleScoringText: {
		Font:      &FontTemplate{Size: 14},
		Alignment: &AlignmentTemplate{Vertical: "top", WrapText: true},
	},
	styleHelperHeader: {
		Font:   &FontTemplate{Bold: true},
		Fill:   colorLightBlue,
		Border: BorderThin,
	},
	styleSheetTitle: {
		Font: &FontTemplate{Size: 16, Bold: true},
	},
	styleEvalHeader: {
		Font:      &FontTemplate{Size: 12, Bold: true, Color: colorWhite},
		Fill:      colorPurpleHeader,
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    BorderThin,
	},
}

type borderKey struct {
	base   int
	border BorderStyle
}

// styleSheet caches excelize style IDs for one workbook.
type styleSheet struct {
	f        *excelize.File
	named    map[string]int
	bordered map[borderKey]int
	missing  *int
}

func newStyleSheet(f *excelize.File) *styleSheet {
	return &styleSheet{
		f:        f,
		named:    make(map[string]int),
		bordered: make(map[borderKey]int),
	}
}

// id returns the style ID for a named template, creating it on first use.
func (s *styleSheet) id(name string) (int, error) {
	if id, ok := s.named[name]; ok {
		return id, nil
	}
	tmpl, ok := styleTemplates[name]
	if !ok {
		return 0, fmt.Errorf("unknown style %q", name)
	}
	id, err := createStyle(s.f, tmpl)
	if err != nil {
		return 0, fmt.Errorf("failed to create style %q: %w", name, err)
	}
	s.named[name] = id
	return id, nil
}

// withBorder returns a style equal to base plus a border on all four sides.
func (s *styleSheet) withBorder(base int, border BorderStyle) (int, error) {
	key := borderKey{base: base, border: border}
	if id, ok := s.bordered[key]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if base != 0 {
		existing, err := s.f.GetStyle(base)
		if err != nil {
			return 0, fmt.Errorf("failed to read style %d: %w", base, err)
		}
		style = existing
	}
	style.Border = borders(border)
	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	s.bordered[key] = id
	return id, nil
}

// missingScore is the conditional format fill for blank score cells.
func (s *styleSheet) missingScore() (*int, error) {
	if s.missing != nil {
		return s.missing, nil
	}
	id, err := s.f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorYellow}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create missing score style: %w", err)
	}
	s.missing = &id
	return s.missing, nil
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Family: fontFamily,
			Size:   tmpl.Font.Size,
			Bold:   tmpl.Font.Bold,
			Color:  strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: tmpl.Alignment.Horizontal,
			Vertical:   tmpl.Alignment.Vertical,
			WrapText:   tmpl.Alignment.WrapText,
		}
	}
	if tmpl.Border != BorderNone {
		style.Border = borders(tmpl.Border)
	}
	return f.NewStyle(style)
}

func borders(b BorderStyle) []excelize.Border {
	if b == BorderNone {
		return nil
	}
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: int(b)})
	}
	return out
}
