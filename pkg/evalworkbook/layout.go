package evalworkbook

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Column width presets.
const (
	PresetReadme = "readme"
	PresetPart1  = "part1"
	PresetPart2  = "part2"
	PresetPart3  = "part3"
)

type widthPreset struct {
	columns map[string]float64
	// fallback is applied as the sheet default column width when non-zero.
	fallback float64
}

var widthPresets = map[string]widthPreset{
	PresetReadme: {columns: map[string]float64{
		"A": 2,
		"B": 15, "C": 15, "D": 15, "E": 15,
		"F": 10, "G": 10, "H": 10, "I": 10,
		"J": 15, "K": 15, "L": 15,
		"M": 10,
		"N": 15, "O": 15, "P": 15, "Q": 15,
	}},
	PresetPart1: {columns: map[string]float64{
		"A": 8, "B": 50, "C": 50, "D": 11, "E": 20, "F": 20, "G": 25, "H": 10,
		"I": 10, "J": 17, "K": 12, "L": 10, "M": 15, "N": 15, "O": 10, "P": 30,
	}},
	PresetPart2: {fallback: 10},
	PresetPart3: {fallback: 12},
}

// RowSpan is an inclusive range of 1-indexed rows.
type RowSpan struct {
	First int
	Last  int
}

// Rows returns the span [first, last].
func Rows(first, last int) RowSpan {
	return RowSpan{First: first, Last: last}
}

// Len returns the number of rows in the span.
func (r RowSpan) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

func (r RowSpan) valid() error {
	if r.First < 1 || r.Last < r.First {
		return fmt.Errorf("invalid row span %d..%d", r.First, r.Last)
	}
	return nil
}

// ColSpan is an inclusive range of lettered columns.
type ColSpan struct {
	First string
	Last  string
}

// Cols returns the span [first, last].
func Cols(first, last string) ColSpan {
	return ColSpan{First: first, Last: last}
}

// Col returns a one-column span.
func Col(col string) ColSpan {
	return ColSpan{First: col, Last: col}
}

func (c ColSpan) numbers() (int, int, error) {
	first, err := excelize.ColumnNameToNumber(c.First)
	if err != nil {
		return 0, 0, err
	}
	last, err := excelize.ColumnNameToNumber(c.Last)
	if err != nil {
		return 0, 0, err
	}
	if last < first {
		return 0, 0, fmt.Errorf("invalid column span %s..%s", c.First, c.Last)
	}
	return first, last, nil
}

// SheetLayout holds the placement primitives used by every sheet step.
type SheetLayout struct {
	f      *excelize.File
	sheet  string
	styles *styleSheet
}

func newSheetLayout(f *excelize.File, sheet string, styles *styleSheet) *SheetLayout {
	return &SheetLayout{f: f, sheet: sheet, styles: styles}
}

// ApplyColumnWidths applies a named preset. Unknown presets are ignored.
func (l *SheetLayout) ApplyColumnWidths(preset string) error {
	p, ok := widthPresets[preset]
	if !ok {
		return nil
	}
	if p.fallback > 0 {
		w := p.fallback
		if err := l.f.SetSheetProps(l.sheet, &excelize.SheetPropsOptions{DefaultColWidth: &w}); err != nil {
			return fmt.Errorf("failed to set default width on %s: %w", l.sheet, err)
		}
	}
	cols := make([]string, 0, len(p.columns))
	for col := range p.columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if err := l.f.SetColWidth(l.sheet, col, col, p.columns[col]); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}
	return nil
}

// PlaceMergedText merges the rectangle and writes text into its top-left cell.
// The named style goes on the anchor cell only.
func (l *SheetLayout) PlaceMergedText(rows RowSpan, cols ColSpan, text, style string) error {
	anchor, err := l.merge(rows, cols)
	if err != nil {
		return err
	}
	if text != "" {
		if err := l.f.SetCellValue(l.sheet, anchor, text); err != nil {
			return err
		}
	}
	return l.styleCell(anchor, style)
}

// PlaceMergedRichText is PlaceMergedText with per-run fonts.
func (l *SheetLayout) PlaceMergedRichText(rows RowSpan, cols ColSpan, runs []excelize.RichTextRun, style string) error {
	anchor, err := l.merge(rows, cols)
	if err != nil {
		return err
	}
	if err := l.f.SetCellRichText(l.sheet, anchor, runs); err != nil {
		return err
	}
	return l.styleCell(anchor, style)
}

// PlaceValue writes a single cell.
func (l *SheetLayout) PlaceValue(cell string, value interface{}, style string) error {
	if value != nil {
		if err := l.f.SetCellValue(l.sheet, cell, value); err != nil {
			return err
		}
	}
	return l.styleCell(cell, style)
}

// PlaceFormula renders e and writes it into cell.
func (l *SheetLayout) PlaceFormula(cell string, e Expr, style string) error {
	if err := l.f.SetCellFormula(l.sheet, cell, Render(e)); err != nil {
		return fmt.Errorf("failed to set formula in %s!%s: %w", l.sheet, cell, err)
	}
	return l.styleCell(cell, style)
}

// BorderBlock puts the border on every cell of the rectangle, keeping each cell's other formatting.
func (l *SheetLayout) BorderBlock(rows RowSpan, cols ColSpan, border BorderStyle) error {
	if err := rows.valid(); err != nil {
		return err
	}
	first, last, err := cols.numbers()
	if err != nil {
		return err
	}
	for r := rows.First; r <= rows.Last; r++ {
		for c := first; c <= last; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			base, err := l.f.GetCellStyle(l.sheet, cell)
			if err != nil {
				return err
			}
			id, err := l.styles.withBorder(base, border)
			if err != nil {
				return err
			}
			if err := l.f.SetCellStyle(l.sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetRowHeights applies height to every row of the span.
func (l *SheetLayout) SetRowHeights(rows RowSpan, height float64) error {
	for r := rows.First; r <= rows.Last; r++ {
		if err := l.f.SetRowHeight(l.sheet, r, height); err != nil {
			return err
		}
	}
	return nil
}

func (l *SheetLayout) merge(rows RowSpan, cols ColSpan) (string, error) {
	if err := rows.valid(); err != nil {
		return "", err
	}
	if _, _, err := cols.numbers(); err != nil {
		return "", err
	}
	anchor := Cell(cols.First, rows.First)
	end := Cell(cols.Last, rows.Last)
	if anchor != end {
		if err := l.f.MergeCell(l.sheet, anchor, end); err != nil {
			return "", fmt.Errorf("failed to merge %s:%s on %s: %w", anchor, end, l.sheet, err)
		}
	}
	return anchor, nil
}

func (l *SheetLayout) styleCell(cell, style string) error {
	if style == "" {
		return nil
	}
	id, err := l.styles.id(style)
	if err != nil {
		return err
	}
	return l.f.SetCellStyle(l.sheet, cell, cell, id)
}

// sheetPresentation holds per-sheet view settings.
type sheetPresentation struct {
	showGridLines bool
	tabColor      string
	freezeHeader  bool
}

func (l *SheetLayout) present(p sheetPresentation) error {
	show := p.showGridLines
	if err := l.f.SetSheetView(l.sheet, -1, &excelize.ViewOptions{ShowGridLines: &show}); err != nil {
		return err
	}
	if p.tabColor != "" {
		color := p.tabColor
		if err := l.f.SetSheetProps(l.sheet, &excelize.SheetPropsOptions{TabColorRGB: &color}); err != nil {
			return err
		}
	}
	if p.freezeHeader {
		return l.f.SetPanes(l.sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}
