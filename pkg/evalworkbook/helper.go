package evalworkbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var helperHeaders = []string{
	"Evergreen Metric", "Evergreen Weights", "Total Evergreen",
	"Custom Metric", "Custom Weights", "Total Custom", "Total Combined Weight SUM",
}

// buildFormulaHelper writes the hidden sheet that the defined names point into.
// Its weight cells reference the README weight cells so edits there flow through.
func (w *workbook) buildFormulaHelper() error {
	if _, err := w.f.NewSheet(SheetFormulaHelper); err != nil {
		return err
	}
	l := w.layout(SheetFormulaHelper)
	for i, h := range helperHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := l.PlaceValue(cell, h, styleHelperHeader); err != nil {
			return err
		}
	}

	if err := placeHelperGroup(l, w.table.Evergreen, helperEvergreenNameCol, helperEvergreenCol); err != nil {
		return err
	}
	if err := placeHelperGroup(l, w.table.Custom, helperCustomNameCol, helperCustomCol); err != nil {
		return err
	}

	evergreenTotal := helperSubtotal(helperEvergreenCol, len(w.table.Evergreen))
	customTotal := helperSubtotal(helperCustomCol, len(w.table.Custom))
	if err := l.PlaceFormula(helperEvergreenTotal, evergreenTotal, ""); err != nil {
		return err
	}
	if err := l.PlaceFormula(helperCustomTotal, customTotal, ""); err != nil {
		return err
	}
	grand := Sum(Ref{Cell: helperEvergreenTotal}, Ref{Cell: helperCustomTotal})
	if err := l.PlaceFormula(helperTotalCell, grand, ""); err != nil {
		return err
	}

	if err := placePreEvalOptions(l, w.cfg); err != nil {
		return err
	}

	for _, dn := range w.planner.DefinedNames() {
		if err := w.f.SetDefinedName(dn); err != nil {
			return fmt.Errorf("failed to define %s: %w", dn.Name, err)
		}
	}

	if err := w.f.SetSheetVisible(SheetFormulaHelper, false); err != nil {
		return err
	}
	if w.opts.protectHelper {
		return w.f.ProtectSheet(SheetFormulaHelper, &excelize.SheetProtectionOptions{
			Password:            w.opts.helperPassword,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

func placeHelperGroup(l *SheetLayout, group []PlacedMetric, nameCol, weightCol string) error {
	for i, pm := range group {
		row := helperFirstRow + i
		if err := l.PlaceValue(Cell(nameCol, row), pm.Metric.Name, ""); err != nil {
			return err
		}
		if pm.Metric.Weight == nil {
			continue
		}
		if err := l.PlaceFormula(Cell(weightCol, row), Ref{Sheet: SheetReadme, Cell: pm.WeightCell}, ""); err != nil {
			return err
		}
	}
	return nil
}

func placePreEvalOptions(l *SheetLayout, cfg *Configuration) error {
	source, target := cfg.PreEvalOptions()
	if err := l.PlaceValue(helperPreEvalHeadCell, helperPreEvalHeader, styleHelperHeader); err != nil {
		return err
	}
	if err := l.PlaceValue(helperPreEvalSource, source, ""); err != nil {
		return err
	}
	return l.PlaceValue(helperPreEvalTarget, target, "")
}

// helperSubtotal sums the weight column from row 2 down to the last metric row, at least row 2.
func helperSubtotal(col string, n int) Expr {
	last := helperFirstRow + n - 1
	if last < helperFirstRow {
		last = helperFirstRow
	}
	return Fn("SUM", Range{From: Cell(col, helperFirstRow), To: Cell(col, last)})
}
