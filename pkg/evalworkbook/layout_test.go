package evalworkbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestLayout(t *testing.T) (*excelize.File, *SheetLayout) {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	return f, newSheetLayout(f, "Sheet1", newStyleSheet(f))
}

func TestCursor(t *testing.T) {
	c := NewCursor(3)
	assert.Equal(t, 3, c.Next())
	assert.Equal(t, Rows(4, 10), c.Take(7))
	c.Advance(-4)
	assert.Equal(t, 11, c.Row())
	c.Advance(2)
	assert.Equal(t, 13, c.Row())
	c.Reset(1)
	assert.Equal(t, 1, c.Row())
}

func TestApplyColumnWidths(t *testing.T) {
	f, l := newTestLayout(t)

	require.NoError(t, l.ApplyColumnWidths(PresetPart1))
	w, err := f.GetColWidth("Sheet1", "B")
	require.NoError(t, err)
	assert.Equal(t, 50.0, w)

	assert.NoError(t, l.ApplyColumnWidths("no-such-preset"))
}

func TestPlaceMergedText(t *testing.T) {
	f, l := newTestLayout(t)

	require.NoError(t, l.PlaceMergedText(Rows(3, 9), Cols("B", "Q"), "perspective", styleStakeholder))

	merges, err := f.GetMergeCells("Sheet1")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "B3", merges[0].GetStartAxis())
	assert.Equal(t, "Q9", merges[0].GetEndAxis())
	assert.Equal(t, "perspective", merges[0].GetCellValue())

	// a single cell is written without a merge
	require.NoError(t, l.PlaceMergedText(Rows(12, 12), Col("M"), "Weights", styleTableHeader))
	merges, err = f.GetMergeCells("Sheet1")
	require.NoError(t, err)
	assert.Len(t, merges, 1)
}

func TestPlaceMergedTextRejectsEmptySpan(t *testing.T) {
	_, l := newTestLayout(t)

	assert.Error(t, l.PlaceMergedText(Rows(5, 4), Cols("B", "C"), "x", ""))
	assert.Error(t, l.PlaceMergedText(Rows(0, 1), Cols("B", "C"), "x", ""))
	assert.Error(t, l.PlaceMergedText(Rows(1, 1), Cols("C", "B"), "x", ""))
}

func TestBorderBlockKeepsFont(t *testing.T) {
	f, l := newTestLayout(t)

	require.NoError(t, l.PlaceMergedText(Rows(3, 3), Cols("B", "Q"), "line", styleInstruction))
	require.NoError(t, l.BorderBlock(Rows(3, 4), Cols("B", "Q"), BorderThin))

	for _, cell := range []string{"B3", "Q3", "C4", "Q4"} {
		id, err := f.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		assert.NotEmpty(t, style.Border, cell)
	}

	id, err := f.GetCellStyle("Sheet1", "B3")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.Equal(t, 14.0, style.Font.Size)
}
