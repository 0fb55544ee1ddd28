package evalworkbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weighted(name string, w int) MetricRow {
	return MetricRow{Name: name, Weight: intPtr(w)}
}

func unweighted(name string) MetricRow {
	return MetricRow{Name: name}
}

func TestComposeMetricsTable(t *testing.T) {
	cur := NewCursor(10)
	table := ComposeMetricsTable(cur,
		[]MetricRow{weighted("Accuracy", 8), weighted("Fluency", 5)},
		[]MetricRow{unweighted("Red Flags"), weighted("Tone", 3)},
	)

	assert.Equal(t, 10, table.HeaderRow)
	assert.Len(t, table.Header, 7)
	assert.Equal(t, 15, cur.Row())

	rows := table.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "Accuracy", rows[0].Metric.Name)
	assert.Equal(t, 11, rows[0].Row)
	assert.Equal(t, "Red Flags", rows[2].Metric.Name)
	assert.Equal(t, "M13", rows[2].WeightCell)

	assert.Equal(t, []string{"M11", "M12", "M14"}, table.Registry.Cells())
	assert.Equal(t, "SUM(M11,M12,M14)", Render(table.Registry.SumExpr()))
	assert.Equal(t, 16, table.TotalWeight())

	require.Len(t, table.Spans, 2)
	assert.Equal(t, CategorySpan{Category: CategoryEvergreen, Label: labelEvergreen, Rows: Rows(11, 12)}, table.Spans[0])
	assert.Equal(t, CategorySpan{Category: CategoryCustom, Label: labelCustom, Rows: Rows(13, 14)}, table.Spans[1])
}

func TestComposeMetricsTableSkipsEmptyGroup(t *testing.T) {
	table := ComposeMetricsTable(NewCursor(1), []MetricRow{weighted("Accuracy", 8), weighted("Fluency", 5), weighted("Compliance", 6)}, nil)

	require.Len(t, table.Spans, 1)
	assert.Equal(t, CategoryEvergreen, table.Spans[0].Category)
	assert.Equal(t, 3, table.Spans[0].Rows.Len())
	assert.Empty(t, table.Custom)
}

func TestRegistryWithoutWeights(t *testing.T) {
	table := ComposeMetricsTable(NewCursor(1), nil, []MetricRow{unweighted("Red Flags")})

	assert.Zero(t, table.Registry.Len())
	assert.Equal(t, "0", Render(table.Registry.SumExpr()))
}

func TestRegistryIgnoresDuplicates(t *testing.T) {
	r := NewWeightCellRegistry()
	r.Add("M5")
	r.Add("M6")
	r.Add("M5")
	assert.Equal(t, []string{"M5", "M6"}, r.Cells())
}
