package evalworkbook

// README metrics table columns.
const (
	colCategoryFirst   = "B"
	colCategoryLast    = "C"
	colNameFirst       = "D"
	colNameLast        = "E"
	colDefinitionFirst = "F"
	colDefinitionLast  = "I"
	colNotesFirst      = "J"
	colNotesLast       = "L"
	colWeight          = "M"
	colWeightDefFirst  = "N"
	colWeightDefLast   = "O"
	colScoringDefFirst = "P"
	colScoringDefLast  = "Q"

	labelEvergreen = "Evergreen Metric"
	labelCustom    = "Customized Metric"

	weightDefinitionText  = "Weights set how much each metric counts toward the weighted rating. The weighted rating divides by the live total of all weights."
	scoringDefinitionText = "Score every metric from 1 (Poor) to 5 (Excellent). See the Scoring Definitions below the table."
)

// HeaderGroup is one merged column group of the metrics header row.
type HeaderGroup struct {
	Label string
	Cols  ColSpan
}

var metricsHeader = []HeaderGroup{
	{Label: "Category", Cols: Cols(colCategoryFirst, colCategoryLast)},
	{Label: "Metrics", Cols: Cols(colNameFirst, colNameLast)},
	{Label: "Definitions", Cols: Cols(colDefinitionFirst, colDefinitionLast)},
	{Label: "Notes", Cols: Cols(colNotesFirst, colNotesLast)},
	{Label: "Weights", Cols: Col(colWeight)},
	{Label: "Weight Definition", Cols: Cols(colWeightDefFirst, colWeightDefLast)},
	{Label: "Scoring Definition", Cols: Cols(colScoringDefFirst, colScoringDefLast)},
}

// PlacedMetric is a metric row with its final position.
type PlacedMetric struct {
	Row        int
	Metric     MetricRow
	WeightCell string
}

// CategorySpan is the row extent of one non-empty metric group.
type CategorySpan struct {
	Category Category
	Label    string
	Rows     RowSpan
}

// MetricsTable is the composed README metrics table, ready to render.
type MetricsTable struct {
	HeaderRow int
	Header    []HeaderGroup
	Evergreen []PlacedMetric
	Custom    []PlacedMetric
	Spans     []CategorySpan
	Registry  *WeightCellRegistry
}

// Rows returns every placed metric, evergreen first.
func (t *MetricsTable) Rows() []PlacedMetric {
	out := make([]PlacedMetric, 0, len(t.Evergreen)+len(t.Custom))
	out = append(out, t.Evergreen...)
	return append(out, t.Custom...)
}

// BodySpan is the row extent of all metric rows. ok is false for an empty table.
func (t *MetricsTable) BodySpan() (span RowSpan, ok bool) {
	rows := t.Rows()
	if len(rows) == 0 {
		return RowSpan{}, false
	}
	return Rows(rows[0].Row, rows[len(rows)-1].Row), true
}

// ComposeMetricsTable lays out the header row at the cursor and then one row per metric,
// evergreen before custom with no break row. The cursor ends on the first row after the table.
func ComposeMetricsTable(cur *Cursor, evergreen, custom []MetricRow) *MetricsTable {
	t := &MetricsTable{
		HeaderRow: cur.Next(),
		Header:    metricsHeader,
		Registry:  NewWeightCellRegistry(),
	}
	t.Evergreen = placeGroup(cur, evergreen, t.Registry)
	t.Custom = placeGroup(cur, custom, t.Registry)

	if span, ok := groupSpan(t.Evergreen); ok {
		t.Spans = append(t.Spans, CategorySpan{Category: CategoryEvergreen, Label: labelEvergreen, Rows: span})
	}
	if span, ok := groupSpan(t.Custom); ok {
		t.Spans = append(t.Spans, CategorySpan{Category: CategoryCustom, Label: labelCustom, Rows: span})
	}
	return t
}

func placeGroup(cur *Cursor, metrics []MetricRow, registry *WeightCellRegistry) []PlacedMetric {
	placed := make([]PlacedMetric, 0, len(metrics))
	for _, m := range metrics {
		row := cur.Next()
		pm := PlacedMetric{Row: row, Metric: m, WeightCell: Cell(colWeight, row)}
		if m.Weight != nil {
			registry.Add(pm.WeightCell)
		}
		placed = append(placed, pm)
	}
	return placed
}

func groupSpan(group []PlacedMetric) (RowSpan, bool) {
	if len(group) == 0 {
		return RowSpan{}, false
	}
	return Rows(group[0].Row, group[len(group)-1].Row), true
}

// TotalWeight is the arithmetic sum of all non-null weights.
func (t *MetricsTable) TotalWeight() int {
	total := 0
	for _, pm := range t.Rows() {
		if pm.Metric.Weight != nil {
			total += *pm.Metric.Weight
		}
	}
	return total
}
