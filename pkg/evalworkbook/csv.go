package evalworkbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportMetricsCSV writes the README metrics table as CSV. It composes the table exactly as
// Build does, but writes the evaluated total instead of a formula.
func ExportMetricsCSV(w io.Writer, cfg *Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	table := ComposeMetricsTable(NewCursor(1), cfg.EvergreenMetrics, cfg.CustomMetrics)

	writer := csv.NewWriter(w)
	header := make([]string, 0, 5)
	for _, g := range table.Header[:5] {
		header = append(header, g.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	groups := []struct {
		label string
		rows  []PlacedMetric
	}{
		{labelEvergreen, table.Evergreen},
		{labelCustom, table.Custom},
	}
	for _, g := range groups {
		for _, pm := range g.rows {
			weight := ""
			if pm.Metric.Weight != nil {
				weight = strconv.Itoa(*pm.Metric.Weight)
			}
			record := []string{g.label, pm.Metric.Name, pm.Metric.Definition, pm.Metric.Notes, weight}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	if err := writer.Write([]string{"", "", "", totalLabel, strconv.Itoa(table.TotalWeight())}); err != nil {
		return err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write metrics csv: %w", err)
	}
	return nil
}
