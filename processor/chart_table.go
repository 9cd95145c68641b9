package processor

import (
	"time"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

// ChartKind tags a derived table with the rendering collaborator it is
// intended for. The pipeline only produces the data each chart needs; it
// never formats pixels.
type ChartKind string

const (
	ChartBarHorizontal ChartKind = "bar-horizontal"
	ChartPie           ChartKind = "pie"
	ChartLine          ChartKind = "line"
	ChartKPI           ChartKind = "kpi"
	ChartRawTable      ChartKind = "table"
)

// ChartTable is one named derived table plus its axis/field bindings. A table
// with zero rows is a valid result (the sink renders a placeholder), never an
// error.
type ChartTable struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Kind        ChartKind       `json:"kind"`
	XField      string          `json:"x_field,omitempty"`
	YField      string          `json:"y_field,omitempty"`
	Columns     []string        `json:"columns"`
	Rows        [][]interface{} `json:"rows"`
	Filter      dataset.Filter  `json:"filter"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// LabelValues returns (label, value) pairs for two-column tables, which is
// what the ranking sinks (redis sorted sets, bar charts) consume.
func (t *ChartTable) LabelValues() []LabelValue {
	if len(t.Columns) < 2 {
		return nil
	}
	out := make([]LabelValue, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		lv := LabelValue{}
		if s, ok := row[0].(string); ok {
			lv.Label = s
		}
		switch v := row[1].(type) {
		case int:
			lv.Value = float64(v)
		case int64:
			lv.Value = float64(v)
		case float64:
			lv.Value = v
		default:
			continue
		}
		out = append(out, lv)
	}
	return out
}

type LabelValue struct {
	Label string
	Value float64
}

// KPISummary holds the four headline scalars for the filtered match set.
type KPISummary struct {
	TotalMatches    int `json:"total_matches"`
	DistinctVenues  int `json:"distinct_venues"`
	DistinctCities  int `json:"distinct_cities"`
	DistinctSeasons int `json:"distinct_seasons"`
}

// Table renders the KPI scalars as a chart table so every sink can treat the
// whole report uniformly.
func (k KPISummary) Table(filter dataset.Filter, now time.Time) ChartTable {
	return ChartTable{
		Name:    "kpi_summary",
		Title:   "Season Overview",
		Kind:    ChartKPI,
		Columns: []string{"metric", "value"},
		Rows: [][]interface{}{
			{"total_matches", k.TotalMatches},
			{"distinct_venues", k.DistinctVenues},
			{"distinct_cities", k.DistinctCities},
			{"distinct_seasons", k.DistinctSeasons},
		},
		Filter:      filter,
		GeneratedAt: now,
	}
}
