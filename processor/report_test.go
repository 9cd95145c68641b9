package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Matches: []dataset.MatchRecord{
			{Season: "2019", Team1: "Mumbai Indians", Team2: "Chennai Super Kings", TossWinner: "Mumbai Indians", TossDecision: "bat",
				Winner: "Mumbai Indians", Result: dataset.ResultRuns, ResultMargin: 1, Venue: "Rajiv Gandhi Stadium", City: "Hyderabad", PlayerOfMatch: "JJ Bumrah"},
			{Season: "2020", Team1: "Delhi Capitals", Team2: "Mumbai Indians", TossWinner: "Delhi Capitals", TossDecision: "field",
				Winner: "Mumbai Indians", Result: dataset.ResultWickets, ResultMargin: 5, Venue: "Dubai International Stadium", City: "Dubai", PlayerOfMatch: "TA Boult"},
			{Season: "2020", Team1: "Chennai Super Kings", Team2: "Rajasthan Royals", TossWinner: "Rajasthan Royals", TossDecision: "field",
				Winner: "Rajasthan Royals", Result: dataset.ResultRuns, ResultMargin: 16, Venue: "Sharjah Cricket Stadium", City: "Sharjah", PlayerOfMatch: "SV Samson"},
			{Season: "2021", Team1: "Chennai Super Kings", Team2: "Delhi Capitals", TossWinner: "Chennai Super Kings", TossDecision: "bat",
				Winner: "", Result: dataset.ResultNoResult, Venue: "Wankhede Stadium", City: "Mumbai"},
		},
		Deliveries: []dataset.DeliveryRecord{
			{MatchID: "1", Batter: "RG Sharma", Bowler: "DL Chahar", BatterRuns: 4},
			{MatchID: "1", Batter: "RG Sharma", Bowler: "DL Chahar", BatterRuns: 0, IsWicket: true, DismissalKind: "caught"},
			{MatchID: "2", Batter: "SS Iyer", Bowler: "JJ Bumrah", BatterRuns: 6},
			{MatchID: "2", Batter: "SS Iyer", Bowler: "JJ Bumrah", BatterRuns: 0, IsWicket: true, DismissalKind: dataset.DismissalRunOut},
		},
	}
}

func tableByName(t *testing.T, r Report, name string) ChartTable {
	t.Helper()
	for _, table := range r.Tables {
		if table.Name == name {
			return table
		}
	}
	t.Fatalf("report has no table %q", name)
	return ChartTable{}
}

func TestBuildReportTableSet(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}
	report := BuildReport(snapshot, ReportOptions{})

	names := make([]string, 0, len(report.Tables))
	for _, table := range report.Tables {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{
		"wins_by_team",
		"toss_decision",
		"matches_per_season",
		"toss_match_win",
		"top_venues",
		"top_player_of_match",
		"top_run_scorers",
		"top_wicket_takers",
		"wins_by_runs",
		"wins_by_wickets",
		"kpi_summary",
	}, names)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestBuildReportIncludeRawTable(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}
	report := BuildReport(snapshot, ReportOptions{IncludeRawTable: true})

	raw := tableByName(t, report, "filtered_matches")
	assert.Equal(t, ChartRawTable, raw.Kind)
	assert.Len(t, raw.Rows, 4)
}

func TestBuildReportWinsByTeam(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}
	report := BuildReport(snapshot, ReportOptions{})

	wins := tableByName(t, report, "wins_by_team")
	require.Len(t, wins.Rows, 3)
	assert.Equal(t, []interface{}{"Mumbai Indians", 2}, wins.Rows[0])
	// The no-result match contributes an empty-winner category, it is not dropped.
	categories := make(map[interface{}]bool)
	for _, row := range wins.Rows {
		categories[row[0]] = true
	}
	assert.True(t, categories[""])
}

func TestBuildReportSeasonTrendIgnoresFilter(t *testing.T) {
	snapshot := &dataset.Snapshot{
		Dataset: testDataset(),
		Filter:  dataset.Filter{Season: "2020"},
	}
	report := BuildReport(snapshot, ReportOptions{})

	trend := tableByName(t, report, "matches_per_season")
	require.Len(t, trend.Rows, 3, "trend covers every season, not just the filtered one")
	assert.Equal(t, []interface{}{"2019", 1}, trend.Rows[0])
	assert.Equal(t, []interface{}{"2020", 2}, trend.Rows[1])
	assert.Equal(t, []interface{}{"2021", 1}, trend.Rows[2])

	// Everything else honors the filter.
	assert.Equal(t, KPISummary{TotalMatches: 2, DistinctVenues: 2, DistinctCities: 2, DistinctSeasons: 1}, report.KPI)
}

func TestBuildReportTossOutcome(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}

	rowsToMap := func(table ChartTable) map[interface{}]interface{} {
		out := make(map[interface{}]interface{})
		for _, row := range table.Rows {
			out[row[0]] = row[1]
		}
		return out
	}

	// Default: no-result matches are excluded.
	report := BuildReport(snapshot, ReportOptions{})
	toss := rowsToMap(tableByName(t, report, "toss_match_win"))
	assert.Equal(t, map[interface{}]interface{}{"Yes": 2, "No": 1}, toss)

	// Opt-in: no-result counts as a toss loss.
	report = BuildReport(snapshot, ReportOptions{IncludeNoResult: true})
	toss = rowsToMap(tableByName(t, report, "toss_match_win"))
	assert.Equal(t, map[interface{}]interface{}{"Yes": 2, "No": 2}, toss)
}

func TestBuildReportTopNOption(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}
	report := BuildReport(snapshot, ReportOptions{TopN: 1})

	venues := tableByName(t, report, "top_venues")
	assert.Len(t, venues.Rows, 1)

	scorers := tableByName(t, report, "top_run_scorers")
	require.Len(t, scorers.Rows, 1)
	assert.Equal(t, []interface{}{"SS Iyer", 6}, scorers.Rows[0])
}

func TestBuildReportWicketTable(t *testing.T) {
	snapshot := &dataset.Snapshot{Dataset: testDataset()}
	report := BuildReport(snapshot, ReportOptions{})

	wickets := tableByName(t, report, "top_wicket_takers")
	require.Len(t, wickets.Rows, 1, "run out is not credited to the bowler")
	assert.Equal(t, []interface{}{"DL Chahar", 1}, wickets.Rows[0])
}

func TestBuildReportEmptyFilterResult(t *testing.T) {
	snapshot := &dataset.Snapshot{
		Dataset: testDataset(),
		Filter:  dataset.Filter{Season: "1999"},
	}
	report := BuildReport(snapshot, ReportOptions{IncludeRawTable: true})

	assert.Equal(t, KPISummary{}, report.KPI)
	assert.Empty(t, tableByName(t, report, "wins_by_team").Rows)
	assert.Empty(t, tableByName(t, report, "filtered_matches").Rows)
	// Zero-row tables are a valid report, the table set stays complete.
	assert.Len(t, report.Tables, 12)
}

func TestKPISummaryTable(t *testing.T) {
	kpi := KPISummary{TotalMatches: 4, DistinctVenues: 3, DistinctCities: 2, DistinctSeasons: 1}
	table := kpi.Table(dataset.Filter{Season: "2020"}, time.Now().UTC())

	assert.Equal(t, "kpi_summary", table.Name)
	assert.Equal(t, ChartKPI, table.Kind)
	assert.Equal(t, [][]interface{}{
		{"total_matches", 4},
		{"distinct_venues", 3},
		{"distinct_cities", 2},
		{"distinct_seasons", 1},
	}, table.Rows)
}

func TestChartTableLabelValues(t *testing.T) {
	table := ChartTable{
		Columns: []string{"team", "wins"},
		Rows: [][]interface{}{
			{"Mumbai Indians", 5},
			{"Chennai Super Kings", int64(4)},
			{"Rajasthan Royals", 3.0},
			{"short row"},
		},
	}

	got := table.LabelValues()
	assert.Equal(t, []LabelValue{
		{Label: "Mumbai Indians", Value: 5},
		{Label: "Chennai Super Kings", Value: 4},
		{Label: "Rajasthan Royals", Value: 3},
	}, got)
}
