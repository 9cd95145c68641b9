package processor

import (
	"time"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

// DefaultTopN is the ranking depth used by every top-N table unless
// configured otherwise.
const DefaultTopN = 10

// ReportOptions tune the derived table set.
type ReportOptions struct {
	// TopN limits the ranking tables (venues, players, win margins).
	TopN int
	// IncludeNoResult counts no-result matches as "No" in the toss outcome
	// table instead of excluding them.
	IncludeNoResult bool
	// IncludeRawTable adds the projected filtered match rows to the report.
	IncludeRawTable bool
}

func (o ReportOptions) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// Report is the full fixed set of derived tables for one filter state.
type Report struct {
	Filter      dataset.Filter `json:"filter"`
	KPI         KPISummary     `json:"kpi"`
	Tables      []ChartTable   `json:"tables"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// BuildReport recomputes every derived table from the cached dataset and the
// given filter. It is a pure function of its inputs: the dashboard calls it
// per request, the ReportBuilder processor calls it once per snapshot.
func BuildReport(snapshot *dataset.Snapshot, opts ReportOptions) Report {
	now := time.Now().UTC()
	filter := snapshot.Filter
	filtered := filter.Apply(snapshot.Dataset.Matches)
	n := opts.topN()

	tables := []ChartTable{
		valueCountTable("wins_by_team", "Total Wins per Team", ChartBarHorizontal,
			"wins", "team", winners(filtered), 0, filter, now),
		valueCountTable("toss_decision", "Bat vs Field after Toss", ChartPie,
			"decision", "count", tossDecisions(filtered), 0, filter, now),
		seasonCountTable(snapshot.Dataset.Matches, filter, now),
		tossOutcomeTable(filtered, opts, filter, now),
		valueCountTable("top_venues", "Most Used Venues", ChartBarHorizontal,
			"matches", "venue", venues(filtered), n, filter, now),
		valueCountTable("top_player_of_match", "Most Player of the Match Awards", ChartBarHorizontal,
			"awards", "player", playersOfMatch(filtered), n, filter, now),
		runScorerTable(snapshot.Dataset.Deliveries, n, filter, now),
		wicketTakerTable(snapshot.Dataset.Deliveries, n, filter, now),
		marginTable("wins_by_runs", "Biggest Wins by Runs", dataset.ResultRuns, filtered, n, filter, now),
		marginTable("wins_by_wickets", "Biggest Wins by Wickets", dataset.ResultWickets, filtered, n, filter, now),
	}

	kpi := Summarize(filtered)
	tables = append(tables, kpi.Table(filter, now))

	if opts.IncludeRawTable {
		tables = append(tables, rawMatchTable(filtered, filter, now))
	}

	return Report{Filter: filter, KPI: kpi, Tables: tables, GeneratedAt: now}
}

func valueCountTable(name, title string, kind ChartKind, xField, yField string, values []string, topN int, filter dataset.Filter, now time.Time) ChartTable {
	var counts []ValueCount
	if topN > 0 {
		counts = TopValueCounts(values, topN)
	} else {
		counts = ValueCounts(values)
	}
	rows := make([][]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Value, c.Count})
	}
	return ChartTable{
		Name:        name,
		Title:       title,
		Kind:        kind,
		XField:      xField,
		YField:      yField,
		Columns:     []string{yField, xField},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

// seasonCountTable is computed over the full match table: the season trend
// line keeps its shape regardless of the active filter, matching the
// dashboard this pipeline replaced.
func seasonCountTable(matches []dataset.MatchRecord, filter dataset.Filter, now time.Time) ChartTable {
	counts := CountBySeason(matches)
	rows := make([][]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Season, c.Count})
	}
	return ChartTable{
		Name:        "matches_per_season",
		Title:       "Matches Played Each Season",
		Kind:        ChartLine,
		XField:      "season",
		YField:      "matches",
		Columns:     []string{"season", "matches"},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

func tossOutcomeTable(filtered []dataset.MatchRecord, opts ReportOptions, filter dataset.Filter, now time.Time) ChartTable {
	counts := TossOutcomeCounts(filtered, !opts.IncludeNoResult)
	rows := make([][]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Value, c.Count})
	}
	return ChartTable{
		Name:        "toss_match_win",
		Title:       "Toss Winner = Match Winner?",
		Kind:        ChartPie,
		XField:      "won_match_after_toss",
		YField:      "count",
		Columns:     []string{"won_match_after_toss", "count"},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

func runScorerTable(deliveries []dataset.DeliveryRecord, n int, filter dataset.Filter, now time.Time) ChartTable {
	totals := TopRunScorers(deliveries, n)
	rows := make([][]interface{}, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []interface{}{t.Player, t.Total})
	}
	return ChartTable{
		Name:        "top_run_scorers",
		Title:       "Highest Run Scorers",
		Kind:        ChartBarHorizontal,
		XField:      "total_runs",
		YField:      "batter",
		Columns:     []string{"batter", "total_runs"},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

func wicketTakerTable(deliveries []dataset.DeliveryRecord, n int, filter dataset.Filter, now time.Time) ChartTable {
	totals := TopWicketTakers(deliveries, n)
	rows := make([][]interface{}, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []interface{}{t.Player, t.Total})
	}
	return ChartTable{
		Name:        "top_wicket_takers",
		Title:       "Most Wickets Taken",
		Kind:        ChartBarHorizontal,
		XField:      "wickets",
		YField:      "bowler",
		Columns:     []string{"bowler", "wickets"},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

func marginTable(name, title, result string, filtered []dataset.MatchRecord, n int, filter dataset.Filter, now time.Time) ChartTable {
	top := TopNByMargin(filtered, result, n)
	rows := make([][]interface{}, 0, len(top))
	for _, m := range top {
		rows = append(rows, []interface{}{m.Winner, m.ResultMargin, m.Season})
	}
	return ChartTable{
		Name:        name,
		Title:       title,
		Kind:        ChartBarHorizontal,
		XField:      "result_margin",
		YField:      "winner",
		Columns:     []string{"winner", "result_margin", "season"},
		Rows:        rows,
		Filter:      filter,
		GeneratedAt: now,
	}
}

func rawMatchTable(filtered []dataset.MatchRecord, filter dataset.Filter, now time.Time) ChartTable {
	rows := make([][]interface{}, 0, len(filtered))
	for _, m := range filtered {
		date := ""
		if !m.Date.IsZero() {
			date = m.Date.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			m.Season, date, m.Team1, m.Team2, m.Winner,
			m.Venue, m.PlayerOfMatch, m.TossWinner, m.TossDecision,
		})
	}
	return ChartTable{
		Name:    "filtered_matches",
		Title:   "Raw Match Data",
		Kind:    ChartRawTable,
		Columns: []string{"season", "date", "team1", "team2", "winner", "venue", "player_of_match", "toss_winner", "toss_decision"},
		Rows:    rows,
		Filter:  filter,
		GeneratedAt: now,
	}
}

func winners(matches []dataset.MatchRecord) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Winner)
	}
	return out
}

func tossDecisions(matches []dataset.MatchRecord) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.TossDecision)
	}
	return out
}

func venues(matches []dataset.MatchRecord) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Venue)
	}
	return out
}

func playersOfMatch(matches []dataset.MatchRecord) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.PlayerOfMatch)
	}
	return out
}
