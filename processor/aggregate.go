package processor

import (
	"sort"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

// ValueCount is one (value, count) pair from a value-count aggregation.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts groups the input values, counts occurrences, and orders the
// result by descending count. Ties keep first-appearance order. Empty values
// are counted as their own category rather than dropped, so the counts always
// sum to len(values).
func ValueCounts(values []string) []ValueCount {
	counts := make(map[string]int, len(values))
	order := make([]string, 0)
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]ValueCount, 0, len(order))
	for _, v := range order {
		out = append(out, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// TopValueCounts is ValueCounts limited to the n most frequent values.
func TopValueCounts(values []string, n int) []ValueCount {
	counts := ValueCounts(values)
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// PlayerTotal is one (player, total) pair from a group-sum aggregation over
// the delivery table.
type PlayerTotal struct {
	Player string
	Total  int
}

// TopRunScorers groups deliveries by batter, sums the per-delivery batter
// runs, and returns the n highest totals in descending order.
func TopRunScorers(deliveries []dataset.DeliveryRecord, n int) []PlayerTotal {
	return topTotals(deliveries, n, func(d dataset.DeliveryRecord) (string, int, bool) {
		return d.Batter, d.BatterRuns, true
	})
}

// TopWicketTakers counts wickets per bowler, excluding run-outs, which are
// not credited to the bowler. Returns the n highest totals in descending order.
func TopWicketTakers(deliveries []dataset.DeliveryRecord, n int) []PlayerTotal {
	return topTotals(deliveries, n, func(d dataset.DeliveryRecord) (string, int, bool) {
		if !d.IsWicket || d.DismissalKind == dataset.DismissalRunOut {
			return "", 0, false
		}
		return d.Bowler, 1, true
	})
}

func topTotals(deliveries []dataset.DeliveryRecord, n int, contribution func(dataset.DeliveryRecord) (string, int, bool)) []PlayerTotal {
	totals := make(map[string]int)
	order := make([]string, 0)
	for _, d := range deliveries {
		player, value, ok := contribution(d)
		if !ok || player == "" {
			continue
		}
		if _, seen := totals[player]; !seen {
			order = append(order, player)
		}
		totals[player] += value
	}
	out := make([]PlayerTotal, 0, len(order))
	for _, p := range order {
		out = append(out, PlayerTotal{Player: p, Total: totals[p]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopNByMargin filters matches to one result type and returns the n rows with
// the largest result margin. The sort is stable, so rows with equal margin
// keep their input order.
func TopNByMargin(matches []dataset.MatchRecord, result string, n int) []dataset.MatchRecord {
	candidates := make([]dataset.MatchRecord, 0)
	for _, m := range matches {
		if m.Result == result {
			candidates = append(candidates, m)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ResultMargin > candidates[j].ResultMargin
	})
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// SeasonCount is one (season, matches) pair.
type SeasonCount struct {
	Season string
	Count  int
}

// CountBySeason groups matches by season and counts rows, ordered by season
// ascending.
func CountBySeason(matches []dataset.MatchRecord) []SeasonCount {
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.Season]++
	}
	seasons := make([]string, 0, len(counts))
	for s := range counts {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)
	out := make([]SeasonCount, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, SeasonCount{Season: s, Count: counts[s]})
	}
	return out
}

// TossOutcomeCounts counts how often the toss winner also won the match,
// mapped to "Yes"/"No" categories. When excludeNoResult is set, matches with
// no winner are left out entirely instead of being miscounted as toss losses.
func TossOutcomeCounts(matches []dataset.MatchRecord, excludeNoResult bool) []ValueCount {
	outcomes := make([]string, 0, len(matches))
	for _, m := range matches {
		if excludeNoResult && m.Winner == "" {
			continue
		}
		if m.TossWinner != "" && m.TossWinner == m.Winner {
			outcomes = append(outcomes, "Yes")
		} else {
			outcomes = append(outcomes, "No")
		}
	}
	return ValueCounts(outcomes)
}

// Summarize computes the KPI scalars over an already-filtered match set.
func Summarize(matches []dataset.MatchRecord) KPISummary {
	venues := make(map[string]struct{})
	cities := make(map[string]struct{})
	seasons := make(map[string]struct{})
	for _, m := range matches {
		if m.Venue != "" {
			venues[m.Venue] = struct{}{}
		}
		if m.City != "" {
			cities[m.City] = struct{}{}
		}
		if m.Season != "" {
			seasons[m.Season] = struct{}{}
		}
	}
	return KPISummary{
		TotalMatches:    len(matches),
		DistinctVenues:  len(venues),
		DistinctCities:  len(cities),
		DistinctSeasons: len(seasons),
	}
}
