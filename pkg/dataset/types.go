package dataset

import (
	"sort"
	"time"
)

// Result types recorded in the match table.
const (
	ResultRuns     = "runs"
	ResultWickets  = "wickets"
	ResultTie      = "tie"
	ResultNoResult = "no result"
)

// DismissalRunOut is the one dismissal kind that is never credited to the bowler.
const DismissalRunOut = "run out"

// MatchRecord is one played match from matches.csv.
type MatchRecord struct {
	Season        string    `json:"season"`
	Date          time.Time `json:"date"`
	City          string    `json:"city"`
	Venue         string    `json:"venue"`
	Team1         string    `json:"team1"`
	Team2         string    `json:"team2"`
	TossWinner    string    `json:"toss_winner"`
	TossDecision  string    `json:"toss_decision"`
	Winner        string    `json:"winner"` // empty for no-result matches
	Result        string    `json:"result"`
	ResultMargin  int       `json:"result_margin"`
	PlayerOfMatch string    `json:"player_of_match"`
}

// DeliveryRecord is one ball bowled from deliveries.csv.
type DeliveryRecord struct {
	MatchID       string `json:"match_id"`
	Batter        string `json:"batter"`
	Bowler        string `json:"bowler"`
	BatterRuns    int    `json:"batsman_runs"`
	IsWicket      bool   `json:"is_wicket"`
	DismissalKind string `json:"dismissal_kind"`
}

// Dataset holds both input tables. It is loaded once per process and never
// mutated afterwards, so it is safe to share across goroutines.
type Dataset struct {
	Matches    []MatchRecord
	Deliveries []DeliveryRecord
}

// Snapshot is the payload that flows through the pipeline: the cached dataset
// plus the filter that has been (or is to be) applied to the match table.
type Snapshot struct {
	Dataset *Dataset
	Filter  Filter
}

// Seasons returns the distinct season values present in the match table,
// sorted ascending.
func (d *Dataset) Seasons() []string {
	return distinct(d.Matches, func(m MatchRecord) string { return m.Season })
}

// Teams returns the distinct team identifiers appearing as team1 or team2,
// sorted ascending.
func (d *Dataset) Teams() []string {
	seen := make(map[string]struct{})
	for _, m := range d.Matches {
		seen[m.Team1] = struct{}{}
		seen[m.Team2] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		if t != "" {
			teams = append(teams, t)
		}
	}
	sort.Strings(teams)
	return teams
}

func distinct(matches []MatchRecord, key func(MatchRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range matches {
		k := key(m)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
