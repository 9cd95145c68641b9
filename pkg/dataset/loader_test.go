package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const matchesCSV = `id,season,city,date,venue,team1,team2,toss_winner,toss_decision,winner,result,result_margin,player_of_match
1,2020,Mumbai,2020-04-05,Wankhede Stadium,Mumbai Indians,Chennai Super Kings,Mumbai Indians,bat,Mumbai Indians,runs,23.0,RG Sharma
2,2020,Dubai,2020-04-08,Dubai International Stadium,Delhi Capitals,Kings XI Punjab,Kings XI Punjab,field,Delhi Capitals,wickets,7,SS Iyer
3,2021,Chennai,09-04-2021,MA Chidambaram Stadium,Chennai Super Kings,Royal Challengers Bangalore,Chennai Super Kings,bat,NA,no result,NA,NA
`

func TestLoadMatches(t *testing.T) {
	path := writeCSV(t, "matches.csv", matchesCSV)

	matches, err := LoadMatches(path)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	first := matches[0]
	assert.Equal(t, "2020", first.Season)
	assert.Equal(t, "Wankhede Stadium", first.Venue)
	assert.Equal(t, "Mumbai Indians", first.Winner)
	assert.Equal(t, 23, first.ResultMargin, "float-serialized margin coerced to int")
	assert.Equal(t, time.Date(2020, 4, 5, 0, 0, 0, 0, time.UTC), first.Date)

	// Day-first dates show up in older exports.
	assert.Equal(t, time.Date(2021, 4, 9, 0, 0, 0, 0, time.UTC), matches[2].Date)

	// NA normalizes to the empty string so no-result matches are detectable.
	assert.Equal(t, "", matches[2].Winner)
	assert.Equal(t, "", matches[2].PlayerOfMatch)
	assert.Equal(t, 0, matches[2].ResultMargin)
}

func TestLoadMatchesColumnOrderIrrelevant(t *testing.T) {
	path := writeCSV(t, "matches.csv",
		"winner,season,date,city,venue,team1,team2,toss_winner,toss_decision,result,result_margin,player_of_match\n"+
			"Mumbai Indians,2019,2019-05-12,Hyderabad,Rajiv Gandhi Stadium,Mumbai Indians,Chennai Super Kings,Mumbai Indians,bat,runs,1,JJ Bumrah\n")

	matches, err := LoadMatches(path)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Mumbai Indians", matches[0].Winner)
	assert.Equal(t, "2019", matches[0].Season)
}

func TestLoadMatchesMissingColumns(t *testing.T) {
	path := writeCSV(t, "matches.csv", "season,date,city\n2020,2020-04-05,Mumbai\n")

	_, err := LoadMatches(path)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, path, schemaErr.Path)
	assert.Contains(t, schemaErr.Missing, "winner")
	assert.Contains(t, schemaErr.Missing, "team1")
	assert.NotContains(t, schemaErr.Missing, "season")
}

func TestLoadMatchesMissingFile(t *testing.T) {
	_, err := LoadMatches(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, os.IsNotExist(errors.Unwrap(loadErr)))
}

func TestLoadMatchesBadMargin(t *testing.T) {
	path := writeCSV(t, "matches.csv",
		"season,date,city,venue,team1,team2,toss_winner,toss_decision,winner,result,result_margin,player_of_match\n"+
			"2020,2020-04-05,Mumbai,Wankhede,MI,CSK,MI,bat,MI,runs,not-a-number,RG Sharma\n")

	_, err := LoadMatches(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "result_margin")
}

func TestLoadDeliveries(t *testing.T) {
	path := writeCSV(t, "deliveries.csv",
		"match_id,inning,batter,bowler,batsman_runs,is_wicket,dismissal_kind\n"+
			"1,1,RG Sharma,DL Chahar,4,0,NA\n"+
			"1,1,RG Sharma,DL Chahar,0,1,caught\n"+
			"1,2,MS Dhoni,JJ Bumrah,0,1,run out\n")

	deliveries, err := LoadDeliveries(path)
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	assert.Equal(t, 4, deliveries[0].BatterRuns)
	assert.False(t, deliveries[0].IsWicket)
	assert.Equal(t, "", deliveries[0].DismissalKind)

	assert.True(t, deliveries[1].IsWicket)
	assert.Equal(t, "caught", deliveries[1].DismissalKind)
	assert.Equal(t, DismissalRunOut, deliveries[2].DismissalKind)
}

func TestLoad(t *testing.T) {
	matchesPath := writeCSV(t, "matches.csv", matchesCSV)
	deliveriesPath := writeCSV(t, "deliveries.csv",
		"match_id,batter,bowler,batsman_runs,is_wicket,dismissal_kind\n"+
			"1,RG Sharma,DL Chahar,6,0,\n")

	ds, err := Load(matchesPath, deliveriesPath)
	require.NoError(t, err)
	assert.Len(t, ds.Matches, 3)
	assert.Len(t, ds.Deliveries, 1)
}

func TestParseOptionalInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"NA", 0, false},
		{"na", 0, false},
		{"14", 14, false},
		{"14.0", 14, false},
		{"14.000", 14, false},
		{"14.5", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOptionalInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
