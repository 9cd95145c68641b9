package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fieldside/cricket-pipeline-workflow/utils"
)

var matchColumns = []string{
	"season", "date", "city", "venue", "team1", "team2",
	"toss_winner", "toss_decision", "winner", "result", "result_margin",
	"player_of_match",
}

var deliveryColumns = []string{
	"match_id", "batter", "bowler", "batsman_runs", "is_wicket", "dismissal_kind",
}

// Load reads both input files and returns the cached dataset. It is the only
// I/O the pipeline performs; everything downstream is pure computation over
// the returned tables.
func Load(matchesPath, deliveriesPath string) (*Dataset, error) {
	matches, err := LoadMatches(matchesPath)
	if err != nil {
		return nil, err
	}
	deliveries, err := LoadDeliveries(deliveriesPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded dataset: %d matches, %d deliveries", len(matches), len(deliveries))
	return &Dataset{Matches: matches, Deliveries: deliveries}, nil
}

// LoadMatches reads the match table, parsing the date column as a calendar date.
func LoadMatches(path string) ([]MatchRecord, error) {
	var matches []MatchRecord
	err := readTable(path, matchColumns, func(row rowReader) error {
		m := MatchRecord{
			Season:        row.get("season"),
			City:          row.get("city"),
			Venue:         row.get("venue"),
			Team1:         row.get("team1"),
			Team2:         row.get("team2"),
			TossWinner:    row.get("toss_winner"),
			TossDecision:  row.get("toss_decision"),
			Winner:        normalizeMissing(row.get("winner")),
			Result:        row.get("result"),
			PlayerOfMatch: normalizeMissing(row.get("player_of_match")),
		}
		if v := row.get("date"); v != "" {
			date, err := utils.ParseDate(v)
			if err != nil {
				return err
			}
			m.Date = date
		}
		margin, err := parseOptionalInt(row.get("result_margin"))
		if err != nil {
			return fmt.Errorf("result_margin: %w", err)
		}
		m.ResultMargin = margin
		matches = append(matches, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// LoadDeliveries reads the ball-by-ball table.
func LoadDeliveries(path string) ([]DeliveryRecord, error) {
	var deliveries []DeliveryRecord
	err := readTable(path, deliveryColumns, func(row rowReader) error {
		runs, err := parseOptionalInt(row.get("batsman_runs"))
		if err != nil {
			return fmt.Errorf("batsman_runs: %w", err)
		}
		wicket, err := parseOptionalInt(row.get("is_wicket"))
		if err != nil {
			return fmt.Errorf("is_wicket: %w", err)
		}
		deliveries = append(deliveries, DeliveryRecord{
			MatchID:       row.get("match_id"),
			Batter:        row.get("batter"),
			Bowler:        row.get("bowler"),
			BatterRuns:    runs,
			IsWicket:      wicket != 0,
			DismissalKind: normalizeMissing(row.get("dismissal_kind")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

type rowReader struct {
	index  map[string]int
	record []string
}

func (r rowReader) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// readTable streams a delimited file, validates the header against the
// required column set, and invokes fn once per data row. Column order in the
// file does not matter; extra columns are ignored.
func readTable(path string, required []string, fn func(rowReader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // trailing columns vary between exports

	header, err := reader.Read()
	if err != nil {
		return &LoadError{Path: path, Err: fmt.Errorf("reading header: %w", err)}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Path: path, Missing: missing}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &LoadError{Path: path, Err: fmt.Errorf("row %d: %w", line+1, err)}
		}
		line++
		if err := fn(rowReader{index: index, record: record}); err != nil {
			return &LoadError{Path: path, Err: fmt.Errorf("row %d: %w", line, err)}
		}
	}
}

// parseOptionalInt tolerates the blank and "NA" values the dataset uses for
// rows where the column does not apply.
func parseOptionalInt(v string) (int, error) {
	if v == "" || strings.EqualFold(v, "na") {
		return 0, nil
	}
	// Some exports serialize integral columns as floats ("14.0").
	if i := strings.IndexByte(v, '.'); i >= 0 {
		if rest := strings.TrimLeft(v[i+1:], "0"); rest == "" {
			v = v[:i]
		}
	}
	return strconv.Atoi(v)
}

func normalizeMissing(v string) string {
	if strings.EqualFold(v, "na") {
		return ""
	}
	return v
}
