package consumer

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenRow(t *testing.T) {
	tests := []struct {
		name       string
		row        []interface{}
		wantLabel  string
		wantValue  float64
		wantSeason string
	}{
		{
			name:      "label and int count",
			row:       []interface{}{"Mumbai Indians", 5},
			wantLabel: "Mumbai Indians",
			wantValue: 5,
		},
		{
			name:      "json-decoded float count",
			row:       []interface{}{"Mumbai Indians", 5.0},
			wantLabel: "Mumbai Indians",
			wantValue: 5,
		},
		{
			name:       "margin row with season",
			row:        []interface{}{"Mumbai Indians", 146, "2017"},
			wantLabel:  "Mumbai Indians",
			wantValue:  146,
			wantSeason: "2017",
		},
		{
			name:      "string second column stays zero",
			row:       []interface{}{"2020", "2020-04-05"},
			wantLabel: "2020",
		},
		{
			name: "empty row",
			row:  []interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, value, season := flattenRow(tt.row)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantSeason, season)
		})
	}
}

func TestSaveToDuckDBProcess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := &SaveToDuckDB{db: db}
	table := sampleTable()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM chart_rows").
		WithArgs("wins_by_team", "2020", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO chart_rows").
		WithArgs("wins_by_team", "bar-horizontal", "2020", "", 1, "Mumbai Indians", 5.0, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chart_rows").
		WithArgs("wins_by_team", "bar-horizontal", "2020", "", 2, "Chennai Super Kings", 4.0, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sink.Process(context.Background(), tableMessage(t, table)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
