package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)

	headers := []string{"team", "wins"}
	rows := [][]interface{}{
		{"Mumbai Indians", 5},
		{"Chennai Super Kings", 4},
	}
	require.NoError(t, w.WriteSheet("wins_by_team", headers, rows))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("wins_by_team")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"team", "wins"},
		{"Mumbai Indians", "5"},
		{"Chennai Super Kings", "4"},
	}, got)

	// The default sheet is dropped once real content exists.
	idx, err := f.GetSheetIndex("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestExcelWriterRewritesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteSheet("toss_decision", []string{"decision", "count"}, [][]interface{}{
		{"bat", 10},
		{"field", 20},
	}))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	// Reopen and shrink the sheet; stale rows must not survive.
	w, err = NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteSheet("toss_decision", []string{"decision", "count"}, [][]interface{}{
		{"field", 31},
	}))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("toss_decision")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"decision", "count"},
		{"field", "31"},
	}, got)
}

func TestExcelWriterTruncatesLongSheetNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)

	long := "a_very_long_chart_name_that_exceeds_the_sheet_limit"
	require.NoError(t, w.WriteSheet(long, []string{"x"}, nil))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	idx, err := f.GetSheetIndex(long[:31])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)
}
