package v2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseV2Minimal(t *testing.T) {
	yaml := `
source: csv
sink:
  - stdout
`
	result, err := Parse("test.yaml", []byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, FormatV2, result.Format)

	pipeline, ok := result.Config.Pipelines["default"]
	require.True(t, ok)

	assert.Equal(t, "CSVSourceAdapter", pipeline.Source.Type)
	assert.Equal(t, "matches.csv", pipeline.Source.Config["matches_path"])

	// Without a process section the report builder is wired implicitly.
	require.Len(t, pipeline.Processors, 1)
	assert.Equal(t, "ReportBuilder", pipeline.Processors[0].Type)
	assert.Equal(t, 10, pipeline.Processors[0].Config["top_n"])
	assert.Contains(t, result.Warnings[0], "report builder")

	require.Len(t, pipeline.Consumers, 1)
	assert.Equal(t, "SaveToStdout", pipeline.Consumers[0].Type)
}

func TestParseV2FullPipeline(t *testing.T) {
	yaml := `
name: season-report
source:
  type: csv
  matches_path: data/matches.csv
process:
  - type: filter
    season: "2020"
  - type: report
    top_n: 5
sink:
  - stdout
  - type: sqlite
    db_path: out.sqlite
`
	result, err := Parse("test.yaml", []byte(yaml))
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	pipeline, ok := result.Config.Pipelines["season-report"]
	require.True(t, ok)

	// User values win over defaults.
	assert.Equal(t, "data/matches.csv", pipeline.Source.Config["matches_path"])
	assert.Equal(t, "deliveries.csv", pipeline.Source.Config["deliveries_path"])

	require.Len(t, pipeline.Processors, 2)
	assert.Equal(t, "FilterMatches", pipeline.Processors[0].Type)
	assert.Equal(t, "2020", pipeline.Processors[0].Config["season"])
	assert.Equal(t, "ReportBuilder", pipeline.Processors[1].Type)
	assert.Equal(t, 5, pipeline.Processors[1].Config["top_n"])

	require.Len(t, pipeline.Consumers, 2)
	assert.Equal(t, "SaveToSQLite", pipeline.Consumers[1].Type)
	assert.Equal(t, "out.sqlite", pipeline.Consumers[1].Config["db_path"])
}

func TestParseV2DashboardDefaultsToPassThrough(t *testing.T) {
	yaml := `
source: csv
sink: dashboard
`
	result, err := Parse("test.yaml", []byte(yaml))
	require.NoError(t, err)

	pipeline := result.Config.Pipelines["default"]
	// A dashboard wants the snapshot, not prerendered tables.
	require.Len(t, pipeline.Processors, 1)
	assert.Equal(t, "FilterMatches", pipeline.Processors[0].Type)

	// A dashboard next to a table sink still needs explicit processors, so
	// the report default applies.
	yaml = `
source: csv
sink:
  - dashboard
  - stdout
`
	result, err = Parse("test.yaml", []byte(yaml))
	require.NoError(t, err)
	pipeline = result.Config.Pipelines["default"]
	require.Len(t, pipeline.Processors, 1)
	assert.Equal(t, "ReportBuilder", pipeline.Processors[0].Type)
}

func TestParseV2UnknownTopLevelKeyWarns(t *testing.T) {
	yaml := `
source: csv
sink: stdout
sinks: typo-section
`
	result, err := Parse("test.yaml", []byte(yaml))
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)

	assert.Contains(t, result.Warnings, `ignoring unknown top-level key "sinks"`)
}

func TestParseV2MissingSections(t *testing.T) {
	_, err := Parse("test.yaml", []byte("sink: stdout\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")

	_, err = Parse("test.yaml", []byte("source: csv\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink")
}

func TestParseV2ComponentMissingType(t *testing.T) {
	yaml := `
source:
  matches_path: data/matches.csv
sink: stdout
`
	_, err := Parse("test.yaml", []byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'type'")
}

func TestParseLegacy(t *testing.T) {
	yaml := `
pipelines:
  Reports:
    source:
      type: CSVSourceAdapter
      config:
        matches_path: data/matches.csv
    processors:
      - type: FilterMatches
        config:
          team: "Chennai Super Kings"
      - type: ReportBuilder
    consumers:
      - type: SaveToStdout
`
	result, err := Parse("legacy.yaml", []byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, FormatLegacy, result.Format)

	pipeline, ok := result.Config.Pipelines["Reports"]
	require.True(t, ok)
	assert.Equal(t, "CSVSourceAdapter", pipeline.Source.Type)
	assert.Equal(t, "Chennai Super Kings", pipeline.Processors[0].Config["team"])
	// Defaults apply to legacy configs too.
	assert.Equal(t, 10, pipeline.Processors[1].Config["top_n"])
}

func TestParseValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown consumer type",
			yaml: "source: csv\nsink: kafka\n",
			want: `unknown consumer type "kafka"`,
		},
		{
			name: "excel requires file_path",
			yaml: "source: csv\nsink: excel\n",
			want: `missing required config key "file_path"`,
		},
		{
			name: "redis requires address",
			yaml: "source: csv\nsink: redis\n",
			want: `missing required config key "redis_address"`,
		},
		{
			name: "postgres requires connection settings",
			yaml: "source: csv\nsink:\n  - type: postgres\n    host: localhost\n",
			want: "missing required config key",
		},
		{
			name: "empty file",
			yaml: "",
			want: "empty configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.yaml", []byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		role ComponentRole
		in   string
		want string
	}{
		{ComponentSource, "csv", "CSVSourceAdapter"},
		{ComponentSource, "CSV", "CSVSourceAdapter"},
		{ComponentProcessor, "filter", "FilterMatches"},
		{ComponentProcessor, "report", "ReportBuilder"},
		{ComponentConsumer, "postgres", "SaveToPostgreSQL"},
		{ComponentConsumer, "web", "Dashboard"},
		{ComponentConsumer, "SaveToSQLite", "SaveToSQLite"},
		{ComponentConsumer, "SomethingElse", "SomethingElse"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveAlias(tt.role, tt.in), "%s/%s", tt.role, tt.in)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("MATCHES_FILE", "/data/matches.csv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "source:\n  type: csv\n  matches_path: ${MATCHES_FILE}\nsink: stdout\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	result, err := Load(path)
	require.NoError(t, err)

	pipeline := result.Config.Pipelines["default"]
	assert.Equal(t, "/data/matches.csv", pipeline.Source.Config["matches_path"])
	assert.Equal(t, path, result.SourceFile)
}
