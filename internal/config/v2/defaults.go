package v2

// componentDefaults are overlaid under user config so the minimal v2 files
// stay minimal. User values always win.
var componentDefaults = map[string]map[string]interface{}{
	"CSVSourceAdapter": {
		"matches_path":    "matches.csv",
		"deliveries_path": "deliveries.csv",
	},
	"ReportBuilder": {
		"top_n": 10,
	},
	"SaveToSQLite": {
		"db_path": "cricket_reports.sqlite",
	},
	"SaveToDuckDB": {
		"db_path": "cricket_reports.duckdb",
	},
	"SaveToRedis": {
		"key_prefix": "cricket:report:",
	},
	"Dashboard": {
		"port":    "8080",
		"ws_path": "/ws",
	},
}

// ApplyDefaults merges component defaults under the given config.
func ApplyDefaults(componentType string, config map[string]interface{}) map[string]interface{} {
	defaults := componentDefaults[componentType]
	if len(defaults) == 0 && len(config) == 0 {
		return map[string]interface{}{}
	}
	merged := make(map[string]interface{}, len(defaults)+len(config))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range config {
		merged[key] = value
	}
	return merged
}
