package v2

import "strings"

// ComponentRole distinguishes the three pipeline positions so the same alias
// can never resolve to the wrong kind of component.
type ComponentRole string

const (
	ComponentSource    ComponentRole = "source"
	ComponentProcessor ComponentRole = "processor"
	ComponentConsumer  ComponentRole = "consumer"
)

var sourceAliases = map[string]string{
	"csv":   "CSVSourceAdapter",
	"files": "CSVSourceAdapter",
}

var processorAliases = map[string]string{
	"filter":        "FilterMatches",
	"match-filter":  "FilterMatches",
	"report":        "ReportBuilder",
	"reportbuilder": "ReportBuilder",
}

var consumerAliases = map[string]string{
	"stdout":     "SaveToStdout",
	"sqlite":     "SaveToSQLite",
	"duckdb":     "SaveToDuckDB",
	"postgres":   "SaveToPostgreSQL",
	"postgresql": "SaveToPostgreSQL",
	"excel":      "SaveToExcel",
	"xlsx":       "SaveToExcel",
	"redis":      "SaveToRedis",
	"dashboard":  "Dashboard",
	"web":        "Dashboard",
}

// ResolveAlias maps a short alias to its canonical component type. Names that
// are not aliases pass through unchanged, so the legacy full type names keep
// working in v2 files.
func ResolveAlias(role ComponentRole, typeName string) string {
	key := strings.ToLower(strings.TrimSpace(typeName))
	var table map[string]string
	switch role {
	case ComponentSource:
		table = sourceAliases
	case ComponentProcessor:
		table = processorAliases
	case ComponentConsumer:
		table = consumerAliases
	}
	if canonical, ok := table[key]; ok {
		return canonical
	}
	return strings.TrimSpace(typeName)
}

// KnownTypes lists the canonical component types per role, for validation.
func KnownTypes(role ComponentRole) []string {
	switch role {
	case ComponentSource:
		return []string{"CSVSourceAdapter"}
	case ComponentProcessor:
		return []string{"FilterMatches", "ReportBuilder"}
	case ComponentConsumer:
		return []string{
			"SaveToStdout", "StdoutConsumer", "SaveToSQLite", "SaveToDuckDB",
			"SaveToPostgreSQL", "SaveToExcel", "SaveToRedis", "Dashboard",
		}
	}
	return nil
}
