package manifest

import "time"

// Manifest records the outcome of the most recent dataset load for a source.
type Manifest struct {
	// Version of the manifest format (for future compatibility)
	Version string `json:"version"`

	// Source identification
	Source string `json:"source"`

	// Configuration hash to detect config changes between runs
	ConfigHash string `json:"config_hash"`

	// Row counts from the last successful load
	MatchRows    int `json:"match_rows"`
	DeliveryRows int `json:"delivery_rows"`

	// Metadata
	CompletedAt time.Time `json:"completed_at"`

	// Optional statistics
	Statistics *Stats `json:"statistics,omitempty"`
}

// Stats contains optional load statistics
type Stats struct {
	TotalLoads    uint64 `json:"total_loads"`
	TotalErrors   uint64 `json:"total_errors"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ManifestVersion is the current manifest format version
const ManifestVersion = "1.0"
