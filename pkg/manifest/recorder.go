package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recorder persists a load manifest for a named source adapter.
//
// The manifest is advisory: it lets operators check how fresh the data behind
// a long-running dashboard is, and it warns when the source configuration
// changed since the previous run. Failures to write a manifest are logged by
// callers but never fail a load.
type Recorder struct {
	directory  string
	source     string
	configHash string
	startTime  time.Time

	stats Stats
	mu    sync.RWMutex
}

// NewRecorder creates a manifest recorder writing into dir.
//
// The directory is created if it does not exist.
func NewRecorder(dir, source string, config interface{}) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("manifest directory cannot be empty")
	}
	if source == "" {
		return nil, fmt.Errorf("source name cannot be empty")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	return &Recorder{
		directory:  dir,
		source:     source,
		configHash: hashConfig(config),
		startTime:  time.Now(),
	}, nil
}

// Complete records a successful load with the given row counts.
func (r *Recorder) Complete(matchRows, deliveryRows int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalLoads++
	r.stats.UptimeSeconds = int64(time.Since(r.startTime).Seconds())

	m := Manifest{
		Version:      ManifestVersion,
		Source:       r.source,
		ConfigHash:   r.configHash,
		MatchRows:    matchRows,
		DeliveryRows: deliveryRows,
		CompletedAt:  time.Now(),
		Statistics:   &r.stats,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := WriteAtomic(r.path(), data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// RecordError counts a failed load attempt without touching the manifest file.
func (r *Recorder) RecordError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalErrors++
}

// Previous loads the manifest left by an earlier run, if any.
//
// A missing manifest is not an error worth stopping for; callers treat it as
// a first run. A config hash mismatch is logged as a warning only.
func (r *Recorder) Previous() (*Manifest, error) {
	path := r.path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no manifest found at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest (possibly corrupted): %w", err)
	}

	if m.Version == "" || m.Source == "" {
		return nil, fmt.Errorf("invalid manifest: missing required fields")
	}

	if m.ConfigHash != r.configHash {
		log.Printf("[WARN] Source configuration changed since last load (manifest: %s, current: %s)",
			m.ConfigHash, r.configHash)
	}

	return &m, nil
}

func (r *Recorder) path() string {
	return filepath.Join(r.directory, fmt.Sprintf("manifest-%s.json", r.source))
}

// hashConfig computes a short hash of the configuration for change detection
func hashConfig(config interface{}) string {
	if config == nil {
		return "no-config"
	}

	data, err := json.Marshal(config)
	if err != nil {
		return "hash-error"
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
