package main

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
	"github.com/fieldside/cricket-pipeline-workflow/pkg/manifest"
	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// CSVSourceAdapter loads the match and delivery tables from disk and emits
// the resulting snapshot to its subscribers. The load is the only I/O in the
// pipeline; a missing file or column fails the run immediately.
//
// A batch pipeline emits once and returns. With serve enabled (the dashboard
// case) the adapter stays alive until the context is cancelled, optionally
// re-reading the files on an interval so a refreshed export shows up without
// a restart.
type CSVSourceAdapter struct {
	config     CSVSourceConfig
	recorder   *manifest.Recorder
	processors []processor.Processor
}

type CSVSourceConfig struct {
	MatchesPath    string
	DeliveriesPath string
	Serve          bool
	ReloadInterval time.Duration
	ManifestDir    string
}

func NewCSVSourceAdapter(config map[string]interface{}) (SourceAdapter, error) {
	csvConfig := CSVSourceConfig{
		MatchesPath:    "matches.csv",
		DeliveriesPath: "deliveries.csv",
	}
	if path, ok := config["matches_path"].(string); ok && path != "" {
		csvConfig.MatchesPath = path
	}
	if path, ok := config["deliveries_path"].(string); ok && path != "" {
		csvConfig.DeliveriesPath = path
	}
	if serve, ok := config["serve"].(bool); ok {
		csvConfig.Serve = serve
	}
	if interval, ok := config["reload_interval"].(string); ok && interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid reload_interval %q", interval)
		}
		if d <= 0 {
			return nil, errors.Errorf("reload_interval must be positive, got %s", interval)
		}
		csvConfig.ReloadInterval = d
		csvConfig.Serve = true
	}
	if dir, ok := config["manifest_dir"].(string); ok && dir != "" {
		csvConfig.ManifestDir = dir
	}

	adapter := &CSVSourceAdapter{config: csvConfig}
	if csvConfig.ManifestDir != "" {
		rec, err := manifest.NewRecorder(csvConfig.ManifestDir, "csv", config)
		if err != nil {
			return nil, errors.Wrap(err, "creating manifest recorder")
		}
		adapter.recorder = rec
		if prev, err := rec.Previous(); err == nil {
			log.Printf("CSVSourceAdapter: previous load at %s (%d matches, %d deliveries)",
				prev.CompletedAt.Format(time.RFC3339), prev.MatchRows, prev.DeliveryRows)
		}
	}

	return adapter, nil
}

func (a *CSVSourceAdapter) Subscribe(p processor.Processor) {
	a.processors = append(a.processors, p)
}

func (a *CSVSourceAdapter) Run(ctx context.Context) error {
	if err := a.loadAndEmit(ctx); err != nil {
		return err
	}
	if !a.config.Serve {
		return nil
	}

	if a.config.ReloadInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(a.config.ReloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.loadAndEmit(ctx); err != nil {
				// Keep serving the previous snapshot; a broken re-export
				// should not take the dashboard down.
				log.Printf("CSVSourceAdapter: reload failed: %v", err)
			}
		}
	}
}

func (a *CSVSourceAdapter) loadAndEmit(ctx context.Context) error {
	start := time.Now()
	ds, err := dataset.Load(a.config.MatchesPath, a.config.DeliveriesPath)
	if err != nil {
		if a.recorder != nil {
			a.recorder.RecordError()
		}
		return errors.Wrap(err, "loading input datasets")
	}
	log.Printf("CSVSourceAdapter: load completed in %s", time.Since(start))

	if a.recorder != nil {
		if err := a.recorder.Complete(len(ds.Matches), len(ds.Deliveries)); err != nil {
			// Manifests are advisory; a failed write never fails a load.
			log.Printf("CSVSourceAdapter: manifest write failed: %v", err)
		}
	}

	snapshot := &dataset.Snapshot{Dataset: ds}
	msg := processor.Message{Payload: snapshot}

	for _, p := range a.processors {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.Process(ctx, msg); err != nil {
			return errors.Wrap(err, "processing snapshot")
		}
	}
	return nil
}
