package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// ReportBuilder recomputes the full derived table set from each snapshot it
// receives and emits one JSON message per table, tagged with the table name
// and chart kind so sinks can route without decoding.
type ReportBuilder struct {
	opts       ReportOptions
	processors []Processor
	mu         sync.Mutex
	stats      struct {
		ReportsBuilt   uint64
		TablesEmitted  uint64
		LastReportTime time.Time
	}
}

func NewReportBuilder(config map[string]interface{}) (*ReportBuilder, error) {
	opts := ReportOptions{}

	if topN, ok := getIntValue(config["top_n"]); ok {
		if topN < 1 {
			return nil, fmt.Errorf("top_n must be positive, got %d", topN)
		}
		opts.TopN = topN
	}
	if include, ok := config["include_no_result"].(bool); ok {
		opts.IncludeNoResult = include
	}
	if include, ok := config["include_raw_table"].(bool); ok {
		opts.IncludeRawTable = include
	}

	return &ReportBuilder{opts: opts}, nil
}

func (p *ReportBuilder) Subscribe(processor Processor) {
	p.processors = append(p.processors, processor)
}

func (p *ReportBuilder) Process(ctx context.Context, msg Message) error {
	snapshot, err := ExtractSnapshot(msg)
	if err != nil {
		return err
	}

	report := BuildReport(snapshot, p.opts)
	log.Printf("ReportBuilder: built %d tables for filter season=%q team=%q",
		len(report.Tables), report.Filter.Season, report.Filter.Team)

	for _, table := range report.Tables {
		payload, err := json.Marshal(table)
		if err != nil {
			return fmt.Errorf("error marshaling table %s: %w", table.Name, err)
		}
		out := Message{
			Payload: payload,
			Metadata: map[string]interface{}{
				MetaTableName: table.Name,
				MetaChartKind: string(table.Kind),
			},
		}
		for _, proc := range p.processors {
			if err := proc.Process(ctx, out); err != nil {
				return fmt.Errorf("error in processor chain for table %s: %w", table.Name, err)
			}
		}
	}

	p.mu.Lock()
	p.stats.ReportsBuilt++
	p.stats.TablesEmitted += uint64(len(report.Tables))
	p.stats.LastReportTime = time.Now()
	p.mu.Unlock()

	return nil
}

// GetStats returns processing counters for diagnostics.
func (p *ReportBuilder) GetStats() (reports, tables uint64, last time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.ReportsBuilt, p.stats.TablesEmitted, p.stats.LastReportTime
}

// getIntValue safely converts YAML-decoded numeric config values to int.
func getIntValue(v interface{}) (int, bool) {
	switch i := v.(type) {
	case int:
		return i, true
	case int64:
		return int(i), true
	case float64:
		return int(i), true
	}
	return 0, false
}
