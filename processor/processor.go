package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldside/cricket-pipeline-workflow/pkg/dataset"
)

// Processor defines the interface for processing messages.
type Processor interface {
	Process(context.Context, Message) error
	Subscribe(Processor)
}

type ProcessorConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

// Message encapsulates the payload to be processed with optional metadata.
type Message struct {
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Metadata keys attached to chart table messages.
const (
	MetaTableName = "table"
	MetaChartKind = "chart_kind"
)

// ExtractSnapshot extracts a *dataset.Snapshot from a processor.Message.
func ExtractSnapshot(msg Message) (*dataset.Snapshot, error) {
	snapshot, ok := msg.Payload.(*dataset.Snapshot)
	if !ok {
		return nil, fmt.Errorf("expected *dataset.Snapshot, got %T", msg.Payload)
	}
	if snapshot.Dataset == nil {
		return nil, fmt.Errorf("snapshot carries no dataset")
	}
	return snapshot, nil
}

// ExtractChartTable decodes a chart table from a downstream JSON message.
func ExtractChartTable(msg Message) (*ChartTable, error) {
	payload, ok := msg.Payload.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected []byte payload, got %T", msg.Payload)
	}
	var table ChartTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("error decoding chart table: %w", err)
	}
	return &table, nil
}
