package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// StdoutConsumer writes each incoming chart table (or any other payload) to
// stdout as one JSON line. Mostly useful for piping reports into jq or for
// eyeballing a pipeline during development.
type StdoutConsumer struct{}

// NewStdoutConsumer creates a new StdoutConsumer instance.
func NewStdoutConsumer() *StdoutConsumer {
	return &StdoutConsumer{}
}

// Process implements the processor.Processor interface.
func (s *StdoutConsumer) Process(ctx context.Context, msg processor.Message) error {
	var output []byte
	switch payload := msg.Payload.(type) {
	case []byte:
		output = payload
	default:
		var err error
		output, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("StdoutConsumer: error marshaling payload: %w", err)
		}
	}

	_, err := os.Stdout.Write(append(output, '\n'))
	return err
}

// Subscribe implements the Processor interface. StdoutConsumer is a sink, so
// this is a no-op.
func (s *StdoutConsumer) Subscribe(proc processor.Processor) {
}
