package consumer

import (
	"context"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// Consumer is a pipeline sink. Consumers implement the same contract as
// processors so they can sit at the end of a chain.
type Consumer interface {
	Process(context.Context, processor.Message) error
	Subscribe(processor.Processor)
}

type ConsumerConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}
