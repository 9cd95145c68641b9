package main

import (
	"context"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// SourceAdapter produces the messages a pipeline runs on. For this workflow
// that means loading the static CSV datasets and emitting them as a snapshot.
type SourceAdapter interface {
	Run(context.Context) error
	Subscribe(processor.Processor)
}
