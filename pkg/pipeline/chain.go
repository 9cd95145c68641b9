package pipeline

import (
	"log"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// BuildProcessorChain wires a linear pipeline: each processor subscribes the
// next, and every consumer subscribes to the tail. With no processors at all,
// consumers hang directly off each other so a source can feed them through
// the first one.
func BuildProcessorChain(processors []processor.Processor, consumers []processor.Processor) {
	var tail processor.Processor
	for _, p := range processors {
		if tail != nil {
			tail.Subscribe(p)
			log.Printf("Chained %T -> %T", tail, p)
		}
		tail = p
	}

	if tail != nil {
		for _, c := range consumers {
			tail.Subscribe(c)
			log.Printf("Chained %T -> consumer %T", tail, c)
		}
		return
	}

	for i := 1; i < len(consumers); i++ {
		consumers[0].Subscribe(consumers[i])
		log.Printf("Chained consumer %T -> consumer %T", consumers[0], consumers[i])
	}
}

// Head returns the component a source should subscribe: the first processor,
// or the first consumer when the pipeline has no processing stage.
func Head(processors []processor.Processor, consumers []processor.Processor) processor.Processor {
	if len(processors) > 0 {
		return processors[0]
	}
	if len(consumers) > 0 {
		return consumers[0]
	}
	return nil
}
