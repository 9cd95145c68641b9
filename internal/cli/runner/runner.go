package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/fieldside/cricket-pipeline-workflow/consumer"
	"github.com/fieldside/cricket-pipeline-workflow/pkg/pipeline"
	"github.com/fieldside/cricket-pipeline-workflow/processor"

	v2config "github.com/fieldside/cricket-pipeline-workflow/internal/config/v2"
)

type Options struct {
	ConfigFile string
	Verbose    bool
}

// Factories are the component constructors registered by package main.
type Factories struct {
	CreateSourceAdapter func(SourceConfig) (SourceAdapter, error)
	CreateProcessor     func(processor.ProcessorConfig) (processor.Processor, error)
	CreateConsumer      func(consumer.ConsumerConfig) (processor.Processor, error)
}

type Runner struct {
	opts      Options
	factories Factories
}

type Config struct {
	Pipelines map[string]PipelineConfig `yaml:"pipelines"`
}

type PipelineConfig struct {
	Name       string                      `yaml:"name"`
	Source     SourceConfig                `yaml:"source"`
	Processors []processor.ProcessorConfig `yaml:"processors"`
	Consumers  []consumer.ConsumerConfig   `yaml:"consumers"`
}

type SourceConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

type SourceAdapter interface {
	Run(context.Context) error
	Subscribe(processor.Processor)
}

func New(opts Options, factories Factories) *Runner {
	return &Runner{
		opts:      opts,
		factories: factories,
	}
}

// loadConfig reads the pipeline configuration, accepting both the legacy
// `pipelines:` map format and the simplified v2 format with type aliases.
func (r *Runner) loadConfig() (*Config, error) {
	result, err := v2config.Load(r.opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	for _, warning := range result.Warnings {
		log.Printf("Config warning: %s", warning)
	}
	if r.opts.Verbose {
		log.Printf("Loaded %s format configuration with %d pipeline(s)",
			result.Format, len(result.Config.Pipelines))
	}

	config := &Config{Pipelines: make(map[string]PipelineConfig, len(result.Config.Pipelines))}
	for name, p := range result.Config.Pipelines {
		config.Pipelines[name] = convertPipeline(name, p)
	}
	return config, nil
}

func convertPipeline(name string, p v2config.Pipeline) PipelineConfig {
	config := PipelineConfig{
		Name: name,
		Source: SourceConfig{
			Type:   p.Source.Type,
			Config: p.Source.Config,
		},
	}
	for _, proc := range p.Processors {
		config.Processors = append(config.Processors, processor.ProcessorConfig{
			Type:   proc.Type,
			Config: proc.Config,
		})
	}
	for _, cons := range p.Consumers {
		config.Consumers = append(config.Consumers, consumer.ConsumerConfig{
			Type:   cons.Type,
			Config: cons.Config,
		})
	}
	return config
}

// Validate loads and checks the configuration without running anything.
func (r *Runner) Validate() error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}
	if len(config.Pipelines) == 0 {
		return fmt.Errorf("configuration defines no pipelines")
	}
	for name, pipelineConfig := range config.Pipelines {
		if pipelineConfig.Source.Type == "" {
			return fmt.Errorf("pipeline %s: missing source type", name)
		}
		if len(pipelineConfig.Consumers) == 0 {
			return fmt.Errorf("pipeline %s: no consumers configured, the report would go nowhere", name)
		}
	}
	return nil
}

func (r *Runner) Run(ctx context.Context) error {
	config, err := r.loadConfig()
	if err != nil {
		return err
	}

	for name, pipelineConfig := range config.Pipelines {
		log.Printf("Starting pipeline: %s", name)
		if err := r.setupPipeline(ctx, pipelineConfig); err != nil {
			if ctx.Err() != nil {
				log.Printf("Pipeline %s stopped: %v", name, ctx.Err())
				continue
			}
			return fmt.Errorf("error in pipeline %s: %w", name, err)
		}
	}

	log.Printf("All pipelines finished.")
	return nil
}

func (r *Runner) setupPipeline(ctx context.Context, pipelineConfig PipelineConfig) error {
	source, err := r.factories.CreateSourceAdapter(pipelineConfig.Source)
	if err != nil {
		return fmt.Errorf("error creating source: %w", err)
	}

	processors := make([]processor.Processor, len(pipelineConfig.Processors))
	for i, procConfig := range pipelineConfig.Processors {
		proc, err := r.factories.CreateProcessor(procConfig)
		if err != nil {
			return fmt.Errorf("error creating processor %s: %w", procConfig.Type, err)
		}
		processors[i] = proc
	}

	consumers := make([]processor.Processor, len(pipelineConfig.Consumers))
	for i, consConfig := range pipelineConfig.Consumers {
		cons, err := r.factories.CreateConsumer(consConfig)
		if err != nil {
			return fmt.Errorf("error creating consumer %s: %w", consConfig.Type, err)
		}
		consumers[i] = cons
	}

	pipeline.BuildProcessorChain(processors, consumers)

	if head := pipeline.Head(processors, consumers); head != nil {
		source.Subscribe(head)
	}

	return source.Run(ctx)
}
