package main

import (
	"fmt"

	"github.com/fieldside/cricket-pipeline-workflow/consumer"
	"github.com/fieldside/cricket-pipeline-workflow/internal/cli/runner"
	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// Factory functions handed to the CLI runner. Every component a pipeline
// configuration can name is registered here.

func CreateSourceAdapterFunc(sourceConfig runner.SourceConfig) (runner.SourceAdapter, error) {
	switch sourceConfig.Type {
	case "CSVSourceAdapter":
		return NewCSVSourceAdapter(sourceConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceConfig.Type)
	}
}

func CreateProcessorFunc(processorConfig processor.ProcessorConfig) (processor.Processor, error) {
	switch processorConfig.Type {
	case "FilterMatches":
		return processor.NewFilterMatches(processorConfig.Config)
	case "ReportBuilder":
		return processor.NewReportBuilder(processorConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported processor type: %s", processorConfig.Type)
	}
}

func CreateConsumerFunc(consumerConfig consumer.ConsumerConfig) (processor.Processor, error) {
	switch consumerConfig.Type {
	case "SaveToStdout", "StdoutConsumer":
		return consumer.NewStdoutConsumer(), nil
	case "SaveToSQLite":
		return consumer.NewSaveToSQLite(consumerConfig.Config)
	case "SaveToDuckDB":
		return consumer.NewSaveToDuckDB(consumerConfig.Config)
	case "SaveToPostgreSQL":
		return consumer.NewSaveToPostgreSQL(consumerConfig.Config)
	case "SaveToExcel":
		return consumer.NewSaveToExcel(consumerConfig.Config)
	case "SaveToRedis":
		return consumer.NewSaveToRedis(consumerConfig.Config)
	case "Dashboard":
		return consumer.NewDashboard(consumerConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported consumer type: %s", consumerConfig.Type)
	}
}
