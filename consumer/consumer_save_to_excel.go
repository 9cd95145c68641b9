package consumer

import (
	"context"
	"fmt"
	"log"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
	"github.com/fieldside/cricket-pipeline-workflow/utils"
)

// SaveToExcel exports the report as a workbook with one sheet per derived
// table, for people who want the numbers without a database.
type SaveToExcel struct {
	filePath   string
	writer     *utils.ExcelWriter
	processors []processor.Processor
}

func NewSaveToExcel(config map[string]interface{}) (*SaveToExcel, error) {
	filePath, ok := config["file_path"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid configuration: missing 'file_path'")
	}

	writer, err := utils.NewExcelWriter(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel writer: %w", err)
	}

	return &SaveToExcel{
		filePath: filePath,
		writer:   writer,
	}, nil
}

func (c *SaveToExcel) Subscribe(processor processor.Processor) {
	c.processors = append(c.processors, processor)
}

func (c *SaveToExcel) Process(ctx context.Context, msg processor.Message) error {
	table, err := processor.ExtractChartTable(msg)
	if err != nil {
		return err
	}

	if err := c.writer.WriteSheet(table.Name, table.Columns, table.Rows); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", table.Name, err)
	}

	if err := c.writer.Save(); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	log.Printf("SaveToExcel: wrote sheet %s (%d rows) to %s", table.Name, len(table.Rows), c.filePath)
	return nil
}

func (c *SaveToExcel) Close() error {
	if c.writer != nil {
		return c.writer.Close()
	}
	return nil
}
