package consumer

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// SaveToDuckDB lands the label/value rankings in a DuckDB file for ad-hoc
// analytical queries. Unlike the SQLite sink, this one flattens each chart
// into a single wide table so the data is directly queryable.
type SaveToDuckDB struct {
	db         *sql.DB
	processors []processor.Processor
}

func NewSaveToDuckDB(config map[string]interface{}) (*SaveToDuckDB, error) {
	dbPath, ok := config["db_path"].(string)
	if !ok {
		dbPath = "cricket_reports.duckdb"
	}

	db, err := sql.Open("duckdb", dbPath+"?access_mode=READ_WRITE")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DuckDB: %v", err)
	}

	if err := initializeReportTable(db); err != nil {
		return nil, err
	}

	return &SaveToDuckDB{db: db}, nil
}

func initializeReportTable(db *sql.DB) error {
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS chart_rows (
            chart_name VARCHAR,
            chart_kind VARCHAR,
            filter_season VARCHAR,
            filter_team VARCHAR,
            rank INTEGER,
            label VARCHAR,
            value DOUBLE,
            season VARCHAR,
            generated_at TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to create chart_rows table: %v", err)
	}
	return nil
}

func (d *SaveToDuckDB) Subscribe(processor processor.Processor) {
	d.processors = append(d.processors, processor)
}

func (d *SaveToDuckDB) Process(ctx context.Context, msg processor.Message) error {
	table, err := processor.ExtractChartTable(msg)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        DELETE FROM chart_rows
        WHERE chart_name = ? AND filter_season = ? AND filter_team = ?`,
		table.Name, table.Filter.Season, table.Filter.Team)
	if err != nil {
		return fmt.Errorf("failed to clear chart %s: %v", table.Name, err)
	}

	for i, row := range table.Rows {
		label, value, season := flattenRow(row)
		_, err = tx.ExecContext(ctx, `
            INSERT INTO chart_rows (chart_name, chart_kind, filter_season, filter_team, rank, label, value, season, generated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			table.Name, string(table.Kind), table.Filter.Season, table.Filter.Team,
			i+1, label, value, season, table.GeneratedAt)
		if err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %v", i, table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %v", err)
	}

	log.Printf("SaveToDuckDB: stored %d rows for chart %s", len(table.Rows), table.Name)
	return nil
}

// flattenRow maps the chart row shapes onto (label, value, season). Two-column
// charts have no season; the win-margin charts carry it as a third column.
func flattenRow(row []interface{}) (label string, value float64, season string) {
	if len(row) > 0 {
		if s, ok := row[0].(string); ok {
			label = s
		}
	}
	if len(row) > 1 {
		switch v := row[1].(type) {
		case int:
			value = float64(v)
		case int64:
			value = float64(v)
		case float64:
			value = v
		case string:
			// Raw tables carry strings only; keep the value at zero.
		}
	}
	if len(row) > 2 {
		if s, ok := row[2].(string); ok {
			season = s
		}
	}
	return label, value, season
}

func (d *SaveToDuckDB) Close() error {
	return d.db.Close()
}
