package consumer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// SaveToSQLite persists chart tables into a local SQLite file. Each table is
// stored as a header row plus exploded data rows, keyed by table name and the
// filter it was computed under, so repeated runs upsert instead of piling up.
type SaveToSQLite struct {
	db         *sql.DB
	processors []processor.Processor
}

func NewSaveToSQLite(config map[string]interface{}) (*SaveToSQLite, error) {
	dbPath, ok := config["db_path"].(string)
	if !ok {
		dbPath = "cricket_reports.sqlite"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite: %v", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		return nil, fmt.Errorf("failed to set SQLite pragmas: %v", err)
	}

	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS report_tables (
        name TEXT NOT NULL,
        filter_season TEXT NOT NULL DEFAULT '',
        filter_team TEXT NOT NULL DEFAULT '',
        title TEXT NOT NULL,
        chart_kind TEXT NOT NULL,
        columns TEXT NOT NULL,
        row_count INTEGER NOT NULL,
        generated_at TIMESTAMP NOT NULL,
        PRIMARY KEY (name, filter_season, filter_team)
    );

    CREATE TABLE IF NOT EXISTS report_rows (
        table_name TEXT NOT NULL,
        filter_season TEXT NOT NULL DEFAULT '',
        filter_team TEXT NOT NULL DEFAULT '',
        position INTEGER NOT NULL,
        row TEXT NOT NULL,
        PRIMARY KEY (table_name, filter_season, filter_team, position)
    );

    CREATE INDEX IF NOT EXISTS idx_report_rows_table ON report_rows(table_name);
`)
	if err != nil {
		return nil, fmt.Errorf("failed to create report tables: %v", err)
	}

	return &SaveToSQLite{
		db:         db,
		processors: make([]processor.Processor, 0),
	}, nil
}

func (d *SaveToSQLite) Subscribe(processor processor.Processor) {
	d.processors = append(d.processors, processor)
}

func (d *SaveToSQLite) Process(ctx context.Context, msg processor.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	table, err := processor.ExtractChartTable(msg)
	if err != nil {
		return err
	}

	log.Printf("SaveToSQLite: storing table %s (%d rows)", table.Name, len(table.Rows))

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	columns, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO report_tables (name, filter_season, filter_team, title, chart_kind, columns, row_count, generated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(name, filter_season, filter_team) DO UPDATE SET
            title=excluded.title, chart_kind=excluded.chart_kind,
            columns=excluded.columns, row_count=excluded.row_count,
            generated_at=excluded.generated_at
    `, table.Name, table.Filter.Season, table.Filter.Team, table.Title,
		string(table.Kind), string(columns), len(table.Rows), table.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert report table %s: %v", table.Name, err)
	}

	// Rewrite the row set wholesale; derived tables are small.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM report_rows WHERE table_name = ? AND filter_season = ? AND filter_team = ?`,
		table.Name, table.Filter.Season, table.Filter.Team)
	if err != nil {
		return fmt.Errorf("failed to clear rows for %s: %v", table.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO report_rows (table_name, filter_season, filter_team, position, row)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %v", err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		encoded, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d of %s: %w", i, table.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, table.Name, table.Filter.Season, table.Filter.Team, i, string(encoded)); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %v", i, table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %v", err)
	}
	return nil
}

func (d *SaveToSQLite) Close() error {
	return d.db.Close()
}
