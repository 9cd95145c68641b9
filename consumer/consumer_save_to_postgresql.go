package consumer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// SaveToPostgreSQL mirrors the SQLite sink onto a shared PostgreSQL instance
// so the derived tables can be served to other tooling.
type SaveToPostgreSQL struct {
	db         *sql.DB
	processors []processor.Processor
}

func NewSaveToPostgreSQL(config map[string]interface{}) (*SaveToPostgreSQL, error) {
	connStr, err := buildPostgresConnString(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	if err := initPostgresSchema(ctx, db); err != nil {
		return nil, err
	}

	return &SaveToPostgreSQL{db: db}, nil
}

func buildPostgresConnString(config map[string]interface{}) (string, error) {
	host, ok := config["host"].(string)
	if !ok {
		return "", fmt.Errorf("missing host in PostgreSQL configuration")
	}
	dbname, ok := config["database"].(string)
	if !ok {
		return "", fmt.Errorf("missing database in PostgreSQL configuration")
	}
	user, ok := config["username"].(string)
	if !ok {
		return "", fmt.Errorf("missing username in PostgreSQL configuration")
	}

	port := 5432
	if p, ok := config["port"].(int); ok {
		port = p
	} else if p, ok := config["port"].(float64); ok {
		port = int(p)
	}

	password, _ := config["password"].(string)
	sslmode, _ := config["sslmode"].(string)
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		host, port, dbname, user, password, sslmode,
	), nil
}

func initPostgresSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS report_tables (
            name TEXT NOT NULL,
            filter_season TEXT NOT NULL DEFAULT '',
            filter_team TEXT NOT NULL DEFAULT '',
            title TEXT NOT NULL,
            chart_kind TEXT NOT NULL,
            columns JSONB NOT NULL,
            rows JSONB NOT NULL,
            row_count INTEGER NOT NULL,
            generated_at TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (name, filter_season, filter_team)
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create report_tables: %v", err)
	}
	return nil
}

func (p *SaveToPostgreSQL) Subscribe(processor processor.Processor) {
	p.processors = append(p.processors, processor)
}

func (p *SaveToPostgreSQL) Process(ctx context.Context, msg processor.Message) error {
	table, err := processor.ExtractChartTable(msg)
	if err != nil {
		return err
	}

	columns, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	rows, err := json.Marshal(table.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
        INSERT INTO report_tables (name, filter_season, filter_team, title, chart_kind, columns, rows, row_count, generated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (name, filter_season, filter_team) DO UPDATE SET
            title = EXCLUDED.title,
            chart_kind = EXCLUDED.chart_kind,
            columns = EXCLUDED.columns,
            rows = EXCLUDED.rows,
            row_count = EXCLUDED.row_count,
            generated_at = EXCLUDED.generated_at
    `, table.Name, table.Filter.Season, table.Filter.Team, table.Title,
		string(table.Kind), columns, rows, len(table.Rows), table.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert report table %s: %v", table.Name, err)
	}

	log.Printf("SaveToPostgreSQL: stored table %s (%d rows)", table.Name, len(table.Rows))
	return nil
}

func (p *SaveToPostgreSQL) Close() error {
	return p.db.Close()
}
