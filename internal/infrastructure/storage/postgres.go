package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ainews/internal/ports"
)

// PostgresStore serves the same table/filter contract directly against
// Postgres for deployments that bypass the hosted REST layer.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Store = (*PostgresStore)(nil)

// OpenPostgres connects with the given DSN and verifies the connection.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert adds one record, mapping exec failures to a rejected result so the
// caller sees the same verdict shape as the REST gateway.
func (p *PostgresStore) Insert(ctx context.Context, table string, record map[string]any) (ports.InsertResult, error) {
	query, args, err := p.builder.Insert(table).SetMap(record).ToSql()
	if err != nil {
		return ports.InsertResult{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return ports.InsertResult{
			StatusCode: http.StatusInternalServerError,
			Body:       err.Error(),
		}, nil
	}
	return ports.InsertResult{Success: true, StatusCode: http.StatusCreated}, nil
}

// Query selects rows matching every filter as an equality predicate.
func (p *PostgresStore) Query(ctx context.Context, table string, filters map[string]string) ([]map[string]any, error) {
	builder := p.builder.Select("*").From(table)
	if len(filters) > 0 {
		eq := sq.Eq{}
		for column, value := range filters {
			eq[column] = value
		}
		builder = builder.Where(eq)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
