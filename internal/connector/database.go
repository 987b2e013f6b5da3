package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/nucleus/catalog-api/internal/catalog"
	"github.com/nucleus/catalog-api/internal/source"
)

// transformDatabase materializes records from a relational data source.
// The configured query (or table) is read up to the cap; the true total
// comes from a COUNT over the same relation.
func (t *Transformer) transformDatabase(ctx context.Context, ds *source.DataSource, opts catalog.TransformOptions) (*catalog.UnifiedDataCatalog, error) {
	cfg := ds.Configuration
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("database source %s has no connection string", ds.ID)
	}

	relation := cfg.Query
	if relation == "" {
		if cfg.Table == "" {
			return nil, fmt.Errorf("database source %s has neither query nor table configured", ds.ID)
		}
		relation = fmt.Sprintf("SELECT * FROM %s", cfg.Table)
	}

	db, err := sql.Open("pgx", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for source %s: %w", ds.ID, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS src", relation)
	if err := db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records for source %s: %w", ds.ID, err)
	}

	query := relation
	if opts.MaxRecords > 0 {
		query = fmt.Sprintf("SELECT * FROM (%s) AS src LIMIT %d", relation, opts.MaxRecords)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query source %s: %w", ds.ID, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for source %s: %w", ds.ID, err)
	}

	var values []any
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row for source %s: %w", ds.ID, err)
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeCell(cells[i])
		}
		values = append(values, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows for source %s: %w", ds.ID, err)
	}

	fileName := cfg.Table
	if fileName == "" {
		fileName = "query"
	}
	records := catalog.WrapRecords(ds, fileName, values, 0, "database", "database_query")
	return catalog.NewCatalog(ds, records, total, &catalog.CatalogMetadata{
		TransformationMethod: "database_query",
	}), nil
}

// normalizeCell converts driver values into JSON-friendly ones.
func normalizeCell(v any) any {
	switch cell := v.(type) {
	case []byte:
		return string(cell)
	case time.Time:
		return cell.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
