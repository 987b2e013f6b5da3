package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/nucleus/catalog-api/internal/source"
)

// PostgresStore implements Store against PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate applies pending schema migrations from the given directory.
func (s *PostgresStore) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(s.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// GetDataSource retrieves a data source by ID. Returns (nil, nil) when the
// ID does not resolve.
func (s *PostgresStore) GetDataSource(ctx context.Context, id string) (*source.DataSource, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, configuration, COALESCE(record_count, 0), created_at, updated_at
		FROM data_sources
		WHERE id = $1
	`, id)

	var ds source.DataSource
	var rawConfig json.RawMessage
	err := row.Scan(&ds.ID, &ds.Name, &ds.Type, &rawConfig, &ds.RecordCount, &ds.CreatedAt, &ds.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data source: %w", err)
	}

	ds.Configuration, err = source.ParseConfiguration(rawConfig)
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// GetTransformState retrieves persisted transform state for a source.
func (s *PostgresStore) GetTransformState(ctx context.Context, id string) (*TransformState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT transformed_data, transformed_at, record_count, transformation_applied_at
		FROM data_sources
		WHERE id = $1
	`, id)

	var state TransformState
	err := row.Scan(&state.TransformedData, &state.TransformedAt, &state.RecordCount, &state.TransformationAppliedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transform state: %w", err)
	}
	return &state, nil
}

// SaveTransformState persists a serialized catalog snapshot and its record
// count for a source.
func (s *PostgresStore) SaveTransformState(ctx context.Context, id string, transformedData string, recordCount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE data_sources
		SET transformed_data = $2,
		    transformed_at = NOW(),
		    record_count = $3,
		    transformation_applied_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`, id, transformedData, recordCount)
	if err != nil {
		return fmt.Errorf("failed to save transform state: %w", err)
	}
	return nil
}
