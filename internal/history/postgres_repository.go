package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS report_history (
		id         UUID PRIMARY KEY,
		city       TEXT NOT NULL,
		lat        DOUBLE PRECISION NOT NULL,
		lon        DOUBLE PRECISION NOT NULL,
		aqi        SMALLINT NOT NULL,
		readings   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS report_history_city_created_idx
		ON report_history (lower(city), created_at DESC);
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the history table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// Record stores an entry.
func (r *PostgresRepository) Record(ctx context.Context, e *Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO report_history (id, city, lat, lon, aqi, readings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.City, e.Lat, e.Lon, e.AQI, e.Readings, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	query := `
		SELECT id, city, lat, lon, aqi, readings, created_at
		FROM report_history
		WHERE ($1 = '' OR lower(city) = lower($1))
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.City, opts.limit())
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.City,
			&e.Lat,
			&e.Lon,
			&e.AQI,
			&e.Readings,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
