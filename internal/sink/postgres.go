package sink

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openretail/storewatch/internal/incident"
)

// schemaSQL is embedded so the sink can self-bootstrap its table.
//
//go:embed schema.sql
var schemaSQL string

// postgresSink persists incidents for downstream analytics queries.
type postgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool and fails fast if the database is
// unreachable.
func NewPostgres(ctx context.Context, dbURL string) (Sink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres sink ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres sink schema: %w", err)
	}
	return &postgresSink{pool: pool}, nil
}

func (s *postgresSink) Name() string { return "postgres" }

// Append inserts one incident. The unique constraint makes redelivery
// idempotent, which is compatible with at-least-once emission.
func (s *postgresSink) Append(ctx context.Context, inc incident.Incident) error {
	data, err := json.Marshal(inc.Data)
	if err != nil {
		return fmt.Errorf("marshal event_data: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO incidents(event_id, event_name, occurred_at, event_data)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (event_id, occurred_at) DO NOTHING
	`, inc.EventID, inc.Data.EventName(), inc.Timestamp, data)
	return err
}

func (s *postgresSink) Close() error {
	s.pool.Close()
	return nil
}
