package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seulch/campushub/internal/domain"
	"github.com/seulch/campushub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository persists event aggregate snapshots as JSONB
// documents. The in-memory store stays authoritative at runtime; snapshots
// exist to repopulate it at startup.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// EnsureSchema creates the snapshot table when it does not exist
func (r *PostgresEventRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS event_snapshots (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create event_snapshots table: %w", err)
	}
	return nil
}

// SaveEvent upserts an event snapshot
func (r *PostgresEventRepository) SaveEvent(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.save")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("status", event.Status.String()),
	)

	doc, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal event snapshot: %w", err)
	}

	query := `
		INSERT INTO event_snapshots (id, status, doc, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query, event.ID, event.Status.String(), doc, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save event snapshot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteEvent removes an event snapshot
func (r *PostgresEventRepository) DeleteEvent(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	_, err := r.pool.Exec(ctx, `DELETE FROM event_snapshots WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event snapshot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// LoadEvents returns all persisted event snapshots. Rows that fail to
// unmarshal are skipped and reported so one bad document cannot block
// startup.
func (r *PostgresEventRepository) LoadEvents(ctx context.Context) ([]*domain.Event, []error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.load_all")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT doc FROM event_snapshots`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, []error{fmt.Errorf("failed to query event snapshots: %w", err)}
	}
	defer rows.Close()

	var (
		events []*domain.Event
		errs   []error
	)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			errs = append(errs, fmt.Errorf("failed to scan event snapshot: %w", err))
			continue
		}
		event := &domain.Event{}
		if err := json.Unmarshal(doc, event); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmarshal event snapshot: %w", err))
			continue
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		errs = append(errs, fmt.Errorf("event snapshot iteration failed: %w", err))
	}

	span.SetAttributes(
		attribute.Int("loaded", len(events)),
		attribute.Int("skipped", len(errs)),
	)
	span.SetStatus(codes.Ok, "")
	return events, errs
}
