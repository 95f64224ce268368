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

// PostgresVenueRepository persists venue snapshots, booking ledger included,
// as JSONB documents
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

// EnsureSchema creates the snapshot table when it does not exist
func (r *PostgresVenueRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS venue_snapshots (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create venue_snapshots table: %w", err)
	}
	return nil
}

// SaveVenue upserts a venue snapshot
func (r *PostgresVenueRepository) SaveVenue(ctx context.Context, venue *domain.Venue) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.save")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venue.ID))

	doc, err := json.Marshal(venue)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal venue snapshot: %w", err)
	}

	query := `
		INSERT INTO venue_snapshots (id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query, venue.ID, doc, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save venue snapshot: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// LoadVenues returns all persisted venue snapshots, skipping rows that fail
// to unmarshal
func (r *PostgresVenueRepository) LoadVenues(ctx context.Context) ([]*domain.Venue, []error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.venue.load_all")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT doc FROM venue_snapshots`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, []error{fmt.Errorf("failed to query venue snapshots: %w", err)}
	}
	defer rows.Close()

	var (
		venues []*domain.Venue
		errs   []error
	)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			errs = append(errs, fmt.Errorf("failed to scan venue snapshot: %w", err))
			continue
		}
		venue := &domain.Venue{}
		if err := json.Unmarshal(doc, venue); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmarshal venue snapshot: %w", err))
			continue
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		errs = append(errs, fmt.Errorf("venue snapshot iteration failed: %w", err))
	}

	span.SetAttributes(
		attribute.Int("loaded", len(venues)),
		attribute.Int("skipped", len(errs)),
	)
	span.SetStatus(codes.Ok, "")
	return venues, errs
}
