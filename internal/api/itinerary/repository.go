package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Repository is the itinerary catalog: successful schedules the caller asked
// to keep. Writes happen only after a full run; the engine itself never
// touches storage mid-run.
type Repository interface {
	SaveItinerary(ctx context.Context, itinerary types.SavedItinerary) (uuid.UUID, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, page, pageSize int) (*types.PaginatedItinerariesResponse, error)
}

// PgxPool is the subset of pgxpool.Pool the repository uses, kept narrow so
// pgxmock can stand in during tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresRepository(pool PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

func (r *PostgresRepository) SaveItinerary(ctx context.Context, itinerary types.SavedItinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "SaveItinerary")
	defer span.End()
	span.SetAttributes(attribute.String("itinerary.destination", itinerary.Destination))

	payload, err := json.Marshal(itinerary.Days)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to marshal itinerary days: %w", err)
	}

	query := `
        INSERT INTO itineraries (id, destination, day_count, days, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	var id uuid.UUID
	err = r.pool.QueryRow(ctx, query,
		itinerary.ID, itinerary.Destination, itinerary.DayCount, payload, itinerary.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary inserted")
	return id, nil
}

func (r *PostgresRepository) GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "GetItinerary")
	defer span.End()

	query := `
        SELECT id, destination, day_count, days, created_at
        FROM itineraries
        WHERE id = $1`
	var out types.SavedItinerary
	var payload []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&out.ID, &out.Destination, &out.DayCount, &payload, &out.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}
	if err := json.Unmarshal(payload, &out.Days); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal itinerary days: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary fetched")
	return &out, nil
}

func (r *PostgresRepository) ListItineraries(ctx context.Context, page, pageSize int) (*types.PaginatedItinerariesResponse, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "ListItineraries")
	defer span.End()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM itineraries`).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count itineraries: %w", err)
	}

	query := `
        SELECT id, destination, day_count, days, created_at
        FROM itineraries
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	itineraries := make([]types.SavedItinerary, 0, pageSize)
	for rows.Next() {
		var item types.SavedItinerary
		var payload []byte
		if err := rows.Scan(&item.ID, &item.Destination, &item.DayCount, &payload, &item.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		if err := json.Unmarshal(payload, &item.Days); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to unmarshal itinerary days: %w", err)
		}
		itineraries = append(itineraries, item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed iterating itinerary rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Itineraries listed")
	return &types.PaginatedItinerariesResponse{
		Itineraries:  itineraries,
		TotalRecords: total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}
