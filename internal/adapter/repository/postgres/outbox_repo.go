package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/iho/gocommission/internal/domain"
	"github.com/iho/gocommission/internal/infrastructure/postgres/generated"
	"github.com/iho/gocommission/internal/usecase"
)

// OutboxRepository stages commission.processed events next to the ledger
// writes of a sale item and serves them to the event publisher in commit
// order. Payloads are stored and returned as the JSON the commission use case
// produced.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return newOutboxRepository(pool)
}

func newOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create stages an event inside the commission transaction. The publisher
// sees it only once that transaction commits.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if !json.Valid(event.Payload) {
		return fmt.Errorf("outbox event %s for sale item %s: payload is not JSON", event.ID, event.AggregateID)
	}

	queries := generated.New(tx.(*Tx).PgxTx())

	_, err := queries.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       event.Payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	})
	if err != nil {
		return fmt.Errorf("stage %s for sale item %s: %w", event.EventType, event.AggregateID, err)
	}

	return nil
}

// GetUnpublished returns up to limit staged events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row generated.OutboxEvent, _ int) *domain.OutboxEvent {
		return &domain.OutboxEvent{
			ID:            row.ID,
			AggregateID:   row.AggregateID,
			AggregateType: row.AggregateType,
			EventType:     row.EventType,
			Payload:       json.RawMessage(row.Payload),
			CreatedAt:     row.CreatedAt.Time,
			PublishedAt:   optionalTime(row.PublishedAt),
			Published:     row.Published,
		}
	}), nil
}

// MarkPublished records that the publisher delivered the event.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
}

// DeletePublished prunes delivered events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
}
