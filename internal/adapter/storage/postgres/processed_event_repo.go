package postgres

import (
	"context"
	"errors"
	"fmt"

	"transaction-orchestrator/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ProcessedEventRepo implements ports.ProcessedEventRepository.
type ProcessedEventRepo struct {
	pool Pool
}

// NewProcessedEventRepo creates a new ProcessedEventRepo.
func NewProcessedEventRepo(pool Pool) *ProcessedEventRepo {
	return &ProcessedEventRepo{pool: pool}
}

// Insert records the event id on the pool, outside any caller transaction,
// so the admission commits on its own. A primary-key violation means the id
// was already admitted.
func (r *ProcessedEventRepo) Insert(ctx context.Context, event *domain.ProcessedEvent) (bool, error) {
	query := `INSERT INTO processed_events (event_id, received_at) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, event.EventID, event.ReceivedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert processed event: %w", err)
	}
	return true, nil
}
