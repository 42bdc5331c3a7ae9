package ports

import (
	"context"
	"time"

	"transaction-orchestrator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProcessedEventRepository is the durable half of the deduplication ledger.
type ProcessedEventRepository interface {
	// Insert records the event id in its own committed unit.
	// Returns false without error when the id was already recorded.
	Insert(ctx context.Context, event *domain.ProcessedEvent) (bool, error)
}

// TransactionRepository is the append-only transaction ledger.
type TransactionRepository interface {
	// Record inserts a row inside tx, assigning a fresh id when none is set.
	Record(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) (uuid.UUID, error)
	ListBySourceOrder(ctx context.Context, sourceOrderID string) ([]domain.Transaction, error)
}

// OutboxRepository persists committed notifications for asynchronous relay.
type OutboxRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, notifications []domain.Notification) error
	// ClaimPending locks up to limit unpublished messages, in commit order, for tx.
	// It returns nothing while another relay holds the drain lock.
	ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, tx pgx.Tx, id int64, publishedAt time.Time) error
}

// DBTransactor abstracts database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
