package postgres

import (
	"context"
	"fmt"
	"time"

	"transaction-orchestrator/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// outboxDrainLock keys the transaction-scoped advisory lock held by the
// relay that is currently draining. One drainer at a time keeps commit order.
const outboxDrainLock int64 = 0x74786f5f6f7574

// OutboxRepo implements ports.OutboxRepository. Every call runs in the
// caller's transaction.
type OutboxRepo struct{}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{}
}

// Insert stages notifications in the caller's transaction, preserving raise order.
func (r *OutboxRepo) Insert(ctx context.Context, tx pgx.Tx, notifications []domain.Notification) error {
	query := `INSERT INTO outbox_messages
		(notification_id, kind, transaction_type, channel, message_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, n := range notifications {
		_, err := tx.Exec(ctx, query,
			n.ID, n.Kind, n.TransactionType, n.Channel, n.Key, []byte(n.Payload), n.OccurredAt,
		)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", n.ID, err)
		}
	}
	return nil
}

// ClaimPending takes the drain lock and row-locks the oldest unpublished messages.
// The locks are released when tx ends, so rows marked in tx are never relayed twice.
func (r *OutboxRepo) ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]domain.OutboxMessage, error) {
	var locked bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, outboxDrainLock).Scan(&locked); err != nil {
		return nil, fmt.Errorf("acquire outbox drain lock: %w", err)
	}
	if !locked {
		return nil, nil
	}

	query := `SELECT id, notification_id, kind, transaction_type, channel, message_key, payload, occurred_at, created_at
		FROM outbox_messages
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending outbox: %w", err)
	}
	defer rows.Close()

	var messages []domain.OutboxMessage
	for rows.Next() {
		var (
			m       domain.OutboxMessage
			payload []byte
		)
		err := rows.Scan(
			&m.ID, &m.Notification.ID, &m.Notification.Kind, &m.Notification.TransactionType,
			&m.Notification.Channel, &m.Notification.Key, &payload, &m.Notification.OccurredAt, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		m.Notification.Payload = payload
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return messages, nil
}

// MarkPublished stamps a claimed message as relayed.
func (r *OutboxRepo) MarkPublished(ctx context.Context, tx pgx.Tx, id int64, publishedAt time.Time) error {
	query := `UPDATE outbox_messages SET published_at = $1 WHERE id = $2 AND published_at IS NULL`

	_, err := tx.Exec(ctx, query, publishedAt, id)
	if err != nil {
		return fmt.Errorf("mark outbox message published: %w", err)
	}
	return nil
}
