package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transaction-orchestrator/internal/core/ports"

	"github.com/rs/zerolog"
)

// OutboxRelay drains committed outbox rows to the bus, oldest first.
// Each batch is claimed, published and marked inside one transaction, so
// concurrent relays never publish the same row. Delivery is still
// at-least-once: a crash between publish and commit republishes the batch.
type OutboxRelay struct {
	transactor ports.DBTransactor
	repo       ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	now        func() time.Time
	log        zerolog.Logger
}

// NewOutboxRelay creates a new OutboxRelay.
func NewOutboxRelay(
	transactor ports.DBTransactor,
	repo ports.OutboxRepository,
	publisher ports.EventPublisher,
	interval time.Duration,
	batchSize int,
	log zerolog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		transactor: transactor,
		repo:       repo,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		now:        time.Now,
		log:        log.With().Str("component", "outbox_relay").Logger(),
	}
}

// Run drains on every tick until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("outbox relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("outbox relay stopped")
			return nil
		case <-ticker.C:
			for {
				n, err := r.DrainOnce(ctx)
				if err != nil {
					r.log.Error().Err(err).Int("published", n).Msg("outbox drain failed")
					break
				}
				// A full batch means more rows are probably waiting.
				if n < r.batchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// DrainOnce publishes one batch and returns how many messages were relayed.
// It stops at the first failure so later messages never overtake earlier ones;
// messages published before the failure are still committed as published.
func (r *OutboxRelay) DrainOnce(ctx context.Context) (int, error) {
	tx, err := r.transactor.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin relay tx: %w", err)
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	messages, err := r.repo.ClaimPending(ctx, tx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim pending: %w", err)
	}

	published := 0
	var relayErr error
	for _, m := range messages {
		if err := r.publisher.Publish(ctx, m.Notification); err != nil {
			relayErr = fmt.Errorf("publish outbox message %d: %w", m.ID, err)
			break
		}
		if err := r.repo.MarkPublished(ctx, tx, m.ID, r.now().UTC()); err != nil {
			relayErr = fmt.Errorf("mark outbox message %d: %w", m.ID, err)
			break
		}
		published++
	}

	if published == 0 {
		return 0, relayErr
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Join(relayErr, fmt.Errorf("commit relay tx: %w", err))
	}

	r.log.Debug().Int("published", published).Msg("outbox batch relayed")
	return published, relayErr
}
