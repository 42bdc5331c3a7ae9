package service

import (
	"context"
	"fmt"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"

	"github.com/rs/zerolog"
)

// DeduplicationLedger implements ports.EventAdmitter.
//
// Layer 1 is a Redis cache that can only reject known duplicates.
// Layer 2 is the processed_events primary key, which decides admission.
// The insert commits on its own, before and independently of the processing
// unit of work, so an admitted id stays admitted even if processing fails.
type DeduplicationLedger struct {
	repo  ports.ProcessedEventRepository
	cache ports.DedupCache // nil = cache disabled
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewDeduplicationLedger creates a new DeduplicationLedger.
func NewDeduplicationLedger(
	repo ports.ProcessedEventRepository,
	cache ports.DedupCache,
	ttl time.Duration,
	log zerolog.Logger,
) *DeduplicationLedger {
	return &DeduplicationLedger{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
		log:   log.With().Str("component", "dedup_ledger").Logger(),
	}
}

// Admit returns true exactly once per event id; later calls return false.
// Storage failures are returned as retryable errors.
func (l *DeduplicationLedger) Admit(ctx context.Context, eventID string) (bool, error) {
	// Layer 1: Redis
	if l.cache != nil {
		seen, err := l.cache.Seen(ctx, eventID)
		if err != nil {
			l.log.Warn().Err(err).Str("event_id", eventID).Msg("redis dedup check failed, falling through to DB")
		} else if seen {
			return false, nil
		}
	}

	// Layer 2: PostgreSQL
	admitted, err := l.repo.Insert(ctx, &domain.ProcessedEvent{
		EventID:    eventID,
		ReceivedAt: l.now().UTC(),
	})
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("admit event %s: %w", eventID, err))
	}

	if l.cache != nil {
		if err := l.cache.Remember(ctx, eventID, l.ttl); err != nil {
			l.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to cache dedup marker")
		}
	}

	return admitted, nil
}
