package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"
	"transaction-orchestrator/pkg/telemetry"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UnitOfWork is one database transaction plus the notifications raised inside it.
// Notifications leave the buffer only after the transaction commits.
type UnitOfWork struct {
	tx pgx.Tx

	mu      sync.Mutex
	pending []domain.Notification
	closed  bool
}

// Tx returns the transaction every ledger write of this unit must use.
func (u *UnitOfWork) Tx() pgx.Tx {
	return u.tx
}

// Raise buffers a notification for post-commit delivery.
// Raising on a completed unit of work is a programming error and panics.
func (u *UnitOfWork) Raise(n domain.Notification) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		panic(fmt.Sprintf("notification %s raised after unit of work completed", n.ID))
	}
	u.pending = append(u.pending, n)
}

// Pending returns a copy of the buffered notifications.
func (u *UnitOfWork) Pending() []domain.Notification {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]domain.Notification, len(u.pending))
	copy(out, u.pending)
	return out
}

func (u *UnitOfWork) close() []domain.Notification {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	p := u.pending
	u.pending = nil
	return p
}

// EmissionRouter runs units of work and ties notification delivery to commit.
//
// Direct mode publishes the buffer after commit, in raise order.
// Outbox mode writes the buffer to outbox_messages inside the same
// transaction and leaves delivery to the OutboxRelay.
type EmissionRouter struct {
	transactor ports.DBTransactor
	publisher  ports.EventPublisher
	outbox     ports.OutboxRepository // nil = direct mode
	tracer     trace.Tracer
	log        zerolog.Logger
}

// NewEmissionRouter creates a new EmissionRouter. Pass a nil outbox for direct mode.
func NewEmissionRouter(
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	outbox ports.OutboxRepository,
	log zerolog.Logger,
) *EmissionRouter {
	return &EmissionRouter{
		transactor: transactor,
		publisher:  publisher,
		outbox:     outbox,
		tracer:     telemetry.Tracer(),
		log:        log.With().Str("component", "emission_router").Logger(),
	}
}

// WithinUnitOfWork runs fn inside a database transaction.
// An error or panic from fn rolls back and discards every raised notification.
// On commit the notifications are delivered exactly once per commit.
func (r *EmissionRouter) WithinUnitOfWork(ctx context.Context, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	ctx, span := r.tracer.Start(ctx, "emission.unit_of_work")
	defer span.End()

	dbTx, err := r.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}

	uow := &UnitOfWork{tx: dbTx}
	committed := false
	defer func() {
		if committed {
			return
		}
		discarded := uow.close()
		if err := dbTx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.log.Warn().Err(err).Msg("rollback failed")
		}
		if len(discarded) > 0 {
			r.log.Debug().Int("discarded", len(discarded)).Msg("unit of work rolled back, notifications discarded")
		}
	}()

	if err := fn(ctx, uow); err != nil {
		return err
	}

	pending := uow.Pending()
	if r.outbox != nil && len(pending) > 0 {
		if err := r.outbox.Insert(ctx, dbTx, pending); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("stage outbox: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	committed = true
	pending = uow.close()
	span.SetAttributes(attribute.Int("notifications", len(pending)))

	if r.outbox == nil {
		r.flush(context.WithoutCancel(ctx), pending)
	}
	return nil
}

// flush delivers committed notifications. Failures are logged, not returned:
// the state change is durable and redelivery belongs to the transport.
func (r *EmissionRouter) flush(ctx context.Context, notifications []domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, notifications...); err != nil {
		ids := make([]string, len(notifications))
		for i, n := range notifications {
			ids[i] = n.ID.String()
		}
		r.log.Error().Err(err).Strs("notification_ids", ids).Msg("post-commit publish failed")
		return
	}
	r.log.Debug().Int("count", len(notifications)).Msg("notifications published")
}
