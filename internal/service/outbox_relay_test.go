package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports/mocks"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type relayTestDeps struct {
	relay      *OutboxRelay
	transactor *mocks.MockDBTransactor
	repo       *mocks.MockOutboxRepository
	publisher  *mocks.MockEventPublisher
	tx         *mockTx
}

func setupRelay(t *testing.T, batchSize int) *relayTestDeps {
	ctrl := gomock.NewController(t)
	d := &relayTestDeps{
		transactor: mocks.NewMockDBTransactor(ctrl),
		repo:       mocks.NewMockOutboxRepository(ctrl),
		publisher:  mocks.NewMockEventPublisher(ctrl),
		tx:         &mockTx{},
	}
	d.relay = NewOutboxRelay(d.transactor, d.repo, d.publisher, 10*time.Millisecond, batchSize, zerolog.Nop())
	return d
}

func outboxMessage(id int64, key string) domain.OutboxMessage {
	return domain.OutboxMessage{ID: id, Notification: notification(domain.ChannelPaymentOrderStarted, key)}
}

// ==================== DrainOnce Tests ====================

func TestOutboxRelay_DrainOnce_PublishesInOrder(t *testing.T) {
	d := setupRelay(t, 10)
	ctx := context.Background()
	m1, m2 := outboxMessage(1, "po-1"), outboxMessage(2, "po-1")

	d.transactor.EXPECT().Begin(ctx).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(ctx, d.tx, 10).Return([]domain.OutboxMessage{m1, m2}, nil)
	gomock.InOrder(
		d.publisher.EXPECT().Publish(ctx, m1.Notification).Return(nil),
		d.repo.EXPECT().MarkPublished(ctx, d.tx, int64(1), gomock.Any()).Return(nil),
		d.publisher.EXPECT().Publish(ctx, m2.Notification).Return(nil),
		d.repo.EXPECT().MarkPublished(ctx, d.tx, int64(2), gomock.Any()).Return(nil),
	)

	n, err := d.relay.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, d.tx.committed, "marks and row locks end with one commit")
}

func TestOutboxRelay_DrainOnce_StopsAtFirstFailure(t *testing.T) {
	d := setupRelay(t, 10)
	ctx := context.Background()
	m1, m2, m3 := outboxMessage(1, "a"), outboxMessage(2, "b"), outboxMessage(3, "c")

	d.transactor.EXPECT().Begin(ctx).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(ctx, d.tx, 10).Return([]domain.OutboxMessage{m1, m2, m3}, nil)
	d.publisher.EXPECT().Publish(ctx, m1.Notification).Return(nil)
	d.repo.EXPECT().MarkPublished(ctx, d.tx, int64(1), gomock.Any()).Return(nil)
	d.publisher.EXPECT().Publish(ctx, m2.Notification).Return(errors.New("broker unavailable"))
	// m2 is not marked and m3 is never attempted

	n, err := d.relay.DrainOnce(ctx)
	assert.ErrorContains(t, err, "publish outbox message 2")
	assert.Equal(t, 1, n)
	assert.True(t, d.tx.committed, "m1 stays marked as published")
}

func TestOutboxRelay_DrainOnce_FirstPublishFails(t *testing.T) {
	d := setupRelay(t, 10)
	ctx := context.Background()
	m1 := outboxMessage(1, "a")

	d.transactor.EXPECT().Begin(ctx).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(ctx, d.tx, 10).Return([]domain.OutboxMessage{m1}, nil)
	d.publisher.EXPECT().Publish(ctx, m1.Notification).Return(errors.New("broker unavailable"))

	n, err := d.relay.DrainOnce(ctx)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.False(t, d.tx.committed)
	assert.True(t, d.tx.rolledBack, "claim released for the next drain")
}

func TestOutboxRelay_DrainOnce_Empty(t *testing.T) {
	d := setupRelay(t, 5)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(gomock.Any(), d.tx, 5).Return(nil, nil)

	n, err := d.relay.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, d.tx.rolledBack)
}

func TestOutboxRelay_DrainOnce_ClaimFailure(t *testing.T) {
	d := setupRelay(t, 5)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(gomock.Any(), d.tx, 5).Return(nil, errors.New("db down"))

	_, err := d.relay.DrainOnce(context.Background())
	assert.ErrorContains(t, err, "claim pending")
	assert.True(t, d.tx.rolledBack)
}

func TestOutboxRelay_DrainOnce_BeginFailure(t *testing.T) {
	d := setupRelay(t, 5)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

	_, err := d.relay.DrainOnce(context.Background())
	assert.ErrorContains(t, err, "begin relay tx")
}

func TestOutboxRelay_DrainOnce_CommitFailure(t *testing.T) {
	d := setupRelay(t, 5)
	ctx := context.Background()
	m1 := outboxMessage(1, "a")
	d.tx.commitErr = errors.New("connection reset")

	d.transactor.EXPECT().Begin(ctx).Return(d.tx, nil)
	d.repo.EXPECT().ClaimPending(ctx, d.tx, 5).Return([]domain.OutboxMessage{m1}, nil)
	d.publisher.EXPECT().Publish(ctx, m1.Notification).Return(nil)
	d.repo.EXPECT().MarkPublished(ctx, d.tx, int64(1), gomock.Any()).Return(nil)

	n, err := d.relay.DrainOnce(ctx)
	assert.ErrorContains(t, err, "commit relay tx")
	assert.Zero(t, n, "unmarked rows will be relayed again")
}

// ==================== Run Tests ====================

func TestOutboxRelay_Run_StopsOnCancel(t *testing.T) {
	d := setupRelay(t, 5)
	ctx, cancel := context.WithCancel(context.Background())

	d.transactor.EXPECT().Begin(gomock.Any()).DoAndReturn(func(context.Context) (pgx.Tx, error) {
		return &mockTx{}, nil
	}).AnyTimes()
	d.repo.EXPECT().ClaimPending(gomock.Any(), gomock.Any(), 5).Return(nil, nil).AnyTimes()

	done := make(chan error, 1)
	go func() { done <- d.relay.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
