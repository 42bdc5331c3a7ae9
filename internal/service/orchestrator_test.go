package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports/mocks"
	"transaction-orchestrator/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orchestratorTestDeps struct {
	orch       *Orchestrator
	admitter   *mocks.MockEventAdmitter
	transactor *mocks.MockDBTransactor
	publisher  *mocks.MockEventPublisher
	txRepo     *mocks.MockTransactionRepository
	gateway    *mocks.MockSettlementGateway
}

func setupOrchestrator(t *testing.T, refundsAutoApprove bool) *orchestratorTestDeps {
	ctrl := gomock.NewController(t)
	d := &orchestratorTestDeps{
		admitter:   mocks.NewMockEventAdmitter(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		publisher:  mocks.NewMockEventPublisher(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		gateway:    mocks.NewMockSettlementGateway(ctrl),
	}
	router := NewEmissionRouter(d.transactor, d.publisher, nil, zerolog.Nop())
	d.orch = NewOrchestrator(d.admitter, router, d.txRepo, d.gateway, refundsAutoApprove, zerolog.Nop())
	d.orch.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func paymentEvent(t *testing.T, id string, orders ...domain.PaymentOrder) *domain.InboundEvent {
	t.Helper()
	data, err := json.Marshal(domain.PaymentCreated{
		Checkout: domain.Checkout{
			ID:        "chk-1",
			BuyerInfo: domain.BuyerInfo{Document: "123.456.789-00", Name: "Ana"},
			CardInfo:  domain.CardInfo{CardInfo: "visa", Token: "tok-1"},
		},
		Payments: orders,
	})
	require.NoError(t, err)
	return &domain.InboundEvent{ID: id, Type: domain.EventTypePaymentCreated, Source: "payments", Data: data}
}

func refundEvent(t *testing.T, id, refundID, amount string) *domain.InboundEvent {
	t.Helper()
	data, err := json.Marshal(domain.RefundCreated{
		Refund: domain.Refund{
			ID:         refundID,
			Amount:     amount,
			Currency:   "USD",
			SellerInfo: domain.SellerInfo{SellerID: "seller-1"},
		},
		Payment: domain.PaymentOrder{ID: "po-origin"},
	})
	require.NoError(t, err)
	return &domain.InboundEvent{ID: id, Type: domain.EventTypeRefundCreated, Source: "payments", Data: data}
}

func order(id, amount string) domain.PaymentOrder {
	return domain.PaymentOrder{ID: id, Amount: amount, Currency: "USD", SellerInfo: domain.SellerInfo{SellerID: "seller-1"}}
}

// expectRecords records every ledger write and returns a fresh id per row.
func (d *orchestratorTestDeps) expectRecords(times int, rows *[]domain.Transaction) {
	d.txRepo.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Times(times).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, tx *domain.Transaction) (uuid.UUID, error) {
			*rows = append(*rows, *tx)
			return uuid.New(), nil
		})
}

func channels(ns []domain.Notification) []domain.Channel {
	out := make([]domain.Channel, len(ns))
	for i, n := range ns {
		out[i] = n.Channel
	}
	return out
}

// ==================== HandlePaymentCreated Tests ====================

func TestOrchestrator_HandlePaymentCreated_Approved(t *testing.T) {
	d := setupOrchestrator(t, true)
	tx := &mockTx{}
	var rows []domain.Transaction
	var published []domain.Notification

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-1").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.expectRecords(2, &rows)
	d.gateway.EXPECT().Settle(gomock.Any(), domain.SettlementRequest{
		SourceOrderID: "po-1", Amount: "100.00", Currency: "USD", CardToken: "tok-1",
	}).Return(domain.TransactionStatusApproved, nil)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ns ...domain.Notification) error {
			published = ns
			return nil
		})

	result, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-1", order("po-1", "100.00")))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Len(t, result.Transactions, 2)
	assert.True(t, tx.committed)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.SituationReceived, rows[0].Situation)
	assert.Equal(t, domain.TransactionStatusUndefined, rows[0].Status)
	assert.Equal(t, domain.SituationProcessed, rows[1].Situation)
	assert.Equal(t, domain.TransactionStatusApproved, rows[1].Status)
	require.NotNil(t, rows[1].CheckoutID)
	assert.Equal(t, "chk-1", *rows[1].CheckoutID)

	assert.Equal(t, []domain.Channel{domain.ChannelPaymentOrderStarted, domain.ChannelPaymentOrderApproved}, channels(published))
}

func TestOrchestrator_HandlePaymentCreated_Declined(t *testing.T) {
	d := setupOrchestrator(t, true)
	var rows []domain.Transaction
	var published []domain.Notification

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-2").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
	d.expectRecords(2, &rows)
	d.gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(domain.TransactionStatusDeclined, nil)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ns ...domain.Notification) error {
			published = ns
			return nil
		})

	_, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-2", order("po-2", "5")))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusDeclined, rows[1].Status)
	assert.Equal(t, []domain.Channel{domain.ChannelPaymentOrderStarted, domain.ChannelPaymentOrderFailed}, channels(published))
}

func TestOrchestrator_HandlePaymentCreated_MultipleOrdersShareOneUnit(t *testing.T) {
	d := setupOrchestrator(t, true)
	var rows []domain.Transaction
	var published []domain.Notification

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-3").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil).Times(1)
	d.expectRecords(4, &rows)
	d.gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(domain.TransactionStatusApproved, nil).Times(2)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ns ...domain.Notification) error {
			published = ns
			return nil
		})

	result, err := d.orch.HandlePaymentCreated(context.Background(),
		paymentEvent(t, "evt-3", order("po-a", "1.00"), order("po-b", "2.00")))
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 4)

	require.Len(t, published, 4)
	assert.Equal(t, "po-a", published[0].Key)
	assert.Equal(t, "po-a", published[1].Key)
	assert.Equal(t, "po-b", published[2].Key)
	assert.Equal(t, "po-b", published[3].Key)
}

func TestOrchestrator_HandlePaymentCreated_Duplicate(t *testing.T) {
	d := setupOrchestrator(t, true)

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-1").Return(false, nil)
	// No Begin, Record, Settle or Publish expected

	result, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-1", order("po-1", "100")))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Empty(t, result.Transactions)
}

func TestOrchestrator_HandlePaymentCreated_GatewayFailure(t *testing.T) {
	d := setupOrchestrator(t, true)
	tx := &mockTx{}

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-4").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.txRepo.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Return(uuid.New(), nil)
	d.gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(domain.TransactionStatus(""), errors.New("connection reset"))
	// No Publish expected

	result, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-4", order("po-1", "100")))
	assert.Nil(t, result)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "STL_001", appErr.Code)
	assert.True(t, apperror.IsRetryable(err))
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestOrchestrator_HandlePaymentCreated_AdmitFailure(t *testing.T) {
	d := setupOrchestrator(t, true)

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-5").Return(false, apperror.ErrDatabaseError(errors.New("down")))

	_, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-5", order("po-1", "100")))
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
}

func TestOrchestrator_HandlePaymentCreated_RecordFailure(t *testing.T) {
	d := setupOrchestrator(t, true)
	tx := &mockTx{}

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-6").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.txRepo.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.New("unique violation"))

	_, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-6", order("po-1", "100")))
	require.Error(t, err)
	assert.True(t, tx.rolledBack)
}

func TestOrchestrator_HandlePaymentCreated_InvalidPayloadNotAdmitted(t *testing.T) {
	d := setupOrchestrator(t, true)
	// No Admit expected: invalid events never consume a dedup slot

	_, err := d.orch.HandlePaymentCreated(context.Background(), paymentEvent(t, "evt-7", order("po-1", "-3")))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "EVT_001", appErr.Code)
	assert.False(t, apperror.IsRetryable(err))
}

// ==================== HandleRefundCreated Tests ====================

func TestOrchestrator_HandleRefundCreated_AutoApproved(t *testing.T) {
	d := setupOrchestrator(t, true)
	var rows []domain.Transaction
	var published []domain.Notification

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-r").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
	d.expectRecords(2, &rows)
	// No Settle expected
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ns ...domain.Notification) error {
			published = ns
			return nil
		})

	_, err := d.orch.HandleRefundCreated(context.Background(), refundEvent(t, "evt-r", "r-1", "50"))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.TransactionTypeRefund, rows[1].TransactionType)
	assert.Equal(t, domain.TransactionStatusApproved, rows[1].Status)
	assert.Equal(t, "r-1", rows[1].SourceOrderID)
	require.NotNil(t, rows[1].RelatedOrderID)
	assert.Equal(t, "po-origin", *rows[1].RelatedOrderID)

	assert.Equal(t, []domain.Channel{domain.ChannelRefundStarted, domain.ChannelRefundApproved}, channels(published))
}

func TestOrchestrator_HandleRefundCreated_SettledWhenAutoApproveOff(t *testing.T) {
	d := setupOrchestrator(t, false)
	var rows []domain.Transaction

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-r").Return(true, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(&mockTx{}, nil)
	d.expectRecords(2, &rows)
	d.gateway.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(domain.TransactionStatusDeclined, nil)
	d.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := d.orch.HandleRefundCreated(context.Background(), refundEvent(t, "evt-r", "r-1", "50"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusDeclined, rows[1].Status)
}

// ==================== Handle Tests ====================

func TestOrchestrator_Handle_DispatchesByChannel(t *testing.T) {
	d := setupOrchestrator(t, true)

	d.admitter.EXPECT().Admit(gomock.Any(), "evt-1").Return(false, nil)
	d.admitter.EXPECT().Admit(gomock.Any(), "evt-2").Return(false, nil)

	res, err := d.orch.Handle(context.Background(), domain.ChannelPaymentCreated, paymentEvent(t, "evt-1", order("po-1", "1")))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	res, err = d.orch.Handle(context.Background(), domain.ChannelRefundCreated, refundEvent(t, "evt-2", "r-1", "1"))
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
}

func TestOrchestrator_Handle_TypeMismatch(t *testing.T) {
	d := setupOrchestrator(t, true)

	_, err := d.orch.Handle(context.Background(), domain.ChannelRefundCreated, paymentEvent(t, "evt-1", order("po-1", "1")))
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "EVT_002", appErr.Code)
}

func TestOrchestrator_Handle_UnknownChannel(t *testing.T) {
	d := setupOrchestrator(t, true)

	_, err := d.orch.Handle(context.Background(), domain.Channel("wallet-topped-up"), &domain.InboundEvent{ID: "x", Type: "y"})
	require.Error(t, err)
	assert.False(t, apperror.IsRetryable(err))
}
