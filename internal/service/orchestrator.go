package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"
	"transaction-orchestrator/pkg/logger"
	"transaction-orchestrator/pkg/telemetry"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator implements ports.OrchestrationService.
//
// Per inbound event: validate, admit, then one unit of work that for every
// order records RECEIVED, settles, records PROCESSED and raises the
// order-started and outcome notifications.
type Orchestrator struct {
	admitter           ports.EventAdmitter
	router             *EmissionRouter
	txRepo             ports.TransactionRepository
	gateway            ports.SettlementGateway
	refundsAutoApprove bool
	now                func() time.Time
	tracer             trace.Tracer
	log                zerolog.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	admitter ports.EventAdmitter,
	router *EmissionRouter,
	txRepo ports.TransactionRepository,
	gateway ports.SettlementGateway,
	refundsAutoApprove bool,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		admitter:           admitter,
		router:             router,
		txRepo:             txRepo,
		gateway:            gateway,
		refundsAutoApprove: refundsAutoApprove,
		now:                time.Now,
		tracer:             telemetry.Tracer(),
		log:                log.With().Str("component", "orchestrator").Logger(),
	}
}

// Handle dispatches an inbound event by the channel it arrived on.
func (o *Orchestrator) Handle(ctx context.Context, channel domain.Channel, event *domain.InboundEvent) (*domain.HandleResult, error) {
	switch channel {
	case domain.ChannelPaymentCreated:
		return o.HandlePaymentCreated(ctx, event)
	case domain.ChannelRefundCreated:
		return o.HandleRefundCreated(ctx, event)
	default:
		return nil, apperror.ErrUnsupportedEvent(fmt.Errorf("no handler for channel %q", channel))
	}
}

// HandlePaymentCreated settles every payment order of a checkout through the provider.
func (o *Orchestrator) HandlePaymentCreated(ctx context.Context, event *domain.InboundEvent) (*domain.HandleResult, error) {
	ctx, span := o.startSpan(ctx, "orchestrator.payment_created", event)
	defer span.End()

	payload, err := domain.DecodePaymentCreated(event)
	if err != nil {
		return nil, o.fail(span, classifyDecodeError(err))
	}

	received := make([]*domain.Transaction, 0, len(payload.Payments))
	for _, order := range payload.Payments {
		received = append(received, paymentTransaction(payload.Checkout, order))
	}
	return o.process(ctx, span, event.ID, received)
}

// HandleRefundCreated records a refund; refunds do not go through the provider
// unless auto-approval is switched off.
func (o *Orchestrator) HandleRefundCreated(ctx context.Context, event *domain.InboundEvent) (*domain.HandleResult, error) {
	ctx, span := o.startSpan(ctx, "orchestrator.refund_created", event)
	defer span.End()

	payload, err := domain.DecodeRefundCreated(event)
	if err != nil {
		return nil, o.fail(span, classifyDecodeError(err))
	}
	return o.process(ctx, span, event.ID, []*domain.Transaction{refundTransaction(payload)})
}

func (o *Orchestrator) process(ctx context.Context, span trace.Span, eventID string, received []*domain.Transaction) (*domain.HandleResult, error) {
	log := logger.WithTrace(ctx, o.log).With().Str("event_id", eventID).Logger()

	admitted, err := o.admitter.Admit(ctx, eventID)
	if err != nil {
		return nil, o.fail(span, err)
	}
	if !admitted {
		span.SetAttributes(attribute.Bool("event.duplicate", true))
		log.Info().Msg("duplicate event ignored")
		return &domain.HandleResult{EventID: eventID, Duplicate: true}, nil
	}

	result := &domain.HandleResult{EventID: eventID}
	err = o.router.WithinUnitOfWork(ctx, func(ctx context.Context, uow *UnitOfWork) error {
		for _, t := range received {
			ids, err := o.processTransaction(ctx, uow, t)
			if err != nil {
				return err
			}
			result.Transactions = append(result.Transactions, ids...)
		}
		return nil
	})
	if err != nil {
		// The id stays admitted; a redelivery will be rejected as a duplicate.
		log.Error().Err(err).Bool("reconciliation_required", true).Msg("admitted event rolled back")
		return nil, o.fail(span, err)
	}

	log.Info().Int("transactions", len(result.Transactions)).Msg("event processed")
	return result, nil
}

// processTransaction drives one order through RECEIVED -> SETTLING -> PROCESSED.
func (o *Orchestrator) processTransaction(ctx context.Context, uow *UnitOfWork, received *domain.Transaction) ([]uuid.UUID, error) {
	receivedID, err := o.txRepo.Record(ctx, uow.Tx(), received)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record received %s: %w", received.SourceOrderID, err))
	}
	received.ID = receivedID

	started, err := domain.NewStartedNotification(received, o.now())
	if err != nil {
		return nil, classifyRouteError(err)
	}
	uow.Raise(started)

	status, err := o.settle(ctx, received)
	if err != nil {
		return nil, err
	}

	processed := received.Processed(status)
	processedID, err := o.txRepo.Record(ctx, uow.Tx(), processed)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record processed %s: %w", processed.SourceOrderID, err))
	}
	processed.ID = processedID

	outcome, err := domain.NewProcessedNotification(processed, o.now())
	if err != nil {
		return nil, classifyRouteError(err)
	}
	uow.Raise(outcome)

	o.log.Debug().
		Str("source_order_id", processed.SourceOrderID).
		Str("transaction_type", string(processed.TransactionType)).
		Str("status", string(status)).
		Msg("transaction processed")

	return []uuid.UUID{receivedID, processedID}, nil
}

func (o *Orchestrator) settle(ctx context.Context, t *domain.Transaction) (domain.TransactionStatus, error) {
	if t.TransactionType == domain.TransactionTypeRefund && o.refundsAutoApprove {
		return domain.TransactionStatusApproved, nil
	}

	status, err := o.gateway.Settle(ctx, domain.SettlementRequest{
		SourceOrderID: t.SourceOrderID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		CardToken:     t.CardToken,
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperror.ErrSettlementFailed(err)
	}
	return status, nil
}

func (o *Orchestrator) startSpan(ctx context.Context, name string, event *domain.InboundEvent) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("event.id", event.ID),
		attribute.String("event.type", event.Type),
	))
}

func (o *Orchestrator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func classifyDecodeError(err error) error {
	if errors.Is(err, domain.ErrUnexpectedEventType) {
		return apperror.ErrUnsupportedEvent(err)
	}
	return apperror.ErrInvalidEvent(err)
}

func classifyRouteError(err error) error {
	if errors.Is(err, domain.ErrUnsupportedTransactionType) {
		return apperror.ErrUnsupportedTransactionType(err)
	}
	return apperror.InternalError(err)
}

func paymentTransaction(checkout domain.Checkout, order domain.PaymentOrder) *domain.Transaction {
	checkoutID := checkout.ID
	return &domain.Transaction{
		SourceOrderID:   order.ID,
		CheckoutID:      &checkoutID,
		TransactionType: domain.TransactionTypePayment,
		Situation:       domain.SituationReceived,
		Status:          domain.TransactionStatusUndefined,
		Amount:          order.Amount,
		Currency:        order.Currency,
		BuyerDocument:   checkout.BuyerInfo.Document,
		BuyerName:       checkout.BuyerInfo.Name,
		SellerID:        order.SellerInfo.SellerID,
		CardInfo:        checkout.CardInfo.CardInfo,
		CardToken:       checkout.CardInfo.Token,
	}
}

func refundTransaction(r *domain.RefundCreated) *domain.Transaction {
	t := &domain.Transaction{
		SourceOrderID:   r.Refund.ID,
		TransactionType: domain.TransactionTypeRefund,
		Situation:       domain.SituationReceived,
		Status:          domain.TransactionStatusUndefined,
		Amount:          r.Refund.Amount,
		Currency:        r.Refund.Currency,
		BuyerDocument:   r.Refund.BuyerInfo.Document,
		BuyerName:       r.Refund.BuyerInfo.Name,
		SellerID:        r.Refund.SellerInfo.SellerID,
		CardInfo:        r.Refund.CardInfo.CardInfo,
		CardToken:       r.Refund.CardInfo.Token,
	}
	if r.Payment.ID != "" {
		paymentID := r.Payment.ID
		t.RelatedOrderID = &paymentID
	}
	if t.SellerID == "" {
		t.SellerID = r.Payment.SellerInfo.SellerID
	}
	return t
}
