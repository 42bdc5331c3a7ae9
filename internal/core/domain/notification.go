package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedTransactionType is a contract violation: a transaction type with no route.
var ErrUnsupportedTransactionType = errors.New("transaction type not supported")

// Channel is a named logical destination on the event bus.
type Channel string

// Inbound channels.
const (
	ChannelPaymentCreated Channel = "payment-created"
	ChannelRefundCreated  Channel = "refund-created"
)

// Outbound channels.
const (
	ChannelPaymentOrderStarted  Channel = "payment-order-started"
	ChannelRefundStarted        Channel = "refund-started"
	ChannelPaymentOrderApproved Channel = "payment-order-approved"
	ChannelPaymentOrderFailed   Channel = "payment-order-failed"
	ChannelRefundApproved       Channel = "refund-approved"
	ChannelRefundFailed         Channel = "refund-failed"
)

// NotificationKind classifies an outbound notification.
type NotificationKind string

const (
	NotificationOrderStarted        NotificationKind = "order-started"
	NotificationTransactionApproved NotificationKind = "transaction-approved"
	NotificationTransactionFailed   NotificationKind = "transaction-failed"
)

// Outbound CloudEvents type per channel.
var channelEventTypes = map[Channel]string{
	ChannelPaymentOrderStarted:  "paymentic.io.transaction-processing.v1.payment-order.started",
	ChannelRefundStarted:        "paymentic.io.transaction-processing.v1.refund.started",
	ChannelPaymentOrderApproved: "paymentic.io.transaction-processing.v1.payment-order.approved",
	ChannelPaymentOrderFailed:   "paymentic.io.transaction-processing.v1.payment-order.failed",
	ChannelRefundApproved:       "paymentic.io.transaction-processing.v1.refund.approved",
	ChannelRefundFailed:         "paymentic.io.transaction-processing.v1.refund.failed",
}

// EventType returns the CloudEvents type published on the channel.
func (c Channel) EventType() string {
	if t, ok := channelEventTypes[c]; ok {
		return t
	}
	return "paymentic.io.transaction-processing.v1." + string(c)
}

// StartedChannel picks the order-started channel for a transaction type.
func StartedChannel(t TransactionType) (Channel, error) {
	switch t {
	case TransactionTypePayment:
		return ChannelPaymentOrderStarted, nil
	case TransactionTypeRefund:
		return ChannelRefundStarted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTransactionType, t)
	}
}

// RouteOutcome maps (type, status) to exactly one notification kind and channel.
// Anything other than APPROVED is routed as failed.
func RouteOutcome(t TransactionType, status TransactionStatus) (NotificationKind, Channel, error) {
	approved := status.IsApproved()
	switch t {
	case TransactionTypePayment:
		if approved {
			return NotificationTransactionApproved, ChannelPaymentOrderApproved, nil
		}
		return NotificationTransactionFailed, ChannelPaymentOrderFailed, nil
	case TransactionTypeRefund:
		if approved {
			return NotificationTransactionApproved, ChannelRefundApproved, nil
		}
		return NotificationTransactionFailed, ChannelRefundFailed, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedTransactionType, t)
	}
}

// Notification is an outbound domain event raised inside a unit of work.
type Notification struct {
	ID              uuid.UUID        `json:"id"`
	Kind            NotificationKind `json:"kind"`
	TransactionType TransactionType  `json:"transaction_type"`
	Channel         Channel          `json:"channel"`
	Key             string           `json:"key"`
	OccurredAt      time.Time        `json:"occurred_at"`
	Payload         json.RawMessage  `json:"payload"`
}

// StartedPayload announces that an order entered processing.
type StartedPayload struct {
	ID         string     `json:"id"`
	Amount     string     `json:"amount"`
	Currency   string     `json:"currency"`
	SellerInfo SellerInfo `json:"sellerInfo"`
	At         string     `json:"at"`
}

// ProcessedPayload carries a transaction's settlement outcome.
type ProcessedPayload struct {
	Transaction string            `json:"transaction"`
	Seller      string            `json:"seller"`
	Payment     string            `json:"payment"`
	CheckoutID  string            `json:"checkoutId,omitempty"`
	RefundID    string            `json:"refundId,omitempty"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	At          string            `json:"at"`
	Buyer       string            `json:"buyer"`
	Status      TransactionStatus `json:"status"`
}

const payloadDateLayout = "2006-01-02"

// NewStartedNotification builds the order-started notification for a RECEIVED row.
func NewStartedNotification(t *Transaction, now time.Time) (Notification, error) {
	ch, err := StartedChannel(t.TransactionType)
	if err != nil {
		return Notification{}, err
	}
	payload, err := json.Marshal(StartedPayload{
		ID:         t.SourceOrderID,
		Amount:     t.Amount,
		Currency:   t.Currency,
		SellerInfo: SellerInfo{SellerID: t.SellerID},
		At:         now.UTC().Format(payloadDateLayout),
	})
	if err != nil {
		return Notification{}, fmt.Errorf("marshal started payload: %w", err)
	}
	return Notification{
		ID:              uuid.New(),
		Kind:            NotificationOrderStarted,
		TransactionType: t.TransactionType,
		Channel:         ch,
		Key:             t.SourceOrderID,
		OccurredAt:      now.UTC(),
		Payload:         payload,
	}, nil
}

// NewProcessedNotification builds the outcome notification for a PROCESSED row.
func NewProcessedNotification(t *Transaction, now time.Time) (Notification, error) {
	kind, ch, err := RouteOutcome(t.TransactionType, t.Status)
	if err != nil {
		return Notification{}, err
	}
	p := ProcessedPayload{
		Transaction: t.ID.String(),
		Seller:      t.SellerID,
		Payment:     t.SourceOrderID,
		Amount:      t.Amount,
		Currency:    t.Currency,
		At:          now.UTC().Format(payloadDateLayout),
		Buyer:       t.BuyerDocument,
		Status:      t.Status,
	}
	switch t.TransactionType {
	case TransactionTypePayment:
		if t.CheckoutID != nil {
			p.CheckoutID = *t.CheckoutID
		}
	case TransactionTypeRefund:
		p.RefundID = t.SourceOrderID
		if t.RelatedOrderID != nil {
			p.Payment = *t.RelatedOrderID
		}
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return Notification{}, fmt.Errorf("marshal processed payload: %w", err)
	}
	return Notification{
		ID:              uuid.New(),
		Kind:            kind,
		TransactionType: t.TransactionType,
		Channel:         ch,
		Key:             t.SourceOrderID,
		OccurredAt:      now.UTC(),
		Payload:         payload,
	}, nil
}

// OutboxMessage is a committed notification awaiting relay to the bus.
type OutboxMessage struct {
	ID           int64
	Notification Notification
	CreatedAt    time.Time
	PublishedAt  *time.Time
}
