package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Inbound CloudEvents type discriminators published by the payment-processing context.
const (
	EventTypePaymentCreated = "paymentic.io.payment-processing.v1.payment.created"
	EventTypeRefundCreated  = "paymentic.io.payment-processing.v1.refund.created"
)

var (
	// ErrInvalidEvent is returned for envelopes or payloads missing required fields.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrUnexpectedEventType is returned when a channel carries a discriminator it does not accept.
	ErrUnexpectedEventType = errors.New("unexpected event type")
)

// amountPattern matches what NUMERIC(19, 4) stores without rounding or overflow.
var amountPattern = regexp.MustCompile(`^[0-9]{1,15}(\.[0-9]{1,4})?$`)

// InboundEvent is a structured-mode CloudEvents envelope received from the bus.
type InboundEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
	Time        *time.Time      `json:"time,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// DecodeInboundEvent parses a raw envelope and checks its identity fields.
func DecodeInboundEvent(raw []byte) (*InboundEvent, error) {
	var evt InboundEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrInvalidEvent, err)
	}
	if strings.TrimSpace(evt.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if strings.TrimSpace(evt.Type) == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	return &evt, nil
}

// ExpectType fails with ErrUnexpectedEventType when the discriminator differs.
func (e *InboundEvent) ExpectType(eventType string) error {
	if e.Type != eventType {
		return fmt.Errorf("%w: got %q want %q", ErrUnexpectedEventType, e.Type, eventType)
	}
	return nil
}

type BuyerInfo struct {
	Document string `json:"document"`
	Name     string `json:"name"`
}

type CardInfo struct {
	CardInfo string `json:"cardInfo"`
	Token    string `json:"token"`
}

type SellerInfo struct {
	SellerID string `json:"sellerId"`
}

type Checkout struct {
	ID        string    `json:"id"`
	BuyerInfo BuyerInfo `json:"buyerInfo"`
	CardInfo  CardInfo  `json:"cardInfo"`
}

// PaymentOrder is one seller's share of a checkout.
type PaymentOrder struct {
	ID             string     `json:"id"`
	Amount         string     `json:"amount"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status,omitempty"`
	SellerInfo     SellerInfo `json:"sellerInfo"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
}

// PaymentCreated is the payload of a payment-created event.
type PaymentCreated struct {
	Checkout Checkout       `json:"checkout"`
	Payments []PaymentOrder `json:"payments"`
}

type Refund struct {
	ID         string     `json:"id"`
	Amount     string     `json:"amount"`
	Currency   string     `json:"currency"`
	CardInfo   CardInfo   `json:"cardInfo"`
	BuyerInfo  BuyerInfo  `json:"buyerInfo"`
	SellerInfo SellerInfo `json:"sellerInfo"`
}

// RefundCreated is the payload of a refund-created event.
type RefundCreated struct {
	Refund  Refund       `json:"refund"`
	Payment PaymentOrder `json:"payment"`
}

// DecodePaymentCreated unmarshals and validates a payment-created payload.
func DecodePaymentCreated(evt *InboundEvent) (*PaymentCreated, error) {
	if err := evt.ExpectType(EventTypePaymentCreated); err != nil {
		return nil, err
	}
	var p PaymentCreated
	if err := json.Unmarshal(evt.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode payment payload: %v", ErrInvalidEvent, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks required payment-created fields.
func (p *PaymentCreated) Validate() error {
	if strings.TrimSpace(p.Checkout.ID) == "" {
		return fmt.Errorf("%w: missing checkout id", ErrInvalidEvent)
	}
	if len(p.Payments) == 0 {
		return fmt.Errorf("%w: checkout %s has no payment orders", ErrInvalidEvent, p.Checkout.ID)
	}
	for i := range p.Payments {
		order := &p.Payments[i]
		if strings.TrimSpace(order.ID) == "" {
			return fmt.Errorf("%w: payment order %d missing id", ErrInvalidEvent, i)
		}
		if err := validateMoney(order.Amount, order.Currency); err != nil {
			return fmt.Errorf("payment order %s: %w", order.ID, err)
		}
	}
	return nil
}

// DecodeRefundCreated unmarshals and validates a refund-created payload.
func DecodeRefundCreated(evt *InboundEvent) (*RefundCreated, error) {
	if err := evt.ExpectType(EventTypeRefundCreated); err != nil {
		return nil, err
	}
	var r RefundCreated
	if err := json.Unmarshal(evt.Data, &r); err != nil {
		return nil, fmt.Errorf("%w: decode refund payload: %v", ErrInvalidEvent, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks required refund-created fields.
func (r *RefundCreated) Validate() error {
	if strings.TrimSpace(r.Refund.ID) == "" {
		return fmt.Errorf("%w: missing refund id", ErrInvalidEvent)
	}
	if err := validateMoney(r.Refund.Amount, r.Refund.Currency); err != nil {
		return fmt.Errorf("refund %s: %w", r.Refund.ID, err)
	}
	return nil
}

func validateMoney(amount, currency string) error {
	if !amountPattern.MatchString(amount) || strings.Trim(amount, "0.") == "" {
		return fmt.Errorf("%w: amount %q must be a positive decimal", ErrInvalidEvent, amount)
	}
	if len(currency) != 3 {
		return fmt.Errorf("%w: currency %q must be an ISO-4217 code", ErrInvalidEvent, currency)
	}
	return nil
}
