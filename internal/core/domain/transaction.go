package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypePayment TransactionType = "PAYMENT"
	TransactionTypeRefund  TransactionType = "REFUND"
)

// TransactionSituation marks where a ledger row sits in the two-step lifecycle.
type TransactionSituation string

const (
	SituationReceived  TransactionSituation = "RECEIVED"
	SituationProcessed TransactionSituation = "PROCESSED"
)

// TransactionStatus is the settlement outcome carried by a ledger row.
type TransactionStatus string

const (
	TransactionStatusUndefined TransactionStatus = "UNDEFINED"
	TransactionStatusApproved  TransactionStatus = "APPROVED"
	TransactionStatusDeclined  TransactionStatus = "DECLINED"
)

// IsApproved reports whether the status is an approved settlement outcome.
// UNDEFINED and DECLINED both count as not approved.
func (s TransactionStatus) IsApproved() bool {
	return s == TransactionStatusApproved
}

// ParseSettlementStatus normalizes a provider status ("approved", "Declined", ...).
// UNDEFINED is not a valid settlement outcome.
func ParseSettlementStatus(raw string) (TransactionStatus, error) {
	switch TransactionStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case TransactionStatusApproved:
		return TransactionStatusApproved, nil
	case TransactionStatusDeclined:
		return TransactionStatusDeclined, nil
	default:
		return "", fmt.Errorf("unknown settlement status %q", raw)
	}
}

// Transaction is one immutable row of the append-only transaction ledger.
// A transaction is recorded twice: RECEIVED/UNDEFINED, then PROCESSED with its outcome.
type Transaction struct {
	ID              uuid.UUID            `json:"id"`
	SourceOrderID   string               `json:"source_order_id"`
	RelatedOrderID  *string              `json:"related_order_id,omitempty"` // refunds: the refunded payment order
	CheckoutID      *string              `json:"checkout_id,omitempty"`
	TransactionType TransactionType      `json:"transaction_type"`
	Situation       TransactionSituation `json:"situation"`
	Status          TransactionStatus    `json:"status"`
	Amount          string               `json:"amount"`
	Currency        string               `json:"currency"`
	BuyerDocument   string               `json:"buyer_document,omitempty"`
	BuyerName       string               `json:"buyer_name,omitempty"`
	SellerID        string               `json:"seller_id,omitempty"`
	CardInfo        string               `json:"-"`
	CardToken       string               `json:"-"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Processed returns the PROCESSED counterpart of a RECEIVED row.
// Identity and timestamp are left empty so the ledger assigns fresh ones.
func (t Transaction) Processed(status TransactionStatus) *Transaction {
	next := t
	next.ID = uuid.Nil
	next.CreatedAt = time.Time{}
	next.Situation = SituationProcessed
	next.Status = status
	return &next
}


// SettlementRequest is what the orchestration engine hands the settlement provider.
type SettlementRequest struct {
	SourceOrderID string
	Amount        string
	Currency      string
	CardToken     string
}
