package dto

import (
	"time"

	"transaction-orchestrator/internal/core/domain"
)

// TransactionHistoryURI binds the path of GET /api/v1/transactions/:sourceOrderId.
type TransactionHistoryURI struct {
	SourceOrderID string `uri:"sourceOrderId" binding:"required,max=100,safe_id"`
}

// TransactionResponse is one ledger row as exposed to reporting clients.
// Card data never leaves the service.
type TransactionResponse struct {
	ID              string  `json:"id"`
	SourceOrderID   string  `json:"source_order_id"`
	RelatedOrderID  *string `json:"related_order_id,omitempty"`
	CheckoutID      *string `json:"checkout_id,omitempty"`
	TransactionType string  `json:"transaction_type"`
	Situation       string  `json:"situation"`
	Status          string  `json:"status"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	SellerID        string  `json:"seller_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// TransactionHistoryResponse lists a source order's rows, oldest first.
type TransactionHistoryResponse struct {
	SourceOrderID string                `json:"source_order_id"`
	Outcome       string                `json:"outcome"` // status of the latest PROCESSED row, or PENDING
	Items         []TransactionResponse `json:"items"`
}

// OutcomePending is reported while no PROCESSED row exists.
const OutcomePending = "PENDING"

// NewTransactionResponse maps a ledger row.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID.String(),
		SourceOrderID:   t.SourceOrderID,
		RelatedOrderID:  t.RelatedOrderID,
		CheckoutID:      t.CheckoutID,
		TransactionType: string(t.TransactionType),
		Situation:       string(t.Situation),
		Status:          string(t.Status),
		Amount:          t.Amount,
		Currency:        t.Currency,
		SellerID:        t.SellerID,
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NewTransactionHistoryResponse maps the rows of one source order.
func NewTransactionHistoryResponse(sourceOrderID string, rows []domain.Transaction) TransactionHistoryResponse {
	resp := TransactionHistoryResponse{
		SourceOrderID: sourceOrderID,
		Outcome:       OutcomePending,
		Items:         make([]TransactionResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.Items = append(resp.Items, NewTransactionResponse(&rows[i]))
		if rows[i].Situation == domain.SituationProcessed {
			resp.Outcome = string(rows[i].Status)
		}
	}
	return resp
}

// TokenResponse is printed by the token command.
type TokenResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
}
