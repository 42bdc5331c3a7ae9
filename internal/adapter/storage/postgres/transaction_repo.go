package postgres

import (
	"context"
	"fmt"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
// Rows are only ever inserted; there is no update or delete path.
// card_info and card_token are stored encrypted.
type TransactionRepo struct {
	pool  Pool
	cards ports.EncryptionService
	now   func() time.Time
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool, cards ports.EncryptionService) *TransactionRepo {
	return &TransactionRepo{pool: pool, cards: cards, now: time.Now}
}

const transactionColumns = `id, source_order_id, related_order_id, checkout_id, transaction_type, situation, status,
	amount, currency, buyer_document, buyer_name, seller_id, card_info, card_token, created_at`

// amount is NUMERIC in storage and a decimal string in the domain.
const transactionSelectColumns = `id, source_order_id, related_order_id, checkout_id, transaction_type, situation, status,
	amount::text, currency, buyer_document, buyer_name, seller_id, card_info, card_token, created_at`

// Record inserts a ledger row within the caller's transaction.
func (r *TransactionRepo) Record(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (uuid.UUID, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}

	cardInfo, err := r.cards.Encrypt(t.CardInfo)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encrypt card info: %w", err)
	}
	cardToken, err := r.cards.Encrypt(t.CardToken)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encrypt card token: %w", err)
	}

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.SourceOrderID, t.RelatedOrderID, t.CheckoutID,
		t.TransactionType, t.Situation, t.Status,
		t.Amount, t.Currency, t.BuyerDocument, t.BuyerName, t.SellerID,
		cardInfo, cardToken, t.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert transaction: %w", err)
	}
	return t.ID, nil
}

// ListBySourceOrder returns every ledger row for a source order, oldest first.
func (r *TransactionRepo) ListBySourceOrder(ctx context.Context, sourceOrderID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionSelectColumns + ` FROM transactions
		WHERE source_order_id = $1 ORDER BY created_at ASC, situation DESC`

	rows, err := r.pool.Query(ctx, query, sourceOrderID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.CardInfo, err = r.cards.Decrypt(t.CardInfo); err != nil {
			return nil, fmt.Errorf("decrypt card info of %s: %w", t.ID, err)
		}
		if t.CardToken, err = r.cards.Decrypt(t.CardToken); err != nil {
			return nil, fmt.Errorf("decrypt card token of %s: %w", t.ID, err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.SourceOrderID, &t.RelatedOrderID, &t.CheckoutID,
		&t.TransactionType, &t.Situation, &t.Status,
		&t.Amount, &t.Currency, &t.BuyerDocument, &t.BuyerName, &t.SellerID,
		&t.CardInfo, &t.CardToken, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
