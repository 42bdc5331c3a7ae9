package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/internal/service"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// prefixCipher marks values instead of encrypting them so assertions stay readable.
type prefixCipher struct {
	encryptErr error
}

func (c prefixCipher) Encrypt(plaintext string) (string, error) {
	if c.encryptErr != nil {
		return "", c.encryptErr
	}
	if plaintext == "" {
		return "", nil
	}
	return "enc:" + plaintext, nil
}

func (c prefixCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	plaintext, ok := strings.CutPrefix(ciphertext, "enc:")
	if !ok {
		return "", errors.New("message authentication failed")
	}
	return plaintext, nil
}

func newTestTransaction(situation domain.TransactionSituation, status domain.TransactionStatus) *domain.Transaction {
	return &domain.Transaction{
		ID:              uuid.New(),
		SourceOrderID:   "po-1",
		CheckoutID:      strPtr("chk-1"),
		TransactionType: domain.TransactionTypePayment,
		Situation:       situation,
		Status:          status,
		Amount:          "10.50",
		Currency:        "BRL",
		BuyerDocument:   "123",
		BuyerName:       "Ana",
		SellerID:        "seller-1",
		CardInfo:        "visa",
		CardToken:       "tok",
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

func txColumns() []string {
	return []string{"id", "source_order_id", "related_order_id", "checkout_id", "transaction_type", "situation",
		"status", "amount", "currency", "buyer_document", "buyer_name", "seller_id", "card_info", "card_token",
		"created_at"}
}

func txRow(rows *pgxmock.Rows, t *domain.Transaction) *pgxmock.Rows {
	return rows.AddRow(
		t.ID, t.SourceOrderID, t.RelatedOrderID, t.CheckoutID,
		t.TransactionType, t.Situation, t.Status,
		t.Amount, t.Currency, t.BuyerDocument, t.BuyerName, t.SellerID,
		"enc:"+t.CardInfo, "enc:"+t.CardToken, t.CreatedAt,
	)
}

func TestTransactionRepo_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{})
	txn := newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.SourceOrderID, txn.RelatedOrderID, txn.CheckoutID,
			txn.TransactionType, txn.Situation, txn.Status,
			txn.Amount, txn.Currency, txn.BuyerDocument, txn.BuyerName, txn.SellerID,
			"enc:visa", "enc:tok", txn.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.Record(context.Background(), dbTx, txn)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, id)
	assert.Equal(t, "tok", txn.CardToken, "the in-memory row keeps plaintext for notifications")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Record_AssignsIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := NewTransactionRepo(mock, prefixCipher{})
	repo.now = func() time.Time { return fixed }

	received := newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined)
	processed := received.Processed(domain.TransactionStatusApproved)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			pgxmock.AnyArg(), "po-1", pgxmock.AnyArg(), pgxmock.AnyArg(),
			domain.TransactionTypePayment, domain.SituationProcessed, domain.TransactionStatusApproved,
			"10.50", "BRL", "123", "Ana", "seller-1", "enc:visa", "enc:tok", fixed,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.Record(context.Background(), dbTx, processed)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NotEqual(t, received.ID, id, "each ledger row gets its own id")
	assert.Equal(t, fixed, processed.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Record_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").WillReturnError(errors.New("disk full"))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.Record(context.Background(), dbTx, newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined))
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Contains(t, err.Error(), "insert transaction")
}

func TestTransactionRepo_ListBySourceOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{})
	received := newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined)
	processed := newTestTransaction(domain.SituationProcessed, domain.TransactionStatusApproved)

	rows := txRow(txRow(pgxmock.NewRows(txColumns()), received), processed)
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE source_order_id").
		WithArgs("po-1").
		WillReturnRows(rows)

	result, err := repo.ListBySourceOrder(context.Background(), "po-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, domain.SituationReceived, result[0].Situation)
	assert.Equal(t, domain.TransactionStatusUndefined, result[0].Status)
	assert.Equal(t, domain.SituationProcessed, result[1].Situation)
	assert.Equal(t, domain.TransactionStatusApproved, result[1].Status)
	assert.Equal(t, "10.50", result[1].Amount)
	assert.Equal(t, "visa", result[1].CardInfo)
	assert.Equal(t, "tok", result[1].CardToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListBySourceOrder_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{})

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE source_order_id").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(txColumns()))

	result, err := repo.ListBySourceOrder(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestTransactionRepo_Record_EncryptError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{encryptErr: errors.New("entropy exhausted")})

	mock.ExpectBegin()
	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.Record(context.Background(), dbTx, newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined))
	assert.ErrorContains(t, err, "encrypt card info")
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written when encryption fails")
}

func TestTransactionRepo_ListBySourceOrder_DecryptError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock, prefixCipher{})
	row := newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined)

	rows := pgxmock.NewRows(txColumns()).AddRow(
		row.ID, row.SourceOrderID, row.RelatedOrderID, row.CheckoutID,
		row.TransactionType, row.Situation, row.Status,
		row.Amount, row.Currency, row.BuyerDocument, row.BuyerName, row.SellerID,
		"visa", "tok", row.CreatedAt,
	)
	mock.ExpectQuery("SELECT .+ FROM transactions WHERE source_order_id").
		WithArgs("po-1").
		WillReturnRows(rows)

	_, err = repo.ListBySourceOrder(context.Background(), "po-1")
	assert.ErrorContains(t, err, "decrypt card info")
}

// sealedFrom matches a column value that decrypts to want.
type sealedFrom struct {
	cards ports.EncryptionService
	want  string
}

func (m sealedFrom) Match(v interface{}) bool {
	s, ok := v.(string)
	if !ok || s == m.want {
		return false
	}
	plain, err := m.cards.Decrypt(s)
	return err == nil && plain == m.want
}

func TestTransactionRepo_Record_AESCardData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cards, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	repo := NewTransactionRepo(mock, cards)
	txn := newTestTransaction(domain.SituationReceived, domain.TransactionStatusUndefined)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(
			txn.ID, txn.SourceOrderID, txn.RelatedOrderID, txn.CheckoutID,
			txn.TransactionType, txn.Situation, txn.Status,
			txn.Amount, txn.Currency, txn.BuyerDocument, txn.BuyerName, txn.SellerID,
			sealedFrom{cards, "visa"}, sealedFrom{cards, "tok"}, txn.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.Record(context.Background(), dbTx, txn)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
