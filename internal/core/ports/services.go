package ports

import (
	"context"
	"time"

	"transaction-orchestrator/internal/core/domain"
)

// DedupCache is the Redis fast path in front of the processed-events table.
type DedupCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string, ttl time.Duration) error
}

// EncryptionService protects card data at rest in the transaction ledger.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// DeadLetter is an inbound record that exhausted its redeliveries.
type DeadLetter struct {
	Topic     string    `json:"topic"`
	Partition int32     `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	ParkedAt  time.Time `json:"parked_at"`
}

// DeadLetterQueue parks poison records outside the bus.
type DeadLetterQueue interface {
	Park(ctx context.Context, letter DeadLetter) error
}

// EventAdmitter decides whether an inbound event id is processed for the first time.
type EventAdmitter interface {
	Admit(ctx context.Context, eventID string) (bool, error)
}

// SettlementGateway performs the blocking settlement call to the provider.
type SettlementGateway interface {
	Settle(ctx context.Context, req domain.SettlementRequest) (domain.TransactionStatus, error)
}

// EventPublisher delivers notifications to the bus in the given order.
type EventPublisher interface {
	Publish(ctx context.Context, notifications ...domain.Notification) error
}

// TokenService handles JWT token operations for ops API clients.
type TokenService interface {
	Generate(clientID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	ClientID string
}

// --- Service Ports (Business Logic) ---

// OrchestrationService turns inbound events into ledger rows and notifications.
type OrchestrationService interface {
	Handle(ctx context.Context, channel domain.Channel, event *domain.InboundEvent) (*domain.HandleResult, error)
	HandlePaymentCreated(ctx context.Context, event *domain.InboundEvent) (*domain.HandleResult, error)
	HandleRefundCreated(ctx context.Context, event *domain.InboundEvent) (*domain.HandleResult, error)
}

// ReportingService answers read-only ledger queries.
type ReportingService interface {
	TransactionHistory(ctx context.Context, sourceOrderID string) ([]domain.Transaction, error)
}
