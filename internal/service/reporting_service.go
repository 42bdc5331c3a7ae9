package service

import (
	"context"
	"strings"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo ports.TransactionRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(txRepo ports.TransactionRepository) ports.ReportingService {
	return &reportingService{txRepo: txRepo}
}

// TransactionHistory returns the ledger rows of a source order, oldest first.
func (s *reportingService) TransactionHistory(ctx context.Context, sourceOrderID string) ([]domain.Transaction, error) {
	sourceOrderID = strings.TrimSpace(sourceOrderID)
	if sourceOrderID == "" {
		return nil, apperror.Validation("source order id is required")
	}

	rows, err := s.txRepo.ListBySourceOrder(ctx, sourceOrderID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if len(rows) == 0 {
		return nil, apperror.ErrNotFound("Transaction")
	}
	return rows, nil
}
