package service

import (
	"context"
	"errors"
	"testing"

	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports/mocks"
	"transaction-orchestrator/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReportingService_TransactionHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	svc := NewReportingService(txRepo)

	rows := []domain.Transaction{
		{SourceOrderID: "po-1", Situation: domain.SituationReceived, Status: domain.TransactionStatusUndefined},
		{SourceOrderID: "po-1", Situation: domain.SituationProcessed, Status: domain.TransactionStatusApproved},
	}
	txRepo.EXPECT().ListBySourceOrder(gomock.Any(), "po-1").Return(rows, nil)

	result, err := svc.TransactionHistory(context.Background(), " po-1 ")
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestReportingService_TransactionHistory_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	svc := NewReportingService(txRepo)

	var appErr *apperror.AppError

	_, err := svc.TransactionHistory(context.Background(), "")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "QRY_002", appErr.Code)

	txRepo.EXPECT().ListBySourceOrder(gomock.Any(), "missing").Return(nil, nil)
	_, err = svc.TransactionHistory(context.Background(), "missing")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "QRY_001", appErr.Code)

	txRepo.EXPECT().ListBySourceOrder(gomock.Any(), "po-1").Return(nil, errors.New("db down"))
	_, err = svc.TransactionHistory(context.Background(), "po-1")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SYS_001", appErr.Code)
}
