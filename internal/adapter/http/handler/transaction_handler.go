package handler

import (
	"transaction-orchestrator/internal/adapter/http/dto"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/pkg/apperror"
	"transaction-orchestrator/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves read-only ledger queries.
type TransactionHandler struct {
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{reportingSvc: reportingSvc}
}

// History handles GET /api/v1/transactions/:sourceOrderId.
func (h *TransactionHandler) History(c *gin.Context) {
	var uri dto.TransactionHistoryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.Validation("invalid source order id"))
		return
	}

	rows, err := h.reportingSvc.TransactionHistory(c.Request.Context(), uri.SourceOrderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionHistoryResponse(uri.SourceOrderID, rows))
}
