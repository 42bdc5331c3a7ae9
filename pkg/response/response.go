package response

import (
	"errors"
	"net/http"
	"time"

	"transaction-orchestrator/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: RequestID(c),
		Timestamp: now(),
	})
}

// Error sends an error response. An *apperror.AppError keeps its code and
// status; anything else becomes a 500 without leaking the cause.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Abort(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}
	Abort(c, http.StatusInternalServerError, "SYS_000", "Internal server error")
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		ErrorCode: code,
		Message:   message,
		RequestID: RequestID(c),
		Timestamp: now(),
	})
}

// RequestID returns the id set by the request-id middleware, or a fresh one.
func RequestID(c *gin.Context) string {
	if s := c.GetString(RequestIDKey); s != "" {
		return s
	}
	return uuid.New().String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
