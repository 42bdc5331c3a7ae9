package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"transaction-orchestrator/config"
	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/pkg/apperror"
	"transaction-orchestrator/pkg/telemetry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 512

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type settleRequest struct {
	Amount string `json:"amount"`
}

type settleResponse struct {
	Status string `json:"status"`
}

// PSPClient implements ports.SettlementGateway against the provider's HTTP API.
type PSPClient struct {
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter
	tracer     trace.Tracer
	log        zerolog.Logger
}

// NewPSPClient creates a provider client. A zero rate limit disables limiting.
func NewPSPClient(cfg config.SettlementConfig, httpClient HTTPClient, log zerolog.Logger) *PSPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &PSPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		tracer:     telemetry.Tracer(),
		log:        log.With().Str("component", "psp_client").Logger(),
	}
}

// Settle asks the provider to settle one order and returns APPROVED or DECLINED.
// Any other outcome is a retryable settlement failure.
func (c *PSPClient) Settle(ctx context.Context, req domain.SettlementRequest) (domain.TransactionStatus, error) {
	ctx, span := c.tracer.Start(ctx, "psp.settle", trace.WithAttributes(
		attribute.String("order.id", req.SourceOrderID),
		attribute.String("order.currency", req.Currency),
	))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperror.ErrSettlementFailed(fmt.Errorf("rate limiter: %w", err))
	}

	body, err := json.Marshal(settleRequest{Amount: req.Amount})
	if err != nil {
		return "", apperror.ErrSettlementFailed(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", apperror.ErrSettlementFailed(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperror.ErrSettlementFailed(fmt.Errorf("call provider: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", apperror.ErrSettlementFailed(fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var out settleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperror.ErrSettlementFailed(fmt.Errorf("decode response: %w", err))
	}

	status, err := domain.ParseSettlementStatus(out.Status)
	if err != nil {
		return "", apperror.ErrSettlementFailed(err)
	}

	c.log.Debug().
		Str("source_order_id", req.SourceOrderID).
		Str("status", string(status)).
		Msg("settlement completed")
	return status, nil
}
