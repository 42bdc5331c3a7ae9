package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"transaction-orchestrator/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// healthTimeout bounds one dependency ping.
const healthTimeout = 2 * time.Second

type depStatus struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthCheck handles GET /health, pinging every dependency concurrently.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			mu         sync.Mutex
			wg         sync.WaitGroup
			deps       = make(map[string]depStatus, len(checkers))
			allHealthy = true
		)

		for _, checker := range checkers {
			wg.Add(1)
			go func(checker ports.HealthChecker) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
				defer cancel()

				start := time.Now()
				err := checker.Ping(ctx)
				st := depStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
				if err != nil {
					st.Status = "unhealthy"
					st.Error = err.Error()
				}

				mu.Lock()
				deps[checker.Name()] = st
				if err != nil {
					allHealthy = false
				}
				mu.Unlock()
			}(checker)
		}
		wg.Wait()

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
