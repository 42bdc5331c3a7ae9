package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"transaction-orchestrator/pkg/apperror"
	"transaction-orchestrator/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleClientTTL is how long an unused per-client bucket is kept.
const idleClientTTL = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per ops API client.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewClientRateLimiter creates a limiter allowing rps requests per second per client.
// A non-positive rps disables limiting.
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &ClientRateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

func (rl *ClientRateLimiter) get(id string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[id]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[id] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

// Sweep drops buckets idle for longer than idleClientTTL.
func (rl *ClientRateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := rl.now().Add(-idleClientTTL)
	for id, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every minute until ctx is cancelled.
func (rl *ClientRateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// Middleware rejects requests over the client's budget with 429.
// Must run after JWTAuth; unauthenticated callers are keyed by IP.
func (rl *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.get(identifier(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			response.Error(c, apperror.ErrRateLimitExceeded())
			return
		}
		c.Next()
	}
}

func identifier(c *gin.Context) string {
	if id := c.GetString(CtxClientID); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}
