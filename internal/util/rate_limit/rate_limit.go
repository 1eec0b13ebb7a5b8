package rate_limit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	now      func() time.Time
}

type RateLimitResult struct {
	Allowed       bool      `json:"allowed"`
	Remaining     int       `json:"remaining"`
	ResetTime     time.Time `json:"resetTime"`
	RetryAfterSec int       `json:"retryAfterSec,omitempty"`
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	defaultRpsLimit = 100

	// Limiters idle for longer than this are dropped once the map grows
	// past maxTrackedClients.
	idleLimiterTTL    = 5 * time.Minute
	maxTrackedClients = 10_000
)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

// CheckRateLimit consumes one token from the bucket of clientKey. Buckets
// start full with burstLimit tokens and refill at rpsLimit per second.
func (r *RateLimiter) CheckRateLimit(clientKey string, rpsLimit, burstLimit int) *RateLimitResult {
	if rpsLimit <= 0 {
		rpsLimit = defaultRpsLimit
	}
	if burstLimit <= 0 {
		burstLimit = rpsLimit * 5
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	client := r.getOrCreateLimiter(clientKey, rpsLimit, burstLimit, now)
	allowed := client.limiter.AllowN(now, 1)

	tokens := max(0, client.limiter.TokensAt(now))
	timeToFull := time.Duration(math.Ceil((float64(burstLimit) - tokens) * float64(time.Second) / float64(rpsLimit)))

	result := &RateLimitResult{
		Allowed:   allowed,
		Remaining: int(math.Floor(tokens)),
		ResetTime: now.Add(timeToFull),
	}

	if !allowed {
		// Enough time for at least one token, in whole seconds.
		retryAfterMs := 1000.0 / float64(rpsLimit)
		result.RetryAfterSec = max(int(math.Ceil(retryAfterMs/1000.0)), 1)
	}

	return result
}

func (r *RateLimiter) ResetRateLimit(clientKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, clientKey)
}

// Middleware limits requests per client IP and answers 429 with a
// Retry-After header once the bucket is empty.
func (r *RateLimiter) Middleware(rpsLimit, burstLimit int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result := r.CheckRateLimit(ctx.ClientIP(), rpsLimit, burstLimit)

		ctx.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			ctx.Header("Retry-After", strconv.Itoa(result.RetryAfterSec))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
				"code":  "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		ctx.Next()
	}
}

func (r *RateLimiter) getOrCreateLimiter(clientKey string, rpsLimit, burstLimit int, now time.Time) *clientLimiter {
	client, ok := r.limiters[clientKey]
	if !ok {
		if len(r.limiters) >= maxTrackedClients {
			r.evictIdleLimiters(now)
		}

		client = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rpsLimit), burstLimit)}
		r.limiters[clientKey] = client
	}

	if client.limiter.Limit() != rate.Limit(rpsLimit) {
		client.limiter.SetLimitAt(now, rate.Limit(rpsLimit))
	}
	if client.limiter.Burst() != burstLimit {
		client.limiter.SetBurstAt(now, burstLimit)
	}

	client.lastSeen = now

	return client
}

func (r *RateLimiter) evictIdleLimiters(now time.Time) {
	for key, client := range r.limiters {
		if now.Sub(client.lastSeen) > idleLimiterTTL {
			delete(r.limiters, key)
		}
	}
}
