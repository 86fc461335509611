package middleware

import (
	"net/http"
	"sync"
	"time"

	"ScamSOS/pkg/handlerUtil"
	"ScamSOS/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

var (
	ErrTooManyRequests = response.NewErrorWithSlug(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests, try again shortly")
)

const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	visitors  map[string]*visitor
	rate      rate.Limit
	burstSize int
	mutex     sync.Mutex
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      reqRate,
		burstSize: burstSize,
		now:       time.Now,
	}
}

// allow takes a token for key. Visitors idle for visitorIdleTTL are dropped
// so the map does not grow with every address ever seen.
func (r *rateLimiter) allow(key string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) > visitorIdleTTL {
		for k, v := range r.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTTL {
				delete(r.visitors, k)
			}
		}
		r.lastSweep = now
	}

	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.visitors[key] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// NewRateLimiter guards the endpoints that spend money upstream
// (transcription, OCR, summarisation, outbound calls).
func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()

	if !m.rateLimitter.allow(clientIP) {
		m.log.WithField("ip", clientIP).Warn("Rate limit exceeded")
		return handlerUtil.New(m.log).Handle(ctx, m.GetRequestID(ctx), ErrTooManyRequests, ctx.Path(), "rate_limit")
	}

	return ctx.Next()
}
