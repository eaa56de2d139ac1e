package services

import (
	"net/http"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const minIdleTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter holds one token bucket per client IP. Buckets idle for longer
// than idleTTL are refilled anyway, so they are dropped by a periodic sweep.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     time.Duration
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(perMinute int) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	every := time.Minute / time.Duration(perMinute)
	burst := max(1, perMinute/6)
	return &ipLimiter{
		visitors: map[string]*visitor{},
		every:    every,
		burst:    burst,
		idleTTL:  max(minIdleTTL, every*time.Duration(burst)),
		now:      time.Now,
	}
}

func (s *ipLimiter) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.sweep(now)
	}

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep must be called with mu held.
func (s *ipLimiter) sweep(now time.Time) {
	for ip, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.idleTTL {
			delete(s.visitors, ip)
		}
	}
	s.lastSweep = now
}

func (s *ipLimiter) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

func (s *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !s.get(ip).Allow() {
			logger.Info("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages. Please wait a moment and try again."})
			return
		}
		c.Next()
	}
}
