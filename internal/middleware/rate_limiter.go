package middleware

import (
	"net/http"
	"sync"
	"time"

	"carbonledger/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rate_limiter.go — fixed-window per-IP limiters backed by in-process maps.
// Enough for a single API node; the stores purge themselves so IPs that never
// return do not accumulate.

type rateWindow struct {
	mu    sync.Mutex
	count int
	until time.Time
}

type rateStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func newRateStore() *rateStore {
	return &rateStore{windows: make(map[string]*rateWindow)}
}

// take counts one hit for key and reports whether it still fits limit in the
// current window, plus when that window ends.
func (s *rateStore) take(key string, limit int, window time.Duration) (bool, time.Time) {
	s.mu.Lock()
	w, ok := s.windows[key]
	if !ok {
		w = &rateWindow{}
		s.windows[key] = w
	}
	s.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	if now.After(w.until) {
		w.count = 0
		w.until = now.Add(window)
	}
	w.count++
	return w.count <= limit, w.until
}

func (s *rateStore) purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, w := range s.windows {
		w.mu.Lock()
		if now.After(w.until) {
			delete(s.windows, key)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Login attempts are tracked separately from general API traffic.
var (
	loginStore = newRateStore()
	apiStore   = newRateStore()
)

// LoginRateLimiter guards the credential endpoints: 20 attempts per minute
// per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := loginStore.take(c.ClientIP(), 20, time.Minute); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many login attempts, retry in 1 minute"))
			return
		}
		c.Next()
	}
}

// RateLimiter allows limit requests per window per IP on whatever routes it
// is mounted on.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, until := apiStore.take(c.ClientIP(), limit, window)
		if !ok {
			c.Header("Retry-After", until.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, retry shortly"))
			return
		}
		c.Next()
	}
}

const purgeInterval = 5 * time.Minute

func init() {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for now := range ticker.C {
			if removed := loginStore.purge(now) + apiStore.purge(now); removed > 0 {
				log.Debug().Int("removed", removed).Msg("rate limiter windows purged")
			}
		}
	}()
}
