package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// fixedWindowLimiter counts requests per client inside a fixed window. The
// first request after a window elapses resets the count.
type fixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*requestWindow
	max     int
	window  time.Duration
}

type requestWindow struct {
	start time.Time
	count int
}

func newFixedWindowLimiter(max int, window time.Duration) *fixedWindowLimiter {
	return &fixedWindowLimiter{
		windows: make(map[string]*requestWindow),
		max:     max,
		window:  window,
	}
}

func (l *fixedWindowLimiter) allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		// Expired windows for other clients are pruned here rather than by a
		// background task; the service runs no goroutines of its own.
		if len(l.windows) > 1024 {
			for k, other := range l.windows {
				if now.Sub(other.start) >= l.window {
					delete(l.windows, k)
				}
			}
		}
		l.windows[key] = &requestWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r)) {
			s.metrics.RateLimited.Inc()
			respondError(w, http.StatusTooManyRequests, "rate_limited",
				"Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
