package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepEvery is how many lookups pass between scans for refilled buckets.
const sweepEvery = 256

// KeyFunc names the budget a request is charged against.
type KeyFunc func(r *http.Request) string

// ClientKey charges authenticated requests to the user and anonymous ones to the remote IP.
// On an authenticated route the limiter must run after Authenticate to see the user.
func ClientKey(r *http.Request) string {
	if id, err := GetUserIDFromContext(r.Context()); err == nil {
		return "user:" + strconv.Itoa(id)
	}
	return "ip:" + remoteIP(r)
}

// RemoteIPKey charges every request to its remote IP. chi's RealIP must run first behind a proxy.
func RemoteIPKey(r *http.Request) string {
	return "ip:" + remoteIP(r)
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Limiter keeps one token bucket per key for a single route budget.
type Limiter struct {
	limit   rate.Limit
	burst   int
	key     KeyFunc
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	lookups int
}

// NewLimiter allows rps requests per second per key with bursts up to burst.
// A nil key falls back to ClientKey.
func NewLimiter(rps float64, burst int, key KeyFunc) *Limiter {
	if key == nil {
		key = ClientKey
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		key:     key,
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Reserve takes one token for key. When the bucket is empty it returns false and the wait
// until a token is available.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	now := l.now()
	res := l.bucket(key, now).ReserveN(now, 1)
	if !res.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports how many keys currently hold a bucket.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lookups++
	if l.lookups%sweepEvery == 0 {
		// A full bucket carries no state, so dropping it changes nothing for its key.
		for k, b := range l.buckets {
			if k != key && b.TokensAt(now) >= float64(l.burst) {
				delete(l.buckets, k)
			}
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}

// RateLimit rejects requests over the limiter's budget with 429 and a Retry-After in whole seconds.
func RateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Reserve(l.key(r))
			if !ok {
				w.Header().Set("Retry-After", retryAfter(wait))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(wait time.Duration) string {
	secs := math.Ceil(wait.Seconds())
	if secs < 1 {
		secs = 1
	}
	if secs > 3600 {
		secs = 3600
	}
	return strconv.Itoa(int(secs))
}
