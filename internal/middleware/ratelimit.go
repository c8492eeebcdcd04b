package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
)

// sweepThreshold is the bucket count above which expired buckets are purged.
const sweepThreshold = 4096

type bucket struct {
	count int
	until time.Time
}

// RateLimit allows limit requests per client IP in each fixed window of per.
// A non-positive limit disables the limiter. Rejected requests get a localized
// JSON error.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, per, time.Now)
}

func rateLimit(limit int, per time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIPForRateLimit(r)
			mu.Lock()
			t := now()
			if len(buckets) > sweepThreshold {
				for key, b := range buckets {
					if t.After(b.until) {
						delete(buckets, key)
					}
				}
			}
			b, ok := buckets[ip]
			if !ok || t.After(b.until) {
				b = &bucket{count: 0, until: t.Add(per)}
				buckets[ip] = b
			}
			if b.count >= limit {
				retry := int(b.until.Sub(t).Seconds()) + 1
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   i18n.T(LocaleFromContext(r.Context()), i18n.RateLimited),
				})
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPForRateLimit keys buckets on the connection address. Proxy headers
// are ignored here; chi's RealIP runs first when the deployment trusts them.
func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.TrimSpace(host)
}
