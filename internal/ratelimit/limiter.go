// Package ratelimit provides an in-memory sliding-window rate limiter with
// per-endpoint buckets.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Bucket defines rate limit parameters.
type Bucket struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultBuckets are the per-endpoint limits.
var DefaultBuckets = map[string]Bucket{
	"predict":  {MaxRequests: 30, Window: time.Minute},
	"batch":    {MaxRequests: 10, Window: time.Minute},
	"upload":   {MaxRequests: 5, Window: time.Minute},
	"features": {MaxRequests: 20, Window: time.Minute},
}

// Limiter tracks request timestamps per key.
type Limiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// New creates a new rate limiter.
func New() *Limiter {
	return &Limiter{hits: make(map[string][]time.Time)}
}

// Allow checks if a request identified by key is within the rate limit for
// the given bucket. Returns true if allowed.
func (l *Limiter) Allow(key string, bucket Bucket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-bucket.Window)

	times := l.hits[key]
	pruned := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= bucket.MaxRequests {
		l.hits[key] = pruned
		return false
	}

	l.hits[key] = append(pruned, now)
	return true
}

// Check writes a 429 response if the caller's IP is rate limited for the
// named bucket. Returns true if the request was rejected.
func (l *Limiter) Check(w http.ResponseWriter, r *http.Request, bucketName string) bool {
	bucket, ok := DefaultBuckets[bucketName]
	if !ok {
		bucket = Bucket{MaxRequests: 60, Window: time.Minute}
	}

	ip := r.RemoteAddr
	if fwd := r.Header.Get("X-Real-IP"); fwd != "" {
		ip = fwd
	}

	if l.Allow(bucketName+":"+ip, bucket) {
		return false
	}

	retry := strconv.Itoa(int(bucket.Window.Seconds()))
	w.Header().Set("Retry-After", retry)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"detail":"Rate limit exceeded","retry_after_seconds":` + retry + `}`))
	return true
}
