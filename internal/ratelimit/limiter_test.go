package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	l := New()
	bucket := Bucket{MaxRequests: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		if !l.Allow("k", bucket) {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}
	if l.Allow("k", bucket) {
		t.Fatal("request over the limit was allowed")
	}
	// Other keys are independent.
	if !l.Allow("other", bucket) {
		t.Fatal("independent key rejected")
	}
}

func TestAllow_WindowExpiry(t *testing.T) {
	l := New()
	bucket := Bucket{MaxRequests: 1, Window: 10 * time.Millisecond}

	if !l.Allow("k", bucket) {
		t.Fatal("first request rejected")
	}
	if l.Allow("k", bucket) {
		t.Fatal("second request allowed inside window")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k", bucket) {
		t.Fatal("request rejected after window expired")
	}
}

func TestCheck(t *testing.T) {
	l := New()

	newRequest := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/predict/upload", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		return r
	}

	limit := DefaultBuckets["upload"].MaxRequests
	for i := 0; i < limit; i++ {
		w := httptest.NewRecorder()
		if l.Check(w, newRequest(), "upload") {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}

	w := httptest.NewRecorder()
	if !l.Check(w, newRequest(), "upload") {
		t.Fatal("request over the limit was not rejected")
	}
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Body.String(), "Rate limit exceeded") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestCheck_SeparatesClients(t *testing.T) {
	l := New()

	r1 := httptest.NewRequest(http.MethodPost, "/predict/upload", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	for i := 0; i < DefaultBuckets["upload"].MaxRequests; i++ {
		l.Check(httptest.NewRecorder(), r1, "upload")
	}
	if !l.Check(httptest.NewRecorder(), r1, "upload") {
		t.Fatal("first client not limited")
	}

	r2 := httptest.NewRequest(http.MethodPost, "/predict/upload", nil)
	r2.RemoteAddr = "10.0.0.2:1234"
	if l.Check(httptest.NewRecorder(), r2, "upload") {
		t.Fatal("second client limited by first client's requests")
	}
}

func TestCheck_UsesRealIPHeader(t *testing.T) {
	l := New()

	newRequest := func(realIP string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/features/x", nil)
		r.RemoteAddr = "127.0.0.1:1"
		r.Header.Set("X-Real-IP", realIP)
		return r
	}

	for i := 0; i < DefaultBuckets["features"].MaxRequests; i++ {
		l.Check(httptest.NewRecorder(), newRequest("1.2.3.4"), "features")
	}
	if !l.Check(httptest.NewRecorder(), newRequest("1.2.3.4"), "features") {
		t.Fatal("forwarded client not limited")
	}
	if l.Check(httptest.NewRecorder(), newRequest("5.6.7.8"), "features") {
		t.Fatal("different forwarded client was limited")
	}
}
