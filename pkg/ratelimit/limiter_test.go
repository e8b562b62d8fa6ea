package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	// Capacity 5, refill 1 token/second
	tb := NewTokenBucket(5, 1.0)

	// The full burst goes through
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	// Bucket is empty now
	if tb.Allow() {
		t.Error("6th request should be denied")
	}

	// Wait for roughly one token to refill
	time.Sleep(1100 * time.Millisecond)

	if !tb.Allow() {
		t.Error("request after refill should be allowed")
	}
	if tb.Allow() {
		t.Error("second request after refill should be denied")
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	tb := NewTokenBucket(3, 1.0)

	for i := 0; i < 3; i++ {
		tb.Allow()
	}
	if tb.Allow() {
		t.Error("bucket should be empty")
	}

	tb.Reset()

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Errorf("request %d should be allowed after reset", i+1)
		}
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(2, 0.001, 0)

	if !rl.Allow("jos") || !rl.Allow("jos") {
		t.Error("jos should get the full burst")
	}
	if rl.Allow("jos") {
		t.Error("jos should be limited")
	}

	// A different key has its own bucket
	if !rl.Allow("anna") {
		t.Error("anna should not be affected by jos")
	}

	if rl.ActiveBuckets() != 2 {
		t.Errorf("expected 2 active buckets, got %d", rl.ActiveBuckets())
	}
}

func TestRateLimiter_ResetAndRemove(t *testing.T) {
	rl := NewRateLimiter(1, 0.001, 0)

	rl.Allow("jos")
	if rl.Allow("jos") {
		t.Error("jos should be limited")
	}

	rl.Reset("jos")
	if !rl.Allow("jos") {
		t.Error("jos should be allowed after reset")
	}

	rl.Remove("jos")
	if rl.ActiveBuckets() != 0 {
		t.Errorf("expected 0 active buckets, got %d", rl.ActiveBuckets())
	}
}

func TestMiddleware_PerIPLimit(t *testing.T) {
	m := NewMiddleware(&Config{
		PerIPCapacity:   2,
		PerIPRefillRate: 0.001,
		PerUserCapacity: 100,
		BucketTTL:       0,
	})

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	status := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/2fa/verify", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if status("10.0.0.1:1234") != http.StatusOK {
		t.Error("first request should pass")
	}
	if status("10.0.0.1:1234") != http.StatusOK {
		t.Error("second request should pass")
	}
	if status("10.0.0.1:1234") != http.StatusTooManyRequests {
		t.Error("third request should be limited")
	}

	// A different client is unaffected
	if status("10.0.0.2:1234") != http.StatusOK {
		t.Error("other client should pass")
	}
}

func TestClientIP_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := clientIP(req); ip != "203.0.113.7" {
		t.Errorf("expected forwarded address, got %s", ip)
	}
}
