package http

import (
	"testing"
	"time"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	limiter := newRateLimiter(1) // capacity clamps to 5
	now := time.Now()

	for i := 0; i < 5; i++ {
		if !limiter.Allow("ip:10.0.0.1", now) {
			t.Fatalf("request %d within burst denied", i+1)
		}
	}
	if limiter.Allow("ip:10.0.0.1", now) {
		t.Fatal("request beyond burst allowed")
	}

	// One second at 1 rps refills one token.
	if !limiter.Allow("ip:10.0.0.1", now.Add(time.Second)) {
		t.Fatal("request after refill denied")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := newRateLimiter(1)
	now := time.Now()

	for i := 0; i < 5; i++ {
		limiter.Allow("ip:10.0.0.1", now)
	}
	if !limiter.Allow("ip:10.0.0.2", now) {
		t.Fatal("second client throttled by first client's bucket")
	}
}

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	var limiter *rateLimiter
	if !limiter.Allow("anything", time.Now()) {
		t.Fatal("nil limiter denied a request")
	}
}

func TestClientIPAddress(t *testing.T) {
	if got := clientIPAddress("10.1.2.3:4567"); got != "10.1.2.3" {
		t.Fatalf("got %q", got)
	}
	if got := clientIPAddress("10.1.2.3"); got != "10.1.2.3" {
		t.Fatalf("got %q", got)
	}
}
